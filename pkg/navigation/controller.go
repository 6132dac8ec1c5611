package navigation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/datatug/drivetug/pkg/drives"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrNotInitialized = errors.New("navigation is not initialized")
	ErrInvalidFolder  = errors.New("invalid folder")
	ErrSuperseded     = errors.New("superseded by a newer navigation")
)

// maxDepth bounds the walk up the parent chain.
const maxDepth = 256

type Option func(*Controller)

// WithoutRootLookup disables falling back to drives.RootLocator
// when the parent walk cannot find the top-level folder.
func WithoutRootLookup() Option {
	return func(c *Controller) {
		c.rootLookup = false
	}
}

// WithLanguage sets the collation used to order folder names.
func WithLanguage(tag language.Tag) Option {
	return func(c *Controller) {
		c.lang = tag
	}
}

// Controller owns the navigation stack and the listing of the current folder.
//
// Stack mutations are serialized. Every mutation starts a refresh that cancels
// the one in flight, and a refresh result is only published while it is the latest.
type Controller struct {
	session    Session
	rootLookup bool
	lang       language.Tag

	mu         sync.Mutex
	stack      Stack
	listing    *drives.Listing
	lastKnown  *drives.Listing
	loading    bool
	stale      bool
	lastErr    error
	generation uint64
	cancel     context.CancelFunc

	observersMu sync.Mutex
	observers   map[int]func(Snapshot)
	nextID      int
}

func NewController(session Session, o ...Option) *Controller {
	c := &Controller{
		session:    session,
		rootLookup: true,
		lang:       language.Und,
		observers:  make(map[int]func(Snapshot)),
	}
	for _, opt := range o {
		opt(c)
	}
	return c
}

func (c *Controller) Session() Session {
	return c.session
}

// OnChange registers f to be called after every state change.
// f is called from the goroutine that changed the state.
func (c *Controller) OnChange(f func(Snapshot)) (unsubscribe func()) {
	c.observersMu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = f
	c.observersMu.Unlock()
	return func() {
		c.observersMu.Lock()
		delete(c.observers, id)
		c.observersMu.Unlock()
	}
}

func (c *Controller) notify(s Snapshot) {
	c.observersMu.Lock()
	observers := make([]func(Snapshot), 0, len(c.observers))
	for _, f := range c.observers {
		observers = append(observers, f)
	}
	c.observersMu.Unlock()
	for _, f := range observers {
		f(s)
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Generation: c.generation,
		Stack:      c.stack.Clone(),
		Listing:    c.listing.Clone(),
		Loading:    c.loading,
		Stale:      c.stale,
		Err:        c.lastErr,
	}
}

// Initialize clears the stack, finds the drive's top-level folder and lists it.
func (c *Controller) Initialize(ctx context.Context) error {
	log := c.session.Logger
	c.mu.Lock()
	gen, walkCtx := c.startLocked(ctx)
	c.stack = nil
	c.lastKnown = nil
	c.stale = false
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	log.Debug().Msg("navigation: looking for the top-level folder")
	root, err := c.findRoot(walkCtx)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		c.finishLocked()
		c.lastErr = err
		snapshot = c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snapshot)
		log.Error().Err(err).Msg("navigation: failed to initialize")
		return err
	}
	c.stack = Stack{root}
	snapshot = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
	log.Info().Str("root", root.Name).Str("root_id", root.ID).Msg("navigation: initialized")

	return c.load(walkCtx, gen, root)
}

func (c *Controller) findRoot(ctx context.Context) (drives.Folder, error) {
	drive := c.session.Drive
	if drive == nil {
		return drives.Folder{}, fmt.Errorf("%w: no drive in session", drives.ErrRemoteUnavailable)
	}
	f, err := drive.AnyFile(ctx)
	if err != nil {
		if errors.Is(err, drives.ErrNoFiles) {
			if root, ok := c.lookupRoot(ctx); ok {
				return root, nil
			}
		}
		return drives.Folder{}, unavailable(err)
	}
	visited := map[string]bool{f.ID: true}
	for !f.IsTop() {
		if len(visited) > maxDepth {
			return drives.Folder{}, fmt.Errorf("%w: parent chain deeper than %d", drives.ErrRemoteUnavailable, maxDepth)
		}
		parentID := f.Parent()
		if visited[parentID] {
			return drives.Folder{}, fmt.Errorf("%w: parent cycle at %s", drives.ErrRemoteUnavailable, parentID)
		}
		visited[parentID] = true
		if f, err = drive.GetFolder(ctx, parentID); err != nil {
			return drives.Folder{}, unavailable(err)
		}
	}
	if !f.IsFolder() {
		// A file shared with the account has no parents but is not a drive.
		if root, ok := c.lookupRoot(ctx); ok {
			return root, nil
		}
		return drives.Folder{}, fmt.Errorf("%w: %q is not a folder", drives.ErrRemoteUnavailable, f.Name)
	}
	return f, nil
}

func (c *Controller) lookupRoot(ctx context.Context) (drives.Folder, bool) {
	if !c.rootLookup {
		return drives.Folder{}, false
	}
	locator, ok := c.session.Drive.(drives.RootLocator)
	if !ok {
		return drives.Folder{}, false
	}
	root, err := locator.Root(ctx)
	if err != nil {
		c.session.Logger.Warn().Err(err).Msg("navigation: root lookup failed")
		return drives.Folder{}, false
	}
	return root, true
}

func unavailable(err error) error {
	if errors.Is(err, drives.ErrRemoteUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", drives.ErrRemoteUnavailable, err)
}

// Descend opens folder: pushes it onto the stack and refreshes the listing.
func (c *Controller) Descend(ctx context.Context, folder drives.Folder) error {
	if folder.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidFolder)
	}
	return c.mutate(ctx, func(s Stack) (Stack, bool) {
		return s.Push(folder), true
	})
}

// Ascend goes to the parent folder. At the top-level folder it does nothing.
func (c *Controller) Ascend(ctx context.Context) error {
	return c.mutate(ctx, func(s Stack) (Stack, bool) {
		return s.Pop()
	})
}

// AscendTo pops the stack until the folder at depth (0 = top-level) is current.
func (c *Controller) AscendTo(ctx context.Context, depth int) error {
	if depth < 0 {
		return fmt.Errorf("%w: negative depth %d", ErrInvalidFolder, depth)
	}
	return c.mutate(ctx, func(s Stack) (Stack, bool) {
		if depth >= len(s)-1 {
			return s, false
		}
		return s.Clone()[:depth+1], true
	})
}

// Refresh lists the current folder again.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.mutate(ctx, func(s Stack) (Stack, bool) {
		return s, true
	})
}

func (c *Controller) mutate(ctx context.Context, f func(Stack) (Stack, bool)) error {
	c.mu.Lock()
	if len(c.stack) == 0 {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	next, changed := f(c.stack)
	if !changed {
		c.mu.Unlock()
		return nil
	}
	c.stack = next
	current, _ := next.Current()
	gen, loadCtx := c.startLocked(ctx)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
	c.session.Logger.Debug().Str("path", next.Path()).Uint64("generation", gen).Msg("navigation: refreshing")
	return c.load(loadCtx, gen, current)
}

// startLocked supersedes whatever is in flight and marks the listing as loading.
func (c *Controller) startLocked(ctx context.Context) (uint64, context.Context) {
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	if c.listing != nil {
		c.lastKnown = c.listing
	}
	c.listing = nil
	c.loading = true
	c.lastErr = nil
	return c.generation, loadCtx
}

func (c *Controller) finishLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false
}

func (c *Controller) load(ctx context.Context, gen uint64, folder drives.Folder) error {
	listing, err := c.session.Drive.ListFolders(ctx, folder.ID)
	if err == nil {
		listing = c.onlyFoldersByName(folder.ID, listing)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.session.Logger.Debug().Str("folder", folder.Name).Uint64("generation", gen).Msg("navigation: dropping superseded listing")
		return ErrSuperseded
	}
	c.finishLocked()
	if err != nil {
		c.listing = c.lastKnown
		c.stale = c.listing != nil
		c.lastErr = err
	} else {
		c.listing = &listing
		c.lastKnown = nil
		c.stale = false
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	if err != nil {
		c.session.Logger.Error().Err(err).Str("folder", folder.Name).Msg("navigation: failed to list folder")
		return fmt.Errorf("failed to list %q: %w", folder.Name, err)
	}
	c.session.Logger.Debug().Str("folder", folder.Name).Int("count", len(listing.Folders)).Msg("navigation: listed")
	return nil
}

// onlyFoldersByName keeps folder entries only and orders them by name
// whatever order the service returned.
func (c *Controller) onlyFoldersByName(folderID string, listing drives.Listing) drives.Listing {
	folders := make([]drives.Folder, 0, len(listing.Folders))
	for _, f := range listing.Folders {
		if f.IsFolder() {
			folders = append(folders, f)
		}
	}
	collator := collate.New(c.lang, collate.IgnoreCase)
	sort.SliceStable(folders, func(i, j int) bool {
		return collator.CompareString(folders[i].Name, folders[j].Name) < 0
	})
	listing.Folder = folderID
	listing.Folders = folders
	return listing
}
