package memdrive

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/datatug/drivetug/pkg/drives"
)

const RootID = "root"

var _ drives.Service = (*Drive)(nil)
var _ drives.RootLocator = (*Drive)(nil)

type Option func(*Drive)

// WithLatency delays every call, honoring context cancellation.
func WithLatency(d time.Duration) Option {
	return func(m *Drive) {
		m.latency = d
	}
}

func WithAccount(account drives.Account) Option {
	return func(m *Drive) {
		m.account = account
	}
}

func WithPageSize(n int) Option {
	return func(m *Drive) {
		m.pageSize = n
	}
}

// Drive is an in-memory drives.Service. Entries are kept in insertion order.
type Drive struct {
	mu       sync.Mutex
	entries  map[string]drives.Folder
	order    []string
	trashed  map[string]bool
	errs     map[string]error
	calls    map[string]int
	account  drives.Account
	latency  time.Duration
	pageSize int
	gates    map[string]chan struct{}
}

// New creates a drive with a top-level folder named rootName.
func New(rootName string, o ...Option) *Drive {
	m := &Drive{
		entries: make(map[string]drives.Folder),
		trashed: make(map[string]bool),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
		gates:   make(map[string]chan struct{}),
	}
	m.put(drives.NewFolder(RootID, rootName))
	for _, opt := range o {
		opt(m)
	}
	return m
}

func (m *Drive) put(f drives.Folder) {
	if _, ok := m.entries[f.ID]; !ok {
		m.order = append(m.order, f.ID)
	}
	m.entries[f.ID] = f
}

func (m *Drive) AddFolder(id, name, parentID string) drives.Folder {
	f := drives.NewFolder(id, name, drives.WithParents(parentID))
	m.mu.Lock()
	m.put(f)
	m.mu.Unlock()
	return f
}

func (m *Drive) AddFile(id, name, mimeType, parentID string) drives.Folder {
	f := drives.NewFolder(id, name, drives.WithParents(parentID), drives.WithMimeType(mimeType))
	m.mu.Lock()
	m.put(f)
	m.mu.Unlock()
	return f
}

func (m *Drive) Trash(id string) {
	m.mu.Lock()
	m.trashed[id] = true
	m.mu.Unlock()
}

// Remove deletes the top-level folder too, so an empty drive can be simulated.
func (m *Drive) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// FailOn makes the named method ("AnyFile", "GetFolder", "ListFolders", "About", "Root")
// return err until cleared with a nil err.
func (m *Drive) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, method)
		return
	}
	m.errs[method] = err
}

// Hold blocks ListFolders of parentID until the returned func is called.
func (m *Drive) Hold(parentID string) (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gates[parentID] = gate
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.gates, parentID)
			m.mu.Unlock()
			close(gate)
		})
	}
}

func (m *Drive) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *Drive) begin(ctx context.Context, method string) error {
	m.mu.Lock()
	m.calls[method]++
	err := m.errs[method]
	latency := m.latency
	m.mu.Unlock()
	if latency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(latency):
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (m *Drive) AnyFile(ctx context.Context) (drives.Folder, error) {
	if err := m.begin(ctx, "AnyFile"); err != nil {
		return drives.Folder{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// The most recently added entry, so the walk up is not trivial.
	for i := len(m.order) - 1; i >= 0; i-- {
		id := m.order[i]
		if !m.trashed[id] {
			return m.entries[id], nil
		}
	}
	return drives.Folder{}, drives.ErrNoFiles
}

func (m *Drive) GetFolder(ctx context.Context, id string) (drives.Folder, error) {
	if err := m.begin(ctx, "GetFolder"); err != nil {
		return drives.Folder{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.entries[id]
	if !ok {
		return drives.Folder{}, fmt.Errorf("get %s: %w", id, drives.ErrNotFound)
	}
	return f, nil
}

func (m *Drive) Root(ctx context.Context) (drives.Folder, error) {
	if err := m.begin(ctx, "Root"); err != nil {
		return drives.Folder{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.entries[RootID]
	if !ok {
		return drives.Folder{}, fmt.Errorf("root: %w", drives.ErrNotFound)
	}
	return f, nil
}

func (m *Drive) ListFolders(ctx context.Context, parentID string) (drives.Listing, error) {
	if err := m.begin(ctx, "ListFolders"); err != nil {
		return drives.Listing{}, err
	}
	m.mu.Lock()
	gate := m.gates[parentID]
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-ctx.Done():
			return drives.Listing{}, ctx.Err()
		case <-gate:
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	listing := drives.Listing{Folder: parentID}
	for _, id := range m.order {
		f := m.entries[id]
		if m.trashed[id] || !f.IsFolder() || !hasParent(f, parentID) {
			continue
		}
		listing.Folders = append(listing.Folders, f)
	}
	sort.SliceStable(listing.Folders, func(i, j int) bool {
		return strings.ToLower(listing.Folders[i].Name) < strings.ToLower(listing.Folders[j].Name)
	})
	if m.pageSize > 0 && len(listing.Folders) > m.pageSize {
		listing.Folders = listing.Folders[:m.pageSize]
		listing.Truncated = true
	}
	return listing, nil
}

func (m *Drive) About(ctx context.Context) (drives.Account, error) {
	if err := m.begin(ctx, "About"); err != nil {
		return drives.Account{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account, nil
}

func hasParent(f drives.Folder, parentID string) bool {
	for _, p := range f.Parents {
		if p == parentID {
			return true
		}
	}
	return false
}
