package gdrive

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/datatug/drivetug/pkg/drives"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	space           = "drive"
	rootAlias       = "root"
	DefaultPageSize = 100

	listFields  googleapi.Field = "nextPageToken, files(id, name, parents, mimeType)"
	anyFields   googleapi.Field = "files(id, name, parents, mimeType)"
	getFields   googleapi.Field = "id, name, parents, mimeType"
	aboutFields googleapi.Field = "user(displayName, emailAddress)"

	requestIDHeader = "X-Request-Id"

	// sharedCallTimeout bounds a shared request once every caller has given up on it.
	sharedCallTimeout = 2 * time.Minute
)

var _ drives.Service = (*Store)(nil)
var _ drives.RootLocator = (*Store)(nil)

type StoreOption func(*Store)

func WithPageSize(n int64) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// WithClientOptions passes extra options to drive.NewService, e.g. a test endpoint.
func WithClientOptions(o ...option.ClientOption) StoreOption {
	return func(s *Store) {
		s.clientOptions = append(s.clientOptions, o...)
	}
}

type Store struct {
	svc           *drive.Service
	pageSize      int64
	log           zerolog.Logger
	clientOptions []option.ClientOption
	calls         singleflight.Group
}

var newRequestID = uuid.NewString

// Open creates a Drive v3 backed store that sends requests through client.
// The client is expected to carry the account credentials.
func Open(ctx context.Context, client *http.Client, o ...StoreOption) (*Store, error) {
	s := &Store{
		pageSize: DefaultPageSize,
		log:      zerolog.Nop(),
	}
	for _, opt := range o {
		opt(s)
	}
	clientOptions := append([]option.ClientOption{option.WithHTTPClient(client)}, s.clientOptions...)
	svc, err := drive.NewService(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	s.svc = svc
	return s, nil
}

func (s *Store) AnyFile(ctx context.Context) (drives.Folder, error) {
	reqID := newRequestID()
	s.log.Debug().Str("request_id", reqID).Msg("drive: looking up any file")
	call := s.svc.Files.List().
		Context(ctx).
		Spaces(space).
		Q("trashed=false").
		PageSize(1).
		Fields(anyFields)
	call.Header().Set(requestIDHeader, reqID)
	r, err := call.Do()
	if err != nil {
		return drives.Folder{}, classify("list any file", err)
	}
	if len(r.Files) == 0 {
		return drives.Folder{}, drives.ErrNoFiles
	}
	return toFolder(r.Files[0]), nil
}

func (s *Store) GetFolder(ctx context.Context, id string) (drives.Folder, error) {
	v, err := s.shared(ctx, "get:"+id, func(ctx context.Context) (any, error) {
		reqID := newRequestID()
		s.log.Debug().Str("request_id", reqID).Str("id", id).Msg("drive: get")
		call := s.svc.Files.Get(id).Context(ctx).Fields(getFields)
		call.Header().Set(requestIDHeader, reqID)
		f, err := call.Do()
		if err != nil {
			return nil, classify("get "+id, err)
		}
		return toFolder(f), nil
	})
	if err != nil {
		return drives.Folder{}, err
	}
	return v.(drives.Folder), nil
}

// shared runs f once for all concurrent callers of key. f gets a context that is
// not canceled with the caller that started it, so a caller that gives up does
// not fail the callers still waiting. Each caller stops waiting when its own ctx is done.
func (s *Store) shared(ctx context.Context, key string, f func(ctx context.Context) (any, error)) (any, error) {
	ch := s.calls.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return f(callCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

func (s *Store) Root(ctx context.Context) (drives.Folder, error) {
	return s.GetFolder(ctx, rootAlias)
}

func (s *Store) ListFolders(ctx context.Context, parentID string) (drives.Listing, error) {
	v, err := s.shared(ctx, "list:"+parentID, func(ctx context.Context) (any, error) {
		reqID := newRequestID()
		s.log.Debug().Str("request_id", reqID).Str("parent", parentID).Msg("drive: list folders")
		call := s.svc.Files.List().
			Context(ctx).
			Spaces(space).
			Q(folderChildrenQuery(parentID)).
			OrderBy("name").
			PageSize(s.pageSize).
			Fields(listFields)
		call.Header().Set(requestIDHeader, reqID)
		r, err := call.Do()
		if err != nil {
			return nil, classify("list "+parentID, err)
		}
		listing := drives.Listing{
			Folder:    parentID,
			Folders:   make([]drives.Folder, 0, len(r.Files)),
			Truncated: r.NextPageToken != "",
		}
		for _, f := range r.Files {
			if f.MimeType != drives.FolderMimeType {
				continue
			}
			listing.Folders = append(listing.Folders, toFolder(f))
		}
		s.log.Debug().Str("request_id", reqID).Int("count", len(listing.Folders)).Bool("truncated", listing.Truncated).Msg("drive: listed")
		return listing, nil
	})
	if err != nil {
		return drives.Listing{}, err
	}
	listing := v.(drives.Listing)
	// Shared singleflight results must not alias between callers.
	return *listing.Clone(), nil
}

func (s *Store) About(ctx context.Context) (drives.Account, error) {
	call := s.svc.About.Get().Context(ctx).Fields(aboutFields)
	call.Header().Set(requestIDHeader, newRequestID())
	r, err := call.Do()
	if err != nil {
		return drives.Account{}, classify("about", err)
	}
	if r.User == nil {
		return drives.Account{}, nil
	}
	return drives.Account{
		Email:       r.User.EmailAddress,
		DisplayName: r.User.DisplayName,
	}, nil
}

func toFolder(f *drive.File) drives.Folder {
	o := []drives.FolderOption{drives.WithMimeType(f.MimeType)}
	if len(f.Parents) > 0 {
		o = append(o, drives.WithParents(f.Parents...))
	}
	return drives.NewFolder(f.Id, f.Name, o...)
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func folderChildrenQuery(parentID string) string {
	return fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false",
		queryEscaper.Replace(parentID), drives.FolderMimeType)
}
