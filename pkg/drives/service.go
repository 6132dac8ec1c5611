package drives

import "context"

//go:generate mockgen -destination=mocks.go -package=drives . Service,RootLocator

type Account struct {
	Email       string
	DisplayName string
}

type Service interface {
	// AnyFile returns an arbitrary non-trashed entry of the drive.
	AnyFile(ctx context.Context) (Folder, error)
	GetFolder(ctx context.Context, id string) (Folder, error)
	// ListFolders returns the first page of child folders of parentID ordered by name.
	ListFolders(ctx context.Context, parentID string) (Listing, error)
	About(ctx context.Context) (Account, error)
}

// RootLocator is implemented by services that can resolve the top-level folder directly.
type RootLocator interface {
	Root(ctx context.Context) (Folder, error)
}
