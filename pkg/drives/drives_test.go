package drives

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestNewFolder(t *testing.T) {
	t.Run("defaults_to_folder", func(t *testing.T) {
		f := NewFolder("id1", "Docs")
		assert.Equal(t, "id1", f.ID)
		assert.Equal(t, "Docs", f.Name)
		assert.True(t, f.IsFolder())
		assert.True(t, f.IsTop())
		assert.Equal(t, "", f.Parent())
		assert.Equal(t, "Docs", f.String())
	})

	t.Run("with_options", func(t *testing.T) {
		parents := []string{"p1", "p2"}
		f := NewFolder("id2", "a.txt", WithParents(parents...), WithMimeType("text/plain"))
		assert.False(t, f.IsFolder())
		assert.False(t, f.IsTop())
		assert.Equal(t, "p1", f.Parent())

		parents[0] = "changed"
		assert.Equal(t, "p1", f.Parent())
	})
}

func TestListing(t *testing.T) {
	var nilListing *Listing
	assert.Equal(t, 0, nilListing.Len())
	assert.Nil(t, nilListing.Clone())

	l := &Listing{Folder: "root", Folders: []Folder{NewFolder("a", "A")}, Truncated: true}
	c := l.Clone()
	assert.Equal(t, l, c)
	c.Folders[0] = NewFolder("b", "B")
	assert.Equal(t, "a", l.Folders[0].ID)
	assert.Equal(t, 1, l.Len())
}

func TestNeedsUser(t *testing.T) {
	assert.True(t, NeedsUser(fmt.Errorf("list: %w", ErrInteractiveAuthRequired)))
	assert.True(t, NeedsUser(ErrPermissionRequired))
	assert.False(t, NeedsUser(ErrRemoteUnavailable))
	assert.False(t, NeedsUser(errors.New("other")))
	assert.False(t, NeedsUser(nil))
}

func TestMockService(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	svc := NewMockService(ctrl)
	svc.EXPECT().AnyFile(gomock.Any()).Return(NewFolder("f", "file"), nil)
	svc.EXPECT().GetFolder(gomock.Any(), "root").Return(NewFolder("root", "My Drive"), nil)
	svc.EXPECT().ListFolders(gomock.Any(), "root").Return(Listing{Folder: "root"}, nil)
	svc.EXPECT().About(gomock.Any()).Return(Account{Email: "u@example.com"}, nil)

	var s Service = svc
	f, err := s.AnyFile(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "f", f.ID)
	root, err := s.GetFolder(ctx, "root")
	assert.NoError(t, err)
	assert.Equal(t, "My Drive", root.Name)
	listing, err := s.ListFolders(ctx, "root")
	assert.NoError(t, err)
	assert.Equal(t, "root", listing.Folder)
	account, err := s.About(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "u@example.com", account.Email)

	locator := NewMockRootLocator(ctrl)
	locator.EXPECT().Root(gomock.Any()).Return(NewFolder("root", "My Drive"), nil)
	var rl RootLocator = locator
	root, err = rl.Root(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "root", root.ID)
}
