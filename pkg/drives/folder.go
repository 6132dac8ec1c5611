package drives

const FolderMimeType = "application/vnd.google-apps.folder"

type FolderOption func(*Folder)

// Folder is an immutable snapshot of a remote drive entry.
// Despite the name it may describe a plain file, e.g. the one returned by Service.AnyFile.
type Folder struct {
	ID       string
	Name     string
	Parents  []string
	MimeType string
}

func NewFolder(id, name string, o ...FolderOption) Folder {
	f := Folder{
		ID:       id,
		Name:     name,
		MimeType: FolderMimeType,
	}
	for _, opt := range o {
		opt(&f)
	}
	return f
}

func WithParents(ids ...string) FolderOption {
	return func(f *Folder) {
		f.Parents = append([]string(nil), ids...)
	}
}

func WithMimeType(mimeType string) FolderOption {
	return func(f *Folder) {
		f.MimeType = mimeType
	}
}

func (f Folder) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// Parent returns the first parent id.
// Drive allows several parents; the rest are ignored when walking up.
func (f Folder) Parent() string {
	if len(f.Parents) == 0 {
		return ""
	}
	return f.Parents[0]
}

func (f Folder) IsTop() bool {
	return len(f.Parents) == 0
}

func (f Folder) String() string {
	return f.Name
}
