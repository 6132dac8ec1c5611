package drives

// Listing is one page of immediate child folders of Folder.
type Listing struct {
	Folder    string
	Folders   []Folder
	Truncated bool
}

func (l *Listing) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Folders)
}

// Clone returns a copy that does not share the Folders slice.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	if l.Folders != nil {
		c.Folders = make([]Folder, len(l.Folders))
		copy(c.Folders, l.Folders)
	}
	return &c
}
