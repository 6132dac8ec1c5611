package crumbs

import "github.com/gdamore/tcell/v2"

// Breadcrumb is one item of the path: a title plus the key of what it points to,
// e.g. a folder id.
type Breadcrumb interface {
	GetTitle() string
	GetKey() string
	SetKey(key string) Breadcrumb
	SetColor(color tcell.Color) Breadcrumb
	GetColor() tcell.Color
	Action() error
}

type breadcrumb struct {
	title  string
	key    string
	color  tcell.Color
	action func() error
}

func (b *breadcrumb) GetTitle() string {
	return b.title
}

// GetKey returns the key set with SetKey or the title when there is none.
func (b *breadcrumb) GetKey() string {
	if b.key == "" {
		return b.title
	}
	return b.key
}

func (b *breadcrumb) SetKey(key string) Breadcrumb {
	b.key = key
	return b
}

func (b *breadcrumb) GetColor() tcell.Color {
	return b.color
}

func (b *breadcrumb) SetColor(color tcell.Color) Breadcrumb {
	b.color = color
	return b
}

func (b *breadcrumb) Action() error {
	if b.action == nil {
		return nil
	}
	return b.action()
}

func NewBreadcrumb(title string, action func() error) Breadcrumb {
	return &breadcrumb{title: title, action: action}
}
