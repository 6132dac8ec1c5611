package crumbs

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	defaultSeparator = " > "
	ellipsis         = "…"
)

// Breadcrumbs is a one-line path widget: every item can be selected with
// the keyboard or the mouse and runs its action on Enter or click.
type Breadcrumbs struct {
	*tview.Box
	items             []Breadcrumb
	selectedItemIndex int
	separator         string
	maxItemWidth      int
	nextFocusTarget   tview.Primitive
	prevFocusTarget   tview.Primitive
}

func NewBreadcrumbs(root Breadcrumb, o ...func(bc *Breadcrumbs)) *Breadcrumbs {
	bc := &Breadcrumbs{
		Box:       tview.NewBox(),
		separator: defaultSeparator,
	}
	for _, opt := range o {
		opt(bc)
	}
	if root != nil {
		bc.items = append(bc.items, root)
	}
	return bc
}

func (b *Breadcrumbs) Push(bc Breadcrumb) {
	b.items = append(b.items, bc)
	b.selectedItemIndex = len(b.items) - 1
}

func (b *Breadcrumbs) Clear() {
	b.items = nil
	b.selectedItemIndex = 0
}

func (b *Breadcrumbs) Len() int {
	return len(b.items)
}

// Titles returns item titles from the home item on.
func (b *Breadcrumbs) Titles() []string {
	titles := make([]string, len(b.items))
	for i, item := range b.items {
		titles[i] = item.GetTitle()
	}
	return titles
}

// Keys returns item keys from the home item on.
func (b *Breadcrumbs) Keys() []string {
	keys := make([]string, len(b.items))
	for i, item := range b.items {
		keys[i] = item.GetKey()
	}
	return keys
}

// Item returns the item at i or nil.
func (b *Breadcrumbs) Item(i int) Breadcrumb {
	if i < 0 || i >= len(b.items) {
		return nil
	}
	return b.items[i]
}

func (b *Breadcrumbs) GoHome() error {
	if len(b.items) == 0 {
		return nil
	}
	b.selectedItemIndex = 0
	return b.items[0].Action()
}

func (b *Breadcrumbs) SetNextFocusTarget(p tview.Primitive) {
	b.nextFocusTarget = p
}

func (b *Breadcrumbs) SetPrevFocusTarget(p tview.Primitive) {
	b.prevFocusTarget = p
}

// TakeFocus selects the home item and remembers where Tab should go back to.
func (b *Breadcrumbs) TakeFocus(from tview.Primitive) {
	b.selectedItemIndex = 0
	b.nextFocusTarget = from
}

func (b *Breadcrumbs) IsLastItemSelected() bool {
	return b.selectedItemIndex == len(b.items)-1
}

func (b *Breadcrumbs) Focus(delegate func(p tview.Primitive)) {
	if b.selectedItemIndex < 0 || b.selectedItemIndex >= len(b.items)-1 {
		b.selectedItemIndex = max(len(b.items)-2, 0)
	}
	b.Box.Focus(delegate)
}

func (b *Breadcrumbs) Blur() {
	b.selectedItemIndex = max(len(b.items)-1, 0)
	b.Box.Blur()
}

func (b *Breadcrumbs) itemColor(item Breadcrumb) tcell.Color {
	if color := item.GetColor(); color != tcell.ColorDefault {
		return color
	}
	return tview.Styles.PrimaryTextColor
}

// label is the escaped title, shortened to maxItemWidth.
func (b *Breadcrumbs) label(item Breadcrumb) string {
	title := item.GetTitle()
	if b.maxItemWidth > 0 && tview.TaggedStringWidth(tview.Escape(title)) > b.maxItemWidth {
		runes := []rune(title)
		for len(runes) > 0 && tview.TaggedStringWidth(tview.Escape(string(runes)))+1 > b.maxItemWidth {
			runes = runes[:len(runes)-1]
		}
		title = string(runes) + ellipsis
	}
	return tview.Escape(title)
}

// layout calls f with the column and width of every visible item.
func (b *Breadcrumbs) layout(x, maxX int, f func(i, x, w int) bool) {
	cursorX := x
	for i, item := range b.items {
		if cursorX >= maxX {
			return
		}
		w := tview.TaggedStringWidth(b.label(item))
		if !f(i, cursorX, min(w, maxX-cursorX)) {
			return
		}
		cursorX += w
		if i < len(b.items)-1 && cursorX < maxX {
			cursorX += tview.TaggedStringWidth(tview.Escape(b.separator))
		}
	}
}

func (b *Breadcrumbs) Draw(screen tcell.Screen) {
	b.Box.DrawForSubclass(screen, b)
	x, y, width, height := b.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}
	maxX := x + width
	focused := b.HasFocus()
	b.layout(x, maxX, func(i, cx, w int) bool {
		item := b.items[i]
		label := b.label(item)
		if focused && i == b.selectedItemIndex {
			label = "[black:yellow]" + label + "[-:-]"
		}
		tview.Print(screen, label, cx, y, w, tview.AlignLeft, b.itemColor(item))
		sepX := cx + w
		if i < len(b.items)-1 && sepX < maxX {
			tview.Print(screen, tview.Escape(b.separator), sepX, y, maxX-sepX, tview.AlignLeft, tview.Styles.TertiaryTextColor)
		}
		return true
	})
}

func (b *Breadcrumbs) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return b.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		if len(b.items) == 0 {
			return
		}
		switch event.Key() {
		case tcell.KeyTab, tcell.KeyDown:
			setFocus(b.nextFocusTarget)
		case tcell.KeyBacktab, tcell.KeyUp:
			if b.prevFocusTarget != nil {
				setFocus(b.prevFocusTarget)
			}
		case tcell.KeyLeft:
			if b.selectedItemIndex > 0 {
				b.selectedItemIndex--
			}
		case tcell.KeyRight:
			if b.selectedItemIndex < len(b.items)-1 {
				b.selectedItemIndex++
			}
		case tcell.KeyEnter:
			if b.selectedItemIndex >= 0 && b.selectedItemIndex < len(b.items) {
				_ = b.items[b.selectedItemIndex].Action()
			}
		default:
			return
		}
	})
}

func (b *Breadcrumbs) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return b.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		if action != tview.MouseLeftClick && action != tview.MouseLeftDown {
			return false, nil
		}
		mx, my := event.Position()
		x, y, width, height := b.GetInnerRect()
		if mx < x || mx >= x+width || my < y || my >= y+height {
			return false, nil
		}
		setFocus(b)
		hit := -1
		b.layout(x, x+width, func(i, cx, w int) bool {
			if mx >= cx && mx < cx+w {
				hit = i
				return false
			}
			return true
		})
		if hit >= 0 {
			b.selectedItemIndex = hit
			if action == tview.MouseLeftClick {
				_ = b.items[hit].Action()
			}
		}
		return true, nil
	})
}
