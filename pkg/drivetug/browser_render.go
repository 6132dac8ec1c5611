package drivetug

import (
	"fmt"
	"strings"

	"github.com/datatug/drivetug/pkg/navigation"
	"github.com/datatug/drivetug/pkg/sneatv/crumbs"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const folderIcon = "📁 "

// render draws s if it belongs to the controller shown.
func (b *Browser) render(c *navigation.Controller, s navigation.Snapshot) {
	current, account := b.current()
	if current != c {
		return
	}
	b.shown = s

	b.breadcrumbs.Clear()
	for i, f := range s.Stack {
		depth := i
		crumb := crumbs.NewBreadcrumb(f.Name, func() error {
			b.AscendTo(depth)
			return nil
		}).SetKey(f.ID)
		if s.Err != nil && i == len(s.Stack)-1 {
			crumb.SetColor(tcell.ColorRed)
		}
		b.breadcrumbs.Push(crumb)
	}

	if folder, ok := s.Current(); ok {
		b.title.SetText("[::b]" + tview.Escape(folder.Name) + "[::-]")
	} else {
		b.title.SetText("")
	}
	b.setUpButton(s.CanAscend())

	selected := b.list.GetCurrentItem()
	b.list.Clear()
	if s.Listing != nil {
		for _, f := range s.Listing.Folders {
			b.list.AddItem(folderIcon+tview.Escape(f.Name), "", 0, nil)
		}
		if s.Stale && selected < b.list.GetItemCount() {
			b.list.SetCurrentItem(selected)
		}
	}

	status := statusText(s)
	if s.Loading && !s.Initialized() && b.lastFolderPath != nil {
		if names := b.lastFolderPath(account); len(names) > 0 {
			status += " [gray](last opened: " + tview.Escape(strings.Join(names, " > ")) + ")[-]"
		}
	}
	b.status.SetText(status)

	if b.onNavigate != nil && s.Listing != nil && !s.Loading && s.Err == nil {
		names := make([]string, len(s.Stack))
		for i, f := range s.Stack {
			names[i] = f.Name
		}
		b.onNavigate(names)
	}
}

func (b *Browser) setUpButton(visible bool) {
	if visible == b.upShown {
		return
	}
	b.upShown = visible
	width := 0
	if visible {
		width = upButtonWidth
	}
	b.titleBar.ResizeItem(b.upButton, width, 0)
}

func statusText(s navigation.Snapshot) string {
	switch {
	case s.Loading && !s.Initialized():
		return "Initializing..."
	case s.Loading:
		return "Searching..."
	case s.Err != nil:
		text := "[red]" + tview.Escape(s.Err.Error()) + "[-]"
		if s.Stale {
			text += " [yellow](showing last known folders)[-]"
		}
		return text
	case s.Listing != nil:
		var text string
		switch n := len(s.Listing.Folders); n {
		case 0:
			text = "No folders"
		case 1:
			text = "1 folder"
		default:
			text = fmt.Sprintf("%d folders", n)
		}
		if s.Listing.Truncated {
			text += " [yellow](more folders not shown)[-]"
		}
		return text
	default:
		return ""
	}
}

func (b *Browser) showAccount(account string) {
	name := "[gray]none[-]"
	if account != "" {
		name = "[::b]" + tview.Escape(account) + "[::-]"
	}
	b.header.SetText(fmt.Sprintf("Account: %s   [gray]a: accounts  r: refresh  q: quit[-]", name))
}

func (b *Browser) showError(err error) {
	b.app.QueueUpdateDraw(func() {
		b.status.SetText("[red]" + tview.Escape(err.Error()) + "[-]")
	})
}
