package drivetug

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/datatug/drivetug/pkg/navigation"
	"github.com/datatug/drivetug/pkg/sneatv/crumbs"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
)

const (
	mainPage     = "main"
	accountsPage = "accounts"

	upButtonWidth  = 6
	maxCrumbWidth  = 24
	addAccountItem = "Add account..."
)

type Option func(b *Browser)

func WithLogger(log zerolog.Logger) Option {
	return func(b *Browser) {
		b.log = log
	}
}

func WithNavigationOptions(o ...navigation.Option) Option {
	return func(b *Browser) {
		b.navOptions = append(b.navOptions, o...)
	}
}

// OnAccountChange is called with the account whose drive is about to be shown.
func OnAccountChange(f func(account string)) Option {
	return func(b *Browser) {
		b.onAccountChange = f
	}
}

// OnNavigate is called with folder names from the top-level folder to the current one
// each time a listing is loaded.
func OnNavigate(f func(names []string)) Option {
	return func(b *Browser) {
		b.onNavigate = f
	}
}

// WithLastFolderPath sets where the folder path last opened for an account is looked up.
// It is shown while the account's drive is being initialized.
func WithLastFolderPath(f func(account string) []string) Option {
	return func(b *Browser) {
		b.lastFolderPath = f
	}
}

// WithPromptOutput sets where the authorization URL is printed while the UI is suspended.
func WithPromptOutput(w io.Writer) Option {
	return func(b *Browser) {
		b.promptOut = w
	}
}

// Browser is the folder browsing UI of one account at a time.
type Browser struct {
	app             App
	accounts        Accounts
	log             zerolog.Logger
	navOptions      []navigation.Option
	onAccountChange func(account string)
	onNavigate      func(names []string)
	lastFolderPath  func(account string) []string
	promptOut       io.Writer
	goroutine       func(f func())

	ctx context.Context

	pages       *tview.Pages
	main        *tview.Flex
	header      *tview.TextView
	breadcrumbs *crumbs.Breadcrumbs
	titleBar    *tview.Flex
	title       *tview.TextView
	upButton    *tview.Button
	upShown     bool
	list        *tview.List
	status      *tview.TextView
	chooser     *tview.List

	// shown is the snapshot currently rendered, UI goroutine only.
	shown navigation.Snapshot

	mu          sync.Mutex
	account     string
	controller  *navigation.Controller
	unsubscribe func()
	authRetried string
}

func NewBrowser(app App, accounts Accounts, o ...Option) *Browser {
	b := &Browser{
		app:       app,
		accounts:  accounts,
		log:       zerolog.Nop(),
		promptOut: os.Stdout,
		goroutine: func(f func()) {
			go f()
		},
		ctx: context.Background(),
	}
	for _, opt := range o {
		opt(b)
	}
	b.createLayout()
	return b
}

func (b *Browser) createLayout() {
	b.header = tview.NewTextView().SetDynamicColors(true)
	b.showAccount("")

	b.breadcrumbs = crumbs.NewBreadcrumbs(nil, crumbs.WithMaxItemWidth(maxCrumbWidth))

	b.title = tview.NewTextView().SetDynamicColors(true)
	b.upButton = tview.NewButton("↑ Up").SetSelectedFunc(b.Ascend)
	b.titleBar = tview.NewFlex().
		AddItem(b.title, 0, 1, false).
		AddItem(b.upButton, 0, 0, false)

	b.list = tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true)
	b.list.SetBorder(true)
	b.list.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		b.descendAt(index)
	})

	b.status = tview.NewTextView().SetDynamicColors(true)

	b.main = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.header, 1, 0, false).
		AddItem(b.breadcrumbs, 1, 0, false).
		AddItem(b.titleBar, 1, 0, false).
		AddItem(b.list, 0, 1, true).
		AddItem(b.status, 1, 0, false)
	b.main.SetInputCapture(b.inputCapture)

	b.breadcrumbs.SetNextFocusTarget(b.list)
	b.breadcrumbs.SetPrevFocusTarget(b.list)

	b.chooser = tview.NewList().ShowSecondaryText(false)
	b.chooser.SetBorder(true).SetTitle(" Accounts ")
	b.chooser.SetDoneFunc(b.closeAccounts)
	modal := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(b.chooser, 12, 0, true).
			AddItem(nil, 0, 1, false), 50, 0, true).
		AddItem(nil, 0, 1, false)

	b.pages = tview.NewPages().
		AddPage(mainPage, b.main, true, true).
		AddPage(accountsPage, modal, true, false)
}

func (b *Browser) inputCapture(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyLeft:
		if b.breadcrumbs.HasFocus() {
			return event
		}
		b.Ascend()
		return nil
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyEscape:
		b.Ascend()
		return nil
	case tcell.KeyRight:
		if b.list.HasFocus() {
			b.descendAt(b.list.GetCurrentItem())
			return nil
		}
		return event
	case tcell.KeyUp:
		if b.list.HasFocus() && b.list.GetCurrentItem() == 0 {
			b.breadcrumbs.TakeFocus(b.list)
			b.app.SetFocus(b.breadcrumbs)
			return nil
		}
		return event
	case tcell.KeyRune:
		switch event.Rune() {
		case 'a', 'A':
			b.ShowAccounts()
			return nil
		case 'r', 'R':
			b.Refresh()
			return nil
		case 'q', 'Q':
			b.app.Stop()
			return nil
		}
	default:
	}
	return event
}

// Run shows the browser and blocks until the app stops.
// An empty account picks the only stored one, offers a choice or starts a login.
func (b *Browser) Run(ctx context.Context, account string) error {
	b.ctx = ctx
	b.app.SetRoot(b.pages, true)
	b.app.EnableMouse(true)
	b.app.SetFocus(b.list)
	b.goroutine(func() {
		b.start(account)
	})
	return b.app.Run()
}

func (b *Browser) start(account string) {
	if account != "" {
		b.switchAccount(account)
		return
	}
	accounts, err := b.accounts.List()
	if err != nil {
		b.showError(err)
		return
	}
	switch len(accounts) {
	case 0:
		b.addAccount()
	case 1:
		b.switchAccount(accounts[0])
	default:
		b.app.QueueUpdateDraw(b.ShowAccounts)
	}
}

func (b *Browser) current() (*navigation.Controller, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.controller, b.account
}

// Account returns the account shown.
func (b *Browser) Account() string {
	_, account := b.current()
	return account
}
