package drivetug

import (
	"github.com/rivo/tview"
)

// ShowAccounts opens the account chooser. Must be called from the UI goroutine.
func (b *Browser) ShowAccounts() {
	accounts, err := b.accounts.List()
	if err != nil {
		b.log.Error().Err(err).Msg("browser: failed to list accounts")
		b.status.SetText("[red]" + tview.Escape(err.Error()) + "[-]")
		return
	}
	shown := b.Account()
	b.chooser.Clear()
	for i, account := range accounts {
		name := account
		b.chooser.AddItem(tview.Escape(name), "", 0, func() {
			b.closeAccounts()
			if name != b.Account() {
				b.SwitchAccount(name)
			}
		})
		if name == shown {
			b.chooser.SetCurrentItem(i)
		}
	}
	b.chooser.AddItem(addAccountItem, "", '+', func() {
		b.closeAccounts()
		b.goroutine(b.addAccount)
	})
	b.pages.ShowPage(accountsPage)
	b.app.SetFocus(b.chooser)
}

func (b *Browser) closeAccounts() {
	b.pages.HidePage(accountsPage)
	b.app.SetFocus(b.list)
}
