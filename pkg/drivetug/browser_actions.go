package drivetug

import (
	"context"
	"errors"
	"fmt"

	"github.com/datatug/drivetug/pkg/drives"
	"github.com/datatug/drivetug/pkg/navigation"
)

func (b *Browser) Descend(folder drives.Folder) {
	b.withController(func(ctx context.Context, c *navigation.Controller) error {
		return c.Descend(ctx, folder)
	})
}

func (b *Browser) Ascend() {
	b.withController(func(ctx context.Context, c *navigation.Controller) error {
		return c.Ascend(ctx)
	})
}

func (b *Browser) AscendTo(depth int) {
	b.withController(func(ctx context.Context, c *navigation.Controller) error {
		return c.AscendTo(ctx, depth)
	})
}

func (b *Browser) Refresh() {
	b.withController(func(ctx context.Context, c *navigation.Controller) error {
		return c.Refresh(ctx)
	})
}

func (b *Browser) descendAt(index int) {
	listing := b.shown.Listing
	if listing == nil || index < 0 || index >= len(listing.Folders) {
		return
	}
	b.Descend(listing.Folders[index])
}

func (b *Browser) withController(op func(ctx context.Context, c *navigation.Controller) error) {
	c, account := b.current()
	if c == nil {
		return
	}
	b.goroutine(func() {
		if err := op(b.ctx, c); err != nil {
			if current, _ := b.current(); current != c {
				return
			}
			b.handleError(account, err, true)
		}
	})
}

// SwitchAccount drops the navigation of the shown account and starts over with account.
func (b *Browser) SwitchAccount(account string) {
	b.goroutine(func() {
		b.switchAccount(account)
	})
}

func (b *Browser) switchAccount(account string) {
	b.log.Info().Str("account", account).Msg("browser: opening account")
	b.app.QueueUpdateDraw(func() {
		b.showAccount(account)
		b.status.SetText("Initializing...")
	})
	session, err := b.accounts.Open(b.ctx, account)
	if err != nil {
		b.handleError(account, err, false)
		return
	}
	c := navigation.NewController(session, b.navOptions...)

	b.mu.Lock()
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	b.controller = c
	b.account = account
	b.unsubscribe = c.OnChange(func(s navigation.Snapshot) {
		b.app.QueueUpdateDraw(func() {
			b.render(c, s)
		})
	})
	b.mu.Unlock()

	snapshot := c.Snapshot()
	b.app.QueueUpdateDraw(func() {
		b.showAccount(account)
		b.render(c, snapshot)
	})
	if b.onAccountChange != nil {
		b.onAccountChange(account)
	}
	if err = c.Initialize(b.ctx); err != nil {
		if current, _ := b.current(); current == c {
			b.handleError(account, err, true)
		}
		return
	}
	b.mu.Lock()
	if b.authRetried == account {
		b.authRetried = ""
	}
	b.mu.Unlock()
}

func (b *Browser) addAccount() {
	if account, ok := b.authorize("", drives.ErrPermissionRequired); ok {
		b.switchAccount(account)
	}
}

// handleError sorts errors of navigation actions into the three kinds the browser reacts to.
// rendered tells the error is already shown from the controller snapshot.
func (b *Browser) handleError(account string, err error, rendered bool) {
	switch {
	case errors.Is(err, navigation.ErrSuperseded), errors.Is(err, context.Canceled):
		return
	case drives.NeedsUser(err):
		b.mu.Lock()
		repeated := b.authRetried == account
		b.authRetried = account
		b.mu.Unlock()
		if repeated {
			b.log.Warn().Err(err).Str("account", account).Msg("browser: authorization did not help")
			b.showError(err)
			return
		}
		if authorized, ok := b.authorize(account, err); ok {
			b.switchAccount(authorized)
		}
	default:
		b.log.Error().Err(err).Str("account", account).Msg("browser: navigation failed")
		if !rendered {
			b.showError(err)
		}
	}
}

// authorize suspends the UI and runs the consent or recovery flow for the kind of err.
func (b *Browser) authorize(account string, err error) (string, bool) {
	var authErr error
	authorized := account
	prompt := func(authURL string) {
		_, _ = fmt.Fprintf(b.promptOut, "\nOpen this URL in a browser to authorize drivetug:\n\n  %s\n\nWaiting for authorization...\n", authURL)
	}
	b.log.Info().Str("account", account).Err(err).Msg("browser: authorization required")
	b.app.Suspend(func() {
		if errors.Is(err, drives.ErrInteractiveAuthRequired) {
			authErr = b.accounts.Recover(b.ctx, account, prompt)
			return
		}
		authorized, authErr = b.accounts.Login(b.ctx, account, prompt)
	})
	if authErr != nil {
		b.log.Error().Err(authErr).Str("account", account).Msg("browser: authorization failed")
		b.showError(authErr)
		return "", false
	}
	return authorized, true
}
