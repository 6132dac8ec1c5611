package drivetug

import (
	"context"

	"github.com/datatug/drivetug/pkg/navigation"
)

// Accounts connects the browser to drive accounts.
//
// Open fails with drives.ErrPermissionRequired when the account was never authorized.
// Login with an empty account adds a new one and returns its name.
type Accounts interface {
	List() ([]string, error)
	Open(ctx context.Context, account string) (navigation.Session, error)
	Login(ctx context.Context, account string, prompt func(authURL string)) (string, error)
	Recover(ctx context.Context, account string, prompt func(authURL string)) error
}
