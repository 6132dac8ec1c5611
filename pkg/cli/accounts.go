package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/datatug/drivetug/pkg/auth"
	"github.com/datatug/drivetug/pkg/drives"
	"github.com/datatug/drivetug/pkg/drives/gdrive"
	"github.com/datatug/drivetug/pkg/drives/memdrive"
	"github.com/datatug/drivetug/pkg/drivetug"
	"github.com/datatug/drivetug/pkg/navigation"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

var _ drivetug.Accounts = (*googleAccounts)(nil)
var _ drivetug.Accounts = (*demoAccounts)(nil)

// googleAccounts opens Google Drive sessions with stored OAuth tokens.
type googleAccounts struct {
	auth          *auth.Authenticator
	tokens        *auth.TokenStore
	pageSize      int64
	log           zerolog.Logger
	clientOptions []option.ClientOption
}

func newGoogleAccounts(e *env) (*googleAccounts, error) {
	config, err := auth.LoadConfig(e.cfg.Credentials)
	if err != nil {
		return nil, err
	}
	g := &googleAccounts{
		tokens:        e.tokens,
		pageSize:      e.cfg.PageSize,
		log:           e.log,
		clientOptions: e.clientOptions,
	}
	g.auth = auth.NewAuthenticator(config, e.tokens,
		auth.WithLogger(e.log),
		auth.WithRedirectPort(e.cfg.RedirectPort),
		auth.WithIdentify(g.identify),
	)
	return g, nil
}

func (g *googleAccounts) store(ctx context.Context, client *http.Client) (*gdrive.Store, error) {
	return gdrive.Open(ctx, client,
		gdrive.WithPageSize(g.pageSize),
		gdrive.WithLogger(g.log),
		gdrive.WithClientOptions(g.clientOptions...),
	)
}

// identify names a freshly authorized account by its e-mail.
func (g *googleAccounts) identify(ctx context.Context, client *http.Client) (string, error) {
	store, err := g.store(ctx, client)
	if err != nil {
		return "", err
	}
	account, err := store.About(ctx)
	if err != nil {
		return "", err
	}
	if account.Email == "" {
		return "", fmt.Errorf("%w: account has no e-mail", drives.ErrRemoteUnavailable)
	}
	return account.Email, nil
}

func (g *googleAccounts) List() ([]string, error) {
	return g.tokens.Accounts()
}

func (g *googleAccounts) Open(ctx context.Context, account string) (navigation.Session, error) {
	client, err := g.auth.Client(ctx, account)
	if err != nil {
		return navigation.Session{}, err
	}
	store, err := g.store(ctx, client)
	if err != nil {
		return navigation.Session{}, err
	}
	return navigation.NewSession(account, store, g.log), nil
}

func (g *googleAccounts) Login(ctx context.Context, account string, prompt func(authURL string)) (string, error) {
	return g.auth.Login(ctx, account, prompt)
}

func (g *googleAccounts) Recover(ctx context.Context, account string, prompt func(authURL string)) error {
	return g.auth.Recover(ctx, account, prompt)
}

const demoAccount = "demo@example.com"

// demoAccounts serves one in-memory sample drive, no credentials needed.
type demoAccounts struct {
	drive *memdrive.Drive
	log   zerolog.Logger
}

func newDemoAccounts(pageSize int64, log zerolog.Logger) *demoAccounts {
	return &demoAccounts{drive: memdrive.NewDemo(memdrive.WithPageSize(int(pageSize))), log: log}
}

func (d *demoAccounts) List() ([]string, error) {
	return []string{demoAccount}, nil
}

func (d *demoAccounts) Open(_ context.Context, account string) (navigation.Session, error) {
	if account != demoAccount {
		return navigation.Session{}, fmt.Errorf("%w: only %s is available in demo mode", drives.ErrNotFound, demoAccount)
	}
	return navigation.NewSession(account, d.drive, d.log), nil
}

func (d *demoAccounts) Login(_ context.Context, account string, _ func(authURL string)) (string, error) {
	if account != "" && account != demoAccount {
		return "", fmt.Errorf("%w: only %s is available in demo mode", drives.ErrNotFound, demoAccount)
	}
	return demoAccount, nil
}

func (d *demoAccounts) Recover(context.Context, string, func(authURL string)) error {
	return nil
}
