package cli

import (
	"fmt"
	"io"

	"github.com/datatug/drivetug/pkg/auth"
	"github.com/datatug/drivetug/pkg/drivetug"
	"github.com/datatug/drivetug/pkg/dtsettings"
	"github.com/datatug/drivetug/pkg/dtstate"
	"github.com/datatug/drivetug/pkg/fsutils"
	"github.com/datatug/drivetug/pkg/logging"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// options are the global flags.
type options struct {
	configPath  string
	account     string
	credentials string
	demo        bool
	pageSize    int64
	verbose     bool
	noColor     bool
	cpuProfile  string
	memProfile  string

	// clientOptions are passed to the Drive client, tests point it to a fake endpoint.
	clientOptions []option.ClientOption
	atExit        []func()
}

// env is what a command runs with: settings resolved from the config file and flags.
type env struct {
	cfg           dtsettings.Config
	log           zerolog.Logger
	demo          bool
	tokens        *auth.TokenStore
	state         dtstate.Store
	clientOptions []option.ClientOption
	backend       drivetug.Accounts
}

var defaultConfigPath = dtsettings.DefaultConfigPath

func loadConfig(cmd *cobra.Command, o *options) (dtsettings.Config, error) {
	path := fsutils.ExpandHome(o.configPath)
	required := cmd.Flags().Changed("config")
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return dtsettings.Config{}, fmt.Errorf("failed to locate settings directory: %w", err)
		}
	}
	cfg, err := dtsettings.Load(path, required)
	if err != nil {
		return cfg, err
	}
	if o.account != "" {
		cfg.Account = o.account
	}
	if o.credentials != "" {
		cfg.Credentials = fsutils.ExpandHome(o.credentials)
	}
	if o.pageSize > 0 {
		cfg.PageSize = o.pageSize
	}
	if o.verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newEnv loads settings and sets up logging to w.
func newEnv(cmd *cobra.Command, o *options, w io.Writer) (*env, error) {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return nil, err
	}
	return newEnvWithLogger(o, cfg, logging.New(w, cfg.Verbose, color.NoColor)), nil
}

func newEnvWithLogger(o *options, cfg dtsettings.Config, log zerolog.Logger) *env {
	return &env{
		cfg:           cfg,
		log:           log,
		state:         dtstate.New(cfg.StateFile(), log),
		demo:          o.demo,
		tokens:        auth.NewTokenStore(cfg.AccountsDir()),
		clientOptions: o.clientOptions,
	}
}

func (e *env) accounts() (drivetug.Accounts, error) {
	if e.backend != nil {
		return e.backend, nil
	}
	if e.demo {
		e.backend = newDemoAccounts(e.cfg.PageSize, e.log)
		return e.backend, nil
	}
	g, err := newGoogleAccounts(e)
	if err != nil {
		return nil, err
	}
	e.backend = g
	return g, nil
}

// storedAccounts lists accounts without needing OAuth client credentials.
func (e *env) storedAccounts() ([]string, error) {
	if e.demo {
		return []string{demoAccount}, nil
	}
	return e.tokens.Accounts()
}

// preferredAccount is the account asked for by flag or config, else the last used one.
func (e *env) preferredAccount() string {
	if e.demo {
		return demoAccount
	}
	if e.cfg.Account != "" {
		return e.cfg.Account
	}
	return e.state.Account()
}

// account resolves the account of a non-interactive command.
func (e *env) account() (string, error) {
	if account := e.preferredAccount(); account != "" {
		return account, nil
	}
	accounts, err := e.storedAccounts()
	if err != nil {
		return "", err
	}
	switch len(accounts) {
	case 0:
		return "", fmt.Errorf("no account, run `drivetug login` first")
	case 1:
		return accounts[0], nil
	default:
		return "", fmt.Errorf("several accounts are stored, choose one with --account")
	}
}

func (e *env) language() language.Tag {
	if e.cfg.Language == "" {
		return language.Und
	}
	tag, err := language.Parse(e.cfg.Language)
	if err != nil {
		e.log.Warn().Err(err).Str("language", e.cfg.Language).Msg("cli: unknown language, using the default collation")
		return language.Und
	}
	return tag
}
