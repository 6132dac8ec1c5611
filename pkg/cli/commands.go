package cli

import (
	"fmt"
	"io"

	"github.com/datatug/drivetug/pkg/drives"
	"github.com/datatug/drivetug/pkg/navigation"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	pathColor    = color.New(color.FgCyan, color.Bold)
	folderColor  = color.New(color.FgBlue, color.Bold)
	idColor      = color.New(color.FgHiBlack)
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
)

func newLsCmd(o *options) *cobra.Command {
	var showIDs bool
	cmd := &cobra.Command{
		Use:   "ls [folder-id]",
		Short: "List the folders of the top-level folder or of the given folder",
		Example: `  drivetug ls
  drivetug ls 1AbCdEf --ids`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			session, err := openSession(cmd, e)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c := navigation.NewController(session, navigation.WithLanguage(e.language()))
			if err = c.Initialize(ctx); err != nil {
				return err
			}
			if len(args) == 1 && args[0] != "" {
				folder, err := session.Drive.GetFolder(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get folder %s: %w", args[0], err)
				}
				if !folder.IsFolder() {
					return fmt.Errorf("%w: %s is not a folder", navigation.ErrInvalidFolder, folder.Name)
				}
				if root, _ := c.Snapshot().Stack.Root(); root.ID != folder.ID {
					if err = c.Descend(ctx, folder); err != nil {
						return err
					}
				}
			}
			printListing(cmd.OutOrStdout(), c.Snapshot(), showIDs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "print folder ids")
	return cmd
}

func printListing(w io.Writer, s navigation.Snapshot, showIDs bool) {
	_, _ = pathColor.Fprintln(w, s.Stack.Path()+"/")
	if s.Listing == nil {
		return
	}
	for _, f := range s.Listing.Folders {
		_, _ = folderColor.Fprint(w, "  "+f.Name+"/")
		if showIDs {
			_, _ = idColor.Fprint(w, "  "+f.ID)
		}
		_, _ = fmt.Fprintln(w)
	}
	if len(s.Listing.Folders) == 0 {
		_, _ = warnColor.Fprintln(w, "  (no folders)")
	}
	if s.Listing.Truncated {
		_, _ = warnColor.Fprintln(w, "  ... more folders not shown")
	}
}

func openSession(cmd *cobra.Command, e *env) (navigation.Session, error) {
	accounts, err := e.accounts()
	if err != nil {
		return navigation.Session{}, err
	}
	account, err := e.account()
	if err != nil {
		return navigation.Session{}, err
	}
	session, err := accounts.Open(cmd.Context(), account)
	if err != nil {
		if drives.NeedsUser(err) {
			return session, fmt.Errorf("%w (run `drivetug login %s`)", err, account)
		}
		return session, err
	}
	return session, nil
}

func newWhoamiCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the e-mail and name of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			session, err := openSession(cmd, e)
			if err != nil {
				return err
			}
			account, err := session.Drive.About(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = successColor.Fprintln(w, account.Email)
			if account.DisplayName != "" {
				_, _ = fmt.Fprintln(w, account.DisplayName)
			}
			return nil
		},
	}
}

func newLoginCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login [account]",
		Short: "Authorize an account, named by its e-mail unless given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			accounts, err := e.accounts()
			if err != nil {
				return err
			}
			var account string
			if len(args) == 1 {
				account = args[0]
			}
			w := cmd.OutOrStdout()
			account, err = accounts.Login(cmd.Context(), account, func(authURL string) {
				_, _ = fmt.Fprintf(w, "Open this URL in a browser to authorize drivetug:\n\n  %s\n\n", authURL)
			})
			if err != nil {
				return err
			}
			if !e.demo {
				e.state.SaveAccount(account)
			}
			_, _ = successColor.Fprintf(w, "Logged in as %s\n", account)
			return nil
		},
	}
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout [account]",
		Short: "Forget the stored token of an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			account := ""
			if len(args) == 1 {
				account = args[0]
			} else if account, err = e.account(); err != nil {
				return err
			}
			if !e.demo {
				if err = e.tokens.Delete(account); err != nil {
					return err
				}
				if e.state.Account() == account {
					e.state.SaveAccount("")
				}
			}
			_, _ = successColor.Fprintf(cmd.OutOrStdout(), "Logged out %s\n", account)
			return nil
		},
	}
}

func newAccountsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List authorized accounts, the current one marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			accounts, err := e.storedAccounts()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(accounts) == 0 {
				_, _ = warnColor.Fprintln(w, "No accounts, run `drivetug login` to add one.")
				return nil
			}
			current := e.preferredAccount()
			for _, account := range accounts {
				if account == current {
					_, _ = successColor.Fprintln(w, "* "+account)
				} else {
					_, _ = fmt.Fprintln(w, "  "+account)
				}
			}
			return nil
		},
	}
}
