// Package cli wires the drivetug commands.
package cli

import (
	"context"
	"fmt"

	"github.com/datatug/drivetug/pkg/drivetug"
	"github.com/datatug/drivetug/pkg/logging"
	"github.com/datatug/drivetug/pkg/navigation"
	"github.com/datatug/drivetug/pkg/profiling"
	"github.com/fatih/color"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var Version = "dev"

// newApp is replaced in tests, the browser needs a terminal otherwise.
var newApp = func() drivetug.App {
	return drivetug.NewApp(tview.NewApplication())
}

// NewRootCmd returns the drivetug command: without a subcommand it opens the folder browser.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(o *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "drivetug",
		Short: "Browse Google Drive folders in the terminal",
		Long: `drivetug browses the folders of a Google Drive account in the terminal.

Authorization needs an OAuth client of type "Desktop app" downloaded from the
Google Cloud console as ~/.drivetug/credentials.json (or pass --credentials).
Try it without an account with --demo.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if o.noColor {
				color.NoColor = true
			}
			o.startProfiling()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			o.stopProfiling()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowser(cmd, o)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "config file (default ~/.drivetug/config.yaml)")
	flags.StringVarP(&o.account, "account", "a", "", "account to use (default: the last used one)")
	flags.StringVar(&o.credentials, "credentials", "", "OAuth client file (default ~/.drivetug/credentials.json)")
	flags.BoolVar(&o.demo, "demo", false, "browse a built-in sample drive instead of Google Drive")
	flags.Int64Var(&o.pageSize, "page-size", 0, "maximum number of folders listed per folder (default 100)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log debug messages")
	flags.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&o.cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	flags.StringVar(&o.memProfile, "memprofile", "", "write memory profile to `file`")
	_ = flags.MarkHidden("cpuprofile")
	_ = flags.MarkHidden("memprofile")

	rootCmd.AddCommand(
		newLsCmd(o),
		newWhoamiCmd(o),
		newLoginCmd(o),
		newLogoutCmd(o),
		newAccountsCmd(o),
	)
	return rootCmd
}

func (o *options) startProfiling() {
	log := logging.New(color.Error, false, color.NoColor)
	if o.cpuProfile != "" {
		o.atExit = append(o.atExit, profiling.DoCPUProfiling(o.cpuProfile, log))
	}
	if o.memProfile != "" {
		o.atExit = append(o.atExit, profiling.DoMemProfiling(o.memProfile, log))
	}
}

func (o *options) stopProfiling() {
	for _, f := range o.atExit {
		f()
	}
	o.atExit = nil
}

// Execute runs the command line until ctx is done.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func runBrowser(cmd *cobra.Command, o *options) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	log := zerolog.Nop()
	if cfg.LogFile != "" {
		fileLog, closer, err := logging.NewFile(cfg.LogFile, cfg.Verbose)
		if err != nil {
			return err
		}
		defer func() {
			_ = closer.Close()
		}()
		log = fileLog
	}
	e := newEnvWithLogger(o, cfg, log)
	accounts, err := e.accounts()
	if err != nil {
		return err
	}
	browser := drivetug.NewBrowser(newApp(), accounts,
		drivetug.WithLogger(log),
		drivetug.WithNavigationOptions(navigation.WithLanguage(e.language())),
		drivetug.WithPromptOutput(cmd.OutOrStdout()),
		drivetug.OnAccountChange(func(account string) {
			if !e.demo {
				e.state.SaveAccount(account)
			}
		}),
		drivetug.OnNavigate(func(names []string) {
			if !e.demo {
				e.state.SaveFolderPath(names)
			}
		}),
		drivetug.WithLastFolderPath(e.state.LastFolderPath),
	)
	log.Info().Str("version", Version).Bool("demo", e.demo).Msg("drivetug: starting")
	if err = browser.Run(cmd.Context(), e.preferredAccount()); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
