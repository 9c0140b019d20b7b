package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"obsidian_briefing_sync/config"
	"obsidian_briefing_sync/logger"
)

// options is shared by every subcommand. cfg is filled in by the root
// PersistentPreRunE before any RunE executes.
type options struct {
	configPath string
	verbose    bool

	fs         afero.Fs
	httpClient *http.Client
	logOut     io.Writer

	cfg config.Config
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "briefing-sync",
		Short: "AI daily market briefing with GitHub (Obsidian vault) sync",
		Long: `briefing-sync asks a search-grounded model for today's market and news briefing
and commits it as Markdown to a GitHub repository, typically an Obsidian vault.

Without a subcommand it starts the interactive terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a config file (yaml or json)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logs and GitHub request logging")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newSyncCmd(opts))
	cmd.AddCommand(newSettingsCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

func (o *options) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level := logger.ParseLevel(cfg.LogLevel)
	if o.verbose {
		level = logger.LevelDebug
	}
	out := o.logOut
	if out == nil {
		out = os.Stderr
	}
	logger.ConfigureOutput(out, level, cfg.LogPretty)
	logger.Debugf("config loaded (provider=%s, settings=%s)", cfg.LLM.Provider, cfg.SettingsPath)
	return nil
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(&options{fs: afero.NewOsFs(), logOut: os.Stderr})
	cmd.Version = version
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
