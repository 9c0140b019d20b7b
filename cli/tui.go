package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"obsidian_briefing_sync/controller"
	"obsidian_briefing_sync/logger"
	"obsidian_briefing_sync/tui"
)

func runTUI(cmd *cobra.Command, opts *options) error {
	// zerolog output would tear the alternate screen; send it to a file next
	// to the settings instead.
	logOut := io.Discard
	logPath := filepath.Join(filepath.Dir(opts.cfg.SettingsPath), "briefing-sync.log")
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
		defer f.Close()
		logOut = f
	}
	level := logger.ParseLevel(opts.cfg.LogLevel)
	if opts.verbose {
		level = logger.LevelDebug
	}
	logger.ConfigureOutput(logOut, level, false)

	app, store, err := opts.buildApp(cmd.Context())
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(cmd.Context(), app, store), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	cancel := app.Observe(func(s controller.State) { p.Send(tui.StateMsg(s)) })
	defer cancel()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
