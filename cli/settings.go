package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"obsidian_briefing_sync/publisher"
)

func newSettingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the GitHub sync settings",
	}
	cmd.AddCommand(newSettingsShowCmd(opts))
	cmd.AddCommand(newSettingsSetCmd(opts))
	return cmd
}

type settingsView struct {
	File        string           `yaml:"file"`
	SyncEnabled bool             `yaml:"sync_enabled"`
	GitHub      publisher.Config `yaml:"github"`
}

func newSettingsShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the GitHub settings with the token masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openSettings()
			if err != nil {
				return err
			}
			cfg := store.Get()
			data, err := yaml.Marshal(settingsView{
				File:        store.Path(),
				SyncEnabled: cfg.SyncEnabled(),
				GitHub:      cfg.Masked(),
			})
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newSettingsSetCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the GitHub settings",
		Long: `Set overlays the given flags on the stored settings and saves the whole record.
Flags that are not given keep their current value; pass an empty value to clear one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openSettings()
			if err != nil {
				return err
			}
			cfg := store.Get()
			flags := cmd.Flags()
			if flags.Changed("token") {
				cfg.Token, _ = flags.GetString("token")
			}
			if flags.Changed("owner") {
				cfg.Owner, _ = flags.GetString("owner")
			}
			if flags.Changed("repo") {
				cfg.Repo, _ = flags.GetString("repo")
			}
			if flags.Changed("path") {
				cfg.Path, _ = flags.GetString("path")
			}
			if err := store.Update(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings updated.")
			if !cfg.SyncEnabled() {
				fmt.Fprintln(cmd.ErrOrStderr(), infoStyle.Render("Sync stays disabled until token, owner and repo are all set."))
			}
			return nil
		},
	}
	cmd.Flags().String("token", "", "GitHub personal access token with the repo scope")
	cmd.Flags().String("owner", "", "repository owner")
	cmd.Flags().String("repo", "", "repository name")
	cmd.Flags().String("path", "", "folder inside the repository, e.g. DailyNotes/")
	return cmd
}
