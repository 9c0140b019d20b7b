package cli

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"obsidian_briefing_sync/generator"
)

func newSyncCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <file.md>",
		Short: "Publish an existing Markdown briefing to GitHub",
		Long: `Sync commits a Markdown file that was written earlier (for example with
"generate --raw > today.md") under the briefing filename for --date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
			}

			content, err := afero.ReadFile(opts.fs, args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			store, err := opts.openSettings()
			if err != nil {
				return err
			}

			filename := generator.Filename(date)
			url, err := opts.newPublisher().Publish(cmd.Context(), store.Get(), filename, string(content))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("File written: "+filename))
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().String("date", "", "briefing date, YYYY-MM-DD (default: today, UTC)")
	return cmd
}
