package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// copyToClipboard is swapped out in tests; CI machines have no clipboard.
var copyToClipboard = clipboard.WriteAll

func newGenerateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's briefing and sync it when GitHub is configured",
		Long: `Generate runs one briefing generation. When a token and repository are set in the
settings it is committed to GitHub right away, exactly like the TUI's run action.

The run log goes to stderr; the briefing goes to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetBool("raw")
			copyOut, _ := cmd.Flags().GetBool("copy")

			app, _, err := opts.buildApp(cmd.Context())
			if err != nil {
				return err
			}

			runErr := app.Generate(cmd.Context())
			st := app.Snapshot()
			printLogs(cmd.ErrOrStderr(), st.Logs)

			if st.Summary != nil {
				if raw {
					fmt.Fprint(cmd.OutOrStdout(), st.Summary.Content)
				} else {
					fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(briefingMarkdown(*st.Summary)))
				}
				if copyOut {
					if err := copyToClipboard(st.Summary.Content); err != nil {
						return fmt.Errorf("copy to clipboard: %w", err)
					}
					fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("Markdown copied to clipboard."))
				}
			}
			if st.LastURL != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), urlStyle.Render(st.LastURL))
			}
			return runErr
		},
	}
	cmd.Flags().Bool("raw", false, "print plain Markdown instead of the rendered preview")
	cmd.Flags().Bool("copy", false, "copy the Markdown to the clipboard")
	return cmd
}
