package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"obsidian_briefing_sync/controller"
	"obsidian_briefing_sync/generator"
)

var (
	tsStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Underline(true)
)

func printLogs(w io.Writer, logs []controller.LogEntry) {
	for _, l := range logs {
		style := infoStyle
		switch l.Severity {
		case controller.SeverityError:
			style = errorStyle
		case controller.SeveritySuccess:
			style = successStyle
		}
		fmt.Fprintf(w, "%s %s\n", tsStyle.Render("["+l.Timestamp+"]"), style.Render(l.Message))
	}
}

// briefingMarkdown is the briefing body followed by its grounding sources.
func briefingMarkdown(s generator.Summary) string {
	if len(s.Sources) == 0 {
		return s.Content
	}
	var sb strings.Builder
	sb.WriteString(s.Content)
	sb.WriteString("\n\n---\n\n### Verified sources\n\n")
	for _, src := range s.Sources {
		title := src.Title
		if title == "" {
			title = src.URI
		}
		fmt.Fprintf(&sb, "- [%s](%s)\n", title, src.URI)
	}
	return sb.String()
}

func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
