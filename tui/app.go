package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"obsidian_briefing_sync/controller"
	"obsidian_briefing_sync/generator"
	"obsidian_briefing_sync/publisher"
)

type mode int

const (
	modeMain mode = iota
	modeSettings
)

// SettingsStore is what the settings form reads and replaces.
type SettingsStore interface {
	Get() publisher.Config
	Update(cfg publisher.Config) error
}

// StateMsg carries a controller snapshot into the program. Wire it with
// app.Observe(func(s controller.State) { p.Send(tui.StateMsg(s)) }).
type StateMsg controller.State

type opDoneMsg struct{ err error }

type settingsSavedMsg struct{ err error }

type Model struct {
	ctx      context.Context
	app      *controller.App
	settings SettingsStore

	state    controller.State
	rendered *generator.Summary // summary currently shown in preview
	preview  viewport.Model
	form     *settingsForm
	mode     mode
	width    int
	height   int
	quitting bool

	renderMarkdown func(md string, width int) string
	copyText       func(string) error
}

func NewModel(ctx context.Context, app *controller.App, settings SettingsStore) Model {
	m := Model{
		ctx:            ctx,
		app:            app,
		settings:       settings,
		state:          app.Snapshot(),
		preview:        viewport.New(80, 20),
		width:          120,
		height:         32,
		renderMarkdown: glamourRender,
		copyText:       clipboard.WriteAll,
	}
	m.layout()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.rendered = nil
		m.refreshPreview()
		return m, nil

	case StateMsg:
		m.state = controller.State(msg)
		m.refreshPreview()
		return m, nil

	case opDoneMsg:
		// the controller already logged the failure; just resync the view
		m.state = m.app.Snapshot()
		m.refreshPreview()
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil && m.form != nil {
			m.form.err = msg.err.Error()
			return m, nil
		}
		m.form = nil
		m.mode = modeMain
		m.state = m.app.Snapshot()
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeSettings {
			return m.updateSettings(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "g":
		if !m.state.CanGenerate {
			return m, nil
		}
		return m, m.runOp(m.app.Generate)

	case "s":
		if !m.state.CanSync {
			return m, nil
		}
		return m, m.runOp(m.app.Sync)

	case "y":
		if m.state.Summary == nil {
			return m, nil
		}
		return m, m.copySummary(m.state.Summary.Content)

	case "e":
		f := newSettingsForm(m.settings.Get())
		m.form = &f
		m.mode = modeSettings
		return m, nil
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m Model) runOp(op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: op(ctx)}
	}
}

func (m Model) copySummary(content string) tea.Cmd {
	app, copyText := m.app, m.copyText
	return func() tea.Msg {
		if err := copyText(content); err != nil {
			app.Log(fmt.Sprintf("Copy failed: %v", err), controller.SeverityError)
		} else {
			app.Log("Markdown copied to clipboard.", controller.SeveritySuccess)
		}
		return opDoneMsg{}
	}
}

func (m *Model) layout() {
	previewWidth := m.width*2/3 - 4
	if previewWidth < 20 {
		previewWidth = 20
	}
	previewHeight := m.height - 6
	if previewHeight < 5 {
		previewHeight = 5
	}
	m.preview.Width = previewWidth
	m.preview.Height = previewHeight
}

// refreshPreview re-renders only when a different summary arrives.
func (m *Model) refreshPreview() {
	if m.state.Summary == m.rendered {
		return
	}
	m.rendered = m.state.Summary
	if m.rendered == nil {
		m.preview.SetContent("")
		return
	}
	m.preview.SetContent(m.renderMarkdown(previewMarkdown(*m.rendered), m.preview.Width))
	m.preview.GotoTop()
}

// previewMarkdown appends the grounding sources to the briefing body.
func previewMarkdown(s generator.Summary) string {
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
		sb.WriteString(fmt.Sprintf("- [%s](%s)\n", title, src.URI))
	}
	return sb.String()
}

func glamourRender(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
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

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == modeSettings && m.form != nil {
		return m.viewSettings()
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Obsidian AI Briefing Sync"),
		statusBadge(string(m.state.Status)),
	)

	leftWidth := m.width - m.preview.Width - 8
	if leftWidth < 24 {
		leftWidth = 24
	}
	left := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(leftWidth).Render(m.viewControls()),
		panelStyle.Width(leftWidth).Render(m.viewLogs(m.height-14)),
	)
	right := panelStyle.Render(m.viewPreview())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
	)
}

func (m Model) viewControls() string {
	key := func(k, label string, enabled bool) string {
		if !enabled {
			return disabledKeyStyle.Render(k + " " + label)
		}
		return keyStyle.Render(k) + " " + label
	}
	lines := []string{
		panelTitleStyle.Render("Controls"),
		key("g", "run daily sync", m.state.CanGenerate),
		key("s", "retry sync", m.state.CanSync),
		key("y", "copy markdown", m.state.Summary != nil),
		key("e", "settings", true),
		key("q", "quit", true),
	}
	if m.state.LastURL != "" {
		lines = append(lines, "", linkStyle.Render(m.state.LastURL))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewLogs(limit int) string {
	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render("Log"))
	sb.WriteString("\n")
	if len(m.state.Logs) == 0 {
		sb.WriteString(dimStyle.Render("Ready. Waiting for the first run..."))
		return sb.String()
	}
	if limit < 3 {
		limit = 3
	}
	logs := m.state.Logs
	if len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	for i, l := range logs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(dimStyle.Render("[" + l.Timestamp + "] "))
		sb.WriteString(severityStyle(l.Severity).Render(l.Message))
	}
	return sb.String()
}

func severityStyle(sev controller.Severity) lipgloss.Style {
	switch sev {
	case controller.SeverityError:
		return logErrorStyle
	case controller.SeveritySuccess:
		return logSuccessStyle
	default:
		return logInfoStyle
	}
}

func (m Model) viewPreview() string {
	title := panelTitleStyle.Render("Briefing preview")
	if m.state.Summary == nil {
		empty := lipgloss.NewStyle().
			Width(m.preview.Width).
			Height(m.preview.Height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(dimStyle.Render("No briefing yet.\nPress g to run the daily sync."))
		return title + "\n" + empty
	}
	return title + "\n" + m.preview.View()
}
