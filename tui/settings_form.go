package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"obsidian_briefing_sync/controller"
	"obsidian_briefing_sync/publisher"
)

// settings form field indices
const (
	fieldToken = iota
	fieldOwner
	fieldRepo
	fieldPath
	fieldCount
)

var fieldLabels = [fieldCount]string{"Token", "Owner", "Repo", "Path"}

type settingsForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newSettingsForm(cfg publisher.Config) settingsForm {
	var f settingsForm
	placeholders := [fieldCount]string{"ghp_xxxxxxxxxxxx", "johndoe", "my-obsidian-vault", "DailyNotes/ (optional)"}
	values := [fieldCount]string{cfg.Token, cfg.Owner, cfg.Repo, cfg.Path}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 300
		in.SetValue(values[i])
		f.inputs[i] = in
	}
	f.inputs[fieldToken].EchoMode = textinput.EchoPassword
	f.inputs[fieldToken].EchoCharacter = '•'
	f.inputs[fieldToken].Focus()
	return f
}

func (f *settingsForm) config() publisher.Config {
	return publisher.Config{
		Token: strings.TrimSpace(f.inputs[fieldToken].Value()),
		Owner: strings.TrimSpace(f.inputs[fieldOwner].Value()),
		Repo:  strings.TrimSpace(f.inputs[fieldRepo].Value()),
		Path:  strings.TrimSpace(f.inputs[fieldPath].Value()),
	}
}

// validate is a presence check on the fields Publish needs.
func (f *settingsForm) validate() string {
	cfg := f.config()
	var missing []string
	if cfg.Token == "" {
		missing = append(missing, "token")
	}
	if cfg.Owner == "" {
		missing = append(missing, "owner")
	}
	if cfg.Repo == "" {
		missing = append(missing, "repo")
	}
	if len(missing) == 0 {
		return ""
	}
	return "required: " + strings.Join(missing, ", ")
}

func (f *settingsForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
	f.inputs[f.focus].CursorEnd()
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = modeMain
		return m, nil

	case "tab", "down":
		f.move(1)
		return m, nil

	case "shift+tab", "up":
		f.move(-1)
		return m, nil

	case "enter":
		if problem := f.validate(); problem != "" {
			f.err = problem
			return m, nil
		}
		return m, m.saveSettings(f.config())
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return m, cmd
}

func (m Model) saveSettings(cfg publisher.Config) tea.Cmd {
	store, app := m.settings, m.app
	return func() tea.Msg {
		if err := store.Update(cfg); err != nil {
			return settingsSavedMsg{err: err}
		}
		app.Log("Settings updated.", controller.SeverityInfo)
		return settingsSavedMsg{}
	}
}

func (m Model) viewSettings() string {
	f := m.form

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("39")).
		Padding(1, 2).
		Width(64)

	var rows []string
	rows = append(rows, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render("GitHub sync settings"), "")
	for i := range f.inputs {
		label := lipgloss.NewStyle().Width(7)
		if i == f.focus {
			label = label.Bold(true).Foreground(lipgloss.Color("39"))
		} else {
			label = label.Foreground(lipgloss.Color("252"))
		}
		rows = append(rows, fmt.Sprintf("%s %s", label.Render(fieldLabels[i]+":"), f.inputs[i].View()), "")
	}
	rows = append(rows, dimStyle.Render("The token needs the 'repo' scope. It is stored in cleartext on this machine."))
	if f.err != "" {
		rows = append(rows, errorTextStyle.Render(f.err))
	}
	rows = append(rows, "", dimStyle.Render("Enter: save  Esc: cancel  Tab: next field"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(strings.Join(rows, "\n")))
}
