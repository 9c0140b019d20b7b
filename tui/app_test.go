package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obsidian_briefing_sync/controller"
	"obsidian_briefing_sync/generator"
	"obsidian_briefing_sync/publisher"
)

type memSettings struct {
	cfg publisher.Config
	err error
}

func (m *memSettings) Get() publisher.Config { return m.cfg }
func (m *memSettings) Update(cfg publisher.Config) error {
	if m.err != nil {
		return m.err
	}
	m.cfg = cfg
	return nil
}

type fixedGenerator struct{ calls *int }

func (g fixedGenerator) Generate(context.Context) (generator.Summary, error) {
	*g.calls++
	return generator.Summary{
		Date:    "2024-05-01",
		Title:   "每日簡報",
		Content: "# 每日簡報\n\n## 📉 市場概況\n",
		Sources: []generator.Source{{Title: "Reuters", URI: "https://reuters.com/a"}},
	}, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, publisher.Config, string, string) (string, error) {
	return "https://github.com/octo/vault/blob/main/2024-05-01-daily-briefing.md", nil
}

func newTestModel(t *testing.T, cfg publisher.Config) (Model, *controller.App, *memSettings, *int) {
	t.Helper()
	calls := 0
	settings := &memSettings{cfg: cfg}
	app := controller.New(fixedGenerator{calls: &calls}, nopPublisher{}, settings)
	m := NewModel(context.Background(), app, settings)
	m.renderMarkdown = func(md string, _ int) string { return "RENDERED:" + md }
	return m, app, settings, &calls
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestSyncKeyDisabledBeforeGenerate(t *testing.T) {
	m, _, _, _ := newTestModel(t, publisher.Config{})
	assert.False(t, m.state.CanSync)

	_, cmd := update(t, m, key("s"))
	assert.Nil(t, cmd)

	_, cmd = update(t, m, key("y"))
	assert.Nil(t, cmd, "nothing to copy yet")
}

func TestGenerateKeyRunsOperationInCommand(t *testing.T) {
	m, app, _, calls := newTestModel(t, publisher.Config{})

	m, cmd := update(t, m, key("g"))
	require.NotNil(t, cmd)
	assert.Equal(t, 0, *calls, "generation must not run inside Update")

	msg := cmd()
	assert.Equal(t, 1, *calls)
	m, _ = update(t, m, msg)

	assert.Equal(t, controller.StatusSuccess, m.state.Status)
	require.NotNil(t, m.state.Summary)
	assert.Equal(t, app.Snapshot().Status, m.state.Status)
	assert.Contains(t, m.preview.View(), "RENDERED:")
}

func TestGenerateKeyIgnoredWhileBusy(t *testing.T) {
	m, _, _, _ := newTestModel(t, publisher.Config{})
	m, _ = update(t, m, StateMsg(controller.State{Status: controller.StatusGenerating}))

	_, cmd := update(t, m, key("g"))
	assert.Nil(t, cmd)
}

func TestStateMsgRefreshesPreviewWithSources(t *testing.T) {
	m, _, _, _ := newTestModel(t, publisher.Config{})
	var rendered string
	m.renderMarkdown = func(md string, _ int) string {
		rendered = md
		return md
	}

	summary := &generator.Summary{Content: "# 標題", Sources: []generator.Source{{URI: "https://example.com"}}}
	m, _ = update(t, m, StateMsg(controller.State{Status: controller.StatusSuccess, Summary: summary, CanGenerate: true}))

	assert.Contains(t, rendered, "# 標題")
	assert.Contains(t, rendered, "### Verified sources")
	assert.Contains(t, rendered, "- [https://example.com](https://example.com)")

	rendered = ""
	_, _ = update(t, m, StateMsg(controller.State{Status: controller.StatusSyncing, Summary: summary}))
	assert.Empty(t, rendered, "same summary is not re-rendered")
}

func TestCopyUsesClipboardAndLogs(t *testing.T) {
	m, app, _, _ := newTestModel(t, publisher.Config{})
	var copied string
	m.copyText = func(s string) error {
		copied = s
		return nil
	}
	m, cmd := update(t, m, key("g"))
	m, _ = update(t, m, cmd())

	_, cmd = update(t, m, key("y"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "# 每日簡報\n\n## 📉 市場概況\n", copied)

	logs := app.Snapshot().Logs
	assert.Equal(t, "Markdown copied to clipboard.", logs[len(logs)-1].Message)
	assert.Equal(t, controller.SeveritySuccess, logs[len(logs)-1].Severity)
}

func TestCopyFailureIsLogged(t *testing.T) {
	m, app, _, _ := newTestModel(t, publisher.Config{})
	m.copyText = func(string) error { return errors.New("no clipboard utility") }
	m, cmd := update(t, m, key("g"))
	m, _ = update(t, m, cmd())

	_, cmd = update(t, m, key("y"))
	cmd()
	logs := app.Snapshot().Logs
	assert.Equal(t, controller.SeverityError, logs[len(logs)-1].Severity)
	assert.Contains(t, logs[len(logs)-1].Message, "no clipboard utility")
}

func TestSettingsFormSaves(t *testing.T) {
	m, app, settings, _ := newTestModel(t, publisher.Config{Path: "Daily/"})

	m, _ = update(t, m, key("e"))
	require.Equal(t, modeSettings, m.mode)
	require.NotNil(t, m.form)
	assert.Equal(t, "Daily/", m.form.inputs[fieldPath].Value())
	assert.Equal(t, fieldToken, m.form.focus)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldOwner, m.form.focus)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldPath, m.form.focus, "focus wraps around")

	m.form.inputs[fieldToken].SetValue("ghp_token")
	m.form.inputs[fieldOwner].SetValue(" octo ")
	m.form.inputs[fieldRepo].SetValue("vault")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, modeMain, m.mode)
	assert.Nil(t, m.form)
	assert.Equal(t, publisher.Config{Token: "ghp_token", Owner: "octo", Repo: "vault", Path: "Daily/"}, settings.cfg)
	logs := app.Snapshot().Logs
	require.NotEmpty(t, logs)
	assert.Equal(t, "Settings updated.", logs[len(logs)-1].Message)
}

func TestSettingsFormRequiresFields(t *testing.T) {
	m, _, settings, _ := newTestModel(t, publisher.Config{})
	m, _ = update(t, m, key("e"))
	m.form.inputs[fieldOwner].SetValue("octo")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "required: token, repo", m.form.err)
	assert.Equal(t, publisher.Config{}, settings.cfg)
	assert.Contains(t, m.View(), "required: token, repo")
}

func TestSettingsSaveErrorKeepsForm(t *testing.T) {
	m, _, settings, _ := newTestModel(t, publisher.Config{Token: "t", Owner: "o", Repo: "r"})
	settings.err = errors.New("read-only file system")

	m, _ = update(t, m, key("e"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, modeSettings, m.mode)
	assert.Equal(t, "read-only file system", m.form.err)
}

func TestSettingsEscCancels(t *testing.T) {
	m, _, settings, _ := newTestModel(t, publisher.Config{Owner: "octo"})
	m, _ = update(t, m, key("e"))
	m.form.inputs[fieldOwner].SetValue("someone-else")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeMain, m.mode)
	assert.Equal(t, "octo", settings.cfg.Owner)
}

func TestQuit(t *testing.T) {
	m, _, _, _ := newTestModel(t, publisher.Config{})
	m, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}
