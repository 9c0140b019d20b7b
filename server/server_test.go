package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obsidian_briefing_sync/controller"
	"obsidian_briefing_sync/generator"
	"obsidian_briefing_sync/publisher"
)

type memSettings struct{ cfg publisher.Config }

func (m *memSettings) Get() publisher.Config { return m.cfg }
func (m *memSettings) Update(cfg publisher.Config) error {
	m.cfg = cfg
	return nil
}

type fixedGenerator struct{ summary generator.Summary }

func (g fixedGenerator) Generate(context.Context) (generator.Summary, error) { return g.summary, nil }

type fixedPublisher struct{ err error }

func (p fixedPublisher) Publish(context.Context, publisher.Config, string, string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "https://github.com/octo/vault/blob/main/x.md", nil
}

func newTestServer(t *testing.T, pubErr error, cfg publisher.Config) (*Server, *controller.App, *memSettings) {
	settings := &memSettings{cfg: cfg}
	gen := fixedGenerator{summary: generator.Summary{
		Date:    "2024-05-01",
		Content: "# 每日簡報\n\n## 📉 市場概況\n- S&P 500 <up>\n",
		Sources: []generator.Source{{Title: "Reuters", URI: "https://reuters.com/a?x=1&y=2"}},
	}}
	app := controller.New(gen, fixedPublisher{err: pubErr}, settings)
	srv, err := New(app, settings, 0, zerolog.Nop())
	require.NoError(t, err)
	return srv, app, settings
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStateStartsIdle(t *testing.T) {
	srv, _, _ := newTestServer(t, nil, publisher.Config{})
	rec := do(t, srv.Routes(), http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st controller.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, controller.StatusIdle, st.Status)
	assert.True(t, st.CanGenerate)
	assert.False(t, st.CanSync)
}

func TestGenerateWithSync(t *testing.T) {
	srv, _, _ := newTestServer(t, nil, publisher.Config{Owner: "octo", Repo: "vault", Token: "t"})
	rec := do(t, srv.Routes(), http.MethodPost, "/api/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st controller.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, controller.StatusSyncSuccess, st.Status)
	assert.Equal(t, "https://github.com/octo/vault/blob/main/x.md", st.LastURL)
	require.NotNil(t, st.Summary)
	assert.Equal(t, "2024-05-01", st.Summary.Date)
}

func TestGenerateSyncFailureReportsState(t *testing.T) {
	srv, _, _ := newTestServer(t, &publisher.APIError{StatusCode: 401, Message: "Bad credentials"},
		publisher.Config{Owner: "octo", Repo: "vault", Token: "t"})
	rec := do(t, srv.Routes(), http.MethodPost, "/api/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st controller.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, controller.StatusError, st.Status)
	assert.Contains(t, st.Logs[len(st.Logs)-1].Message, "Bad credentials")
}

func TestSyncBeforeGenerateConflicts(t *testing.T) {
	srv, _, _ := newTestServer(t, nil, publisher.Config{})
	rec := do(t, srv.Routes(), http.MethodPost, "/api/sync", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), controller.ErrSyncUnavailable.Error())
}

func TestSettingsRoundTripMasksToken(t *testing.T) {
	srv, app, settings := newTestServer(t, nil, publisher.Config{})
	h := srv.Routes()

	rec := do(t, h, http.MethodPut, "/api/settings",
		`{"owner":"octo","repo":"vault","path":"Daily/","token":"ghp_abcdefgh9999"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ghp_abcdefgh9999", settings.cfg.Token)
	assert.NotContains(t, rec.Body.String(), "ghp_abcdefgh9999")

	rec = do(t, h, http.MethodGet, "/api/settings", "")
	var got publisher.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "octo", got.Owner)
	assert.Equal(t, "****9999", got.Token)

	logs := app.Snapshot().Logs
	require.Len(t, logs, 1)
	assert.Equal(t, "Settings updated.", logs[0].Message)

	rec = do(t, h, http.MethodPut, "/api/settings", `{bad`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreview(t *testing.T) {
	srv, app, _ := newTestServer(t, nil, publisher.Config{})
	h := srv.Routes()

	rec := do(t, h, http.MethodGet, "/api/preview", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, app.Generate(context.Background()))
	rec = do(t, h, http.MethodGet, "/api/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>每日簡報</h1>")
	assert.Contains(t, body, "<h2>📉 市場概況</h2>")
	assert.Contains(t, body, `href="https://reuters.com/a?x=1&amp;y=2"`)
	assert.NotContains(t, body, "<up>", "raw html is not passed through")
}

func TestIndexServed(t *testing.T) {
	srv, _, _ := newTestServer(t, nil, publisher.Config{})
	rec := do(t, srv.Routes(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Obsidian AI Briefing Sync")
}
