package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"obsidian_briefing_sync/controller"
	"obsidian_briefing_sync/publisher"
)

//go:embed web
var embeddedStatic embed.FS

// SettingsStore is the read/write view of the GitHub target used by the settings endpoints.
type SettingsStore interface {
	Get() publisher.Config
	Update(cfg publisher.Config) error
}

type Server struct {
	app      *controller.App
	settings SettingsStore
	timeout  time.Duration
	logger   zerolog.Logger
	md       goldmark.Markdown
	staticFS http.Handler
}

func New(app *controller.App, settings SettingsStore, timeout time.Duration, logger zerolog.Logger) (*Server, error) {
	if app == nil {
		return nil, errors.New("controller required")
	}
	if settings == nil {
		return nil, errors.New("settings store required")
	}
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	sub, err := fs.Sub(embeddedStatic, "web")
	if err != nil {
		return nil, err
	}

	return &Server{
		app:      app,
		settings: settings,
		timeout:  timeout,
		logger:   logger,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		staticFS: http.FileServer(http.FS(sub)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/sync", s.handleSync)
	mux.HandleFunc("GET /api/settings", s.handleSettingsGet)
	mux.HandleFunc("PUT /api/settings", s.handleSettingsPut)
	mux.HandleFunc("GET /api/preview", s.handlePreview)
	mux.Handle("GET /", s.staticFS)
	return s.logMiddleware(mux)
}

// --- Handlers ---

type settingsReq struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	Path  string `json:"path"`
	Token string `json:"token"`
}

type errorResp struct {
	Error string            `json:"error"`
	State *controller.State `json:"state,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Snapshot())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.runOp(w, r, s.app.Generate)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	s.runOp(w, r, s.app.Sync)
}

// runOp blocks until the operation finishes. Operation failures are already in
// the controller log, so they are reported as 200 with the resulting state;
// only requests that could not start get an error status.
func (s *Server) runOp(w http.ResponseWriter, r *http.Request, op func(context.Context) error) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	err := op(ctx)
	switch {
	case errors.Is(err, controller.ErrBusy), errors.Is(err, controller.ErrSyncUnavailable):
		st := s.app.Snapshot()
		writeJSON(w, http.StatusConflict, errorResp{Error: err.Error(), State: &st})
	default:
		writeJSON(w, http.StatusOK, s.app.Snapshot())
	}
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Get().Masked())
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var req settingsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	cfg := publisher.Config{Owner: req.Owner, Repo: req.Repo, Path: req.Path, Token: req.Token}
	if err := s.settings.Update(cfg); err != nil {
		s.logger.Error().Err(err).Msg("save settings")
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	s.app.Log("Settings updated.", controller.SeverityInfo)
	writeJSON(w, http.StatusOK, cfg.Masked())
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	st := s.app.Snapshot()
	if st.Summary == nil {
		http.Error(w, "no briefing generated yet", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(st.Summary.Content), &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(st.Summary.Sources) > 0 {
		buf.WriteString(`<section class="sources"><h3>Verified sources</h3><ul>`)
		for _, src := range st.Summary.Sources {
			title := src.Title
			if title == "" {
				title = src.URI
			}
			buf.WriteString(`<li><a href="` + html.EscapeString(src.URI) + `" target="_blank" rel="noreferrer">` +
				html.EscapeString(title) + `</a></li>`)
		}
		buf.WriteString(`</ul></section>`)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}
