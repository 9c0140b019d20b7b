package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"obsidian_briefing_sync/generator"
	"obsidian_briefing_sync/publisher"
)

type Status string

const (
	StatusIdle        Status = "idle"
	StatusGenerating  Status = "generating"
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusSyncing     Status = "syncing"
	StatusSyncSuccess Status = "sync_success"
)

// Busy reports whether an operation is in flight.
func (s Status) Busy() bool {
	return s == StatusGenerating || s == StatusSyncing
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

type LogEntry struct {
	Timestamp string   `json:"timestamp"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
}

var (
	ErrBusy            = errors.New("another operation is in progress")
	ErrSyncUnavailable = errors.New("nothing to sync: generate a briefing first")
)

// Generator produces a briefing.
type Generator interface {
	Generate(ctx context.Context) (generator.Summary, error)
}

// Publisher commits a document to the configured repository.
type Publisher interface {
	Publish(ctx context.Context, cfg publisher.Config, filename, content string) (string, error)
}

// SettingsSource provides the current GitHub target.
type SettingsSource interface {
	Get() publisher.Config
}

// State is a point-in-time copy of the controller, safe to hand to views.
type State struct {
	Status      Status             `json:"status"`
	Logs        []LogEntry         `json:"logs"`
	Summary     *generator.Summary `json:"summary,omitempty"`
	LastURL     string             `json:"last_url,omitempty"`
	RunID       string             `json:"run_id,omitempty"`
	CanGenerate bool               `json:"can_generate"`
	CanSync     bool               `json:"can_sync"`
}

// App drives generate → publish and records what happened.
type App struct {
	gen      Generator
	pub      Publisher
	settings SettingsSource
	now      func() time.Time
	logger   zerolog.Logger

	mu      sync.Mutex
	status  Status
	logs    []LogEntry
	summary *generator.Summary
	lastURL string
	runID   string

	// notifyMu keeps observer calls ordered and outside mu.
	notifyMu  sync.Mutex
	observers map[int]func(State)
	nextObs   int
}

type Option func(*App)

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.logger = l }
}

func New(gen Generator, pub Publisher, settings SettingsSource, opts ...Option) *App {
	a := &App{
		gen:       gen,
		pub:       pub,
		settings:  settings,
		now:       time.Now,
		logger:    zerolog.Nop(),
		status:    StatusIdle,
		observers: map[int]func(State){},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Observe registers fn to receive a snapshot after every change. fn runs on the
// goroutine that made the change, in order, and must not call Log, Generate,
// Sync or Observe. Snapshot is fine.
func (a *App) Observe(fn func(State)) (cancel func()) {
	a.notifyMu.Lock()
	id := a.nextObs
	a.nextObs++
	a.observers[id] = fn
	a.notifyMu.Unlock()

	return func() {
		a.notifyMu.Lock()
		delete(a.observers, id)
		a.notifyMu.Unlock()
	}
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *App) snapshotLocked() State {
	logs := make([]LogEntry, len(a.logs))
	copy(logs, a.logs)
	return State{
		Status:      a.status,
		Logs:        logs,
		Summary:     a.summary,
		LastURL:     a.lastURL,
		RunID:       a.runID,
		CanGenerate: !a.status.Busy(),
		CanSync:     a.canSyncLocked(),
	}
}

func (a *App) canSyncLocked() bool {
	return a.summary != nil && (a.status == StatusSuccess || a.status == StatusSyncSuccess)
}

// Log appends a line on behalf of a view (settings saved, copied, ...).
func (a *App) Log(message string, sev Severity) {
	a.update(func() { a.appendLocked(message, sev) })
}

// Generate runs one generation and, when the settings allow it, the automatic sync.
func (a *App) Generate(ctx context.Context) error {
	var runID string
	started := a.tryUpdate(func() bool {
		if a.status.Busy() {
			return false
		}
		runID = uuid.NewString()
		a.runID = runID
		a.status = StatusGenerating
		a.appendLocked("Initialising the briefing model...", SeverityInfo)
		a.appendLocked("Searching for global news and market data...", SeverityInfo)
		return true
	})
	if !started {
		return ErrBusy
	}
	log := a.logger.With().Str("run_id", runID).Logger()
	log.Info().Msg("generation started")

	summary, err := a.gen.Generate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		a.update(func() {
			a.appendLocked(fmt.Sprintf("Error while generating the briefing: %v", err), SeverityError)
			a.status = StatusError
		})
		return err
	}

	a.update(func() {
		s := summary
		a.summary = &s
		a.lastURL = ""
		a.appendLocked("Daily briefing generated.", SeveritySuccess)
		a.status = StatusSuccess
	})
	log.Info().Str("date", summary.Date).Int("sources", len(summary.Sources)).Msg("generation succeeded")

	if !a.settings.Get().SyncEnabled() {
		a.Log("GitHub sync skipped. Configure a token and repository in settings to enable it.", SeverityInfo)
		return nil
	}
	return a.Sync(ctx)
}

// Sync publishes the current summary. Allowed after success or sync_success.
func (a *App) Sync(ctx context.Context) error {
	var summary generator.Summary
	var runID string
	err := ErrSyncUnavailable
	a.tryUpdate(func() bool {
		if a.status.Busy() {
			err = ErrBusy
			return false
		}
		if !a.canSyncLocked() {
			return false
		}
		err = nil
		summary = *a.summary
		runID = a.runID
		a.status = StatusSyncing
		a.appendLocked("Syncing to the Obsidian vault (GitHub)...", SeverityInfo)
		return true
	})
	if err != nil {
		return err
	}
	log := a.logger.With().Str("run_id", runID).Logger()

	cfg := a.settings.Get()
	filename := generator.Filename(summary.Date)
	url, err := a.pub.Publish(ctx, cfg, filename, summary.Content)
	if err != nil {
		log.Error().Err(err).Str("file", filename).Msg("sync failed")
		a.update(func() {
			a.appendLocked(fmt.Sprintf("Sync failed: %v", err), SeverityError)
			a.status = StatusError
		})
		return err
	}

	log.Info().Str("url", url).Msg("sync succeeded")
	a.update(func() {
		a.lastURL = url
		a.appendLocked(fmt.Sprintf("Synced to %s/%s", cfg.Owner, cfg.Repo), SeveritySuccess)
		a.appendLocked(fmt.Sprintf("File written: %s", filename), SeverityInfo)
		a.status = StatusSyncSuccess
	})
	return nil
}

func (a *App) appendLocked(message string, sev Severity) {
	a.logs = append(a.logs, LogEntry{
		Timestamp: a.now().Format("15:04:05"),
		Message:   message,
		Severity:  sev,
	})
}

func (a *App) update(fn func()) {
	a.tryUpdate(func() bool { fn(); return true })
}

// tryUpdate applies fn under the state lock and notifies observers if it reports a change.
func (a *App) tryUpdate(fn func() bool) bool {
	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()

	a.mu.Lock()
	changed := fn()
	var snap State
	if changed {
		snap = a.snapshotLocked()
	}
	a.mu.Unlock()

	if changed {
		for _, obs := range a.observers {
			obs(snap)
		}
	}
	return changed
}
