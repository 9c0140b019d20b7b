package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"obsidian_briefing_sync/publisher"
)

// Key is the entry the GitHub target is stored under inside the settings file.
const Key = "obsidian_ai_gh_config"

// Store keeps the GitHub target in memory and on disk. Every Update replaces
// the whole record and is written through before it returns.
type Store struct {
	mu   sync.RWMutex
	fs   afero.Fs
	path string
	cfg  publisher.Config
	// other keys found in the file, written back untouched
	extra map[string]json.RawMessage
}

// Open loads the store at path. A missing file yields empty defaults.
func Open(fs afero.Fs, path string) (*Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	s := &Store{fs: fs, path: path, extra: map[string]json.RawMessage{}}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if raw, ok := doc[Key]; ok {
		if err := json.Unmarshal(raw, &s.cfg); err != nil {
			return nil, fmt.Errorf("parse %s in %s: %w", Key, path, err)
		}
		delete(doc, Key)
	}
	s.extra = doc
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns a copy of the current record.
func (s *Store) Get() publisher.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update replaces the record and persists it. On a write error the in-memory
// record is left unchanged.
func (s *Store) Update(cfg publisher.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(cfg); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

func (s *Store) persist(cfg publisher.Config) error {
	doc := make(map[string]any, len(s.extra)+1)
	for k, v := range s.extra {
		doc[k] = v
	}
	doc[Key] = cfg

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := s.fs.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	// token is a secret, keep the file private
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
