package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the cache as a whole-file JSON snapshot of the
// string-to-string mapping, surviving process restarts. Entries never
// expire; the product's credibility depends on identical inputs always
// producing identical outputs.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// NewFileStore creates a file-backed store at path. The parent
// directory is created on first write, not here: a store pointed at an
// unwritable location still functions as a pass-through.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Get loads the snapshot and looks up key. Any failure is a miss.
func (s *FileStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	value, ok := entries[key]
	return value, ok
}

// Put rewrites the snapshot with the entry added. Write failures are
// logged and ignored.
func (s *FileStore) Put(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries[key] = value
	s.save(entries)
}

// Clear removes every entry by deleting the snapshot file.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Len returns the number of cached entries.
func (s *FileStore) Len(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.load())
}

func (s *FileStore) load() map[string]string {
	entries := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Cache snapshot unreadable, treating as empty", "path", s.path, "error", err)
		}
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("Cache snapshot corrupt, treating as empty", "path", s.path, "error", err)
		return make(map[string]string)
	}
	return entries
}

func (s *FileStore) save(entries map[string]string) {
	data, err := json.Marshal(entries)
	if err != nil {
		s.logger.Warn("Cache snapshot marshal failed, write ignored", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn("Cache directory unavailable, write ignored", "path", s.path, "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Warn("Cache snapshot write failed, write ignored", "path", s.path, "error", err)
	}
}
