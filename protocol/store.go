// Package protocol stores the written procedures images are audited
// against. Protocols come from three places: the built-in samples, a
// directory of text/markdown files, and HTTPS fetches of web-hosted
// procedures.
package protocol

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultGlobs are the file patterns the directory store indexes.
var DefaultGlobs = []string{"**/*.md", "**/*.txt"}

// Protocol is one named standard operating procedure.
type Protocol struct {
	// Name identifies the protocol in listings and CLI flags.
	Name string `json:"name"`

	// Text is the full procedure text. The first line carries the
	// experiment-type signal the mismatch detector keys on.
	Text string `json:"text"`

	// Source records where the protocol came from: "builtin", a file
	// path, or a URL.
	Source string `json:"source,omitempty"`
}

// Store holds the indexed protocols. Reload-safe: the watcher replaces
// directory entries while readers keep getting consistent snapshots.
type Store struct {
	mu       sync.RWMutex
	builtins []Protocol
	files    map[string]Protocol // keyed by name

	dir    string
	globs  []string
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDir adds a directory of protocol files to the store.
func WithDir(dir string) StoreOption {
	return func(s *Store) { s.dir = dir }
}

// WithGlobs overrides the file patterns indexed under the directory.
// An empty slice keeps the defaults.
func WithGlobs(globs []string) StoreOption {
	return func(s *Store) {
		if len(globs) > 0 {
			s.globs = globs
		}
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a store preloaded with the built-in samples and, if
// a directory is configured, the protocol files under it.
func NewStore(opts ...StoreOption) (*Store, error) {
	s := &Store{
		builtins: sampleProtocols,
		files:    make(map[string]Protocol),
		globs:    DefaultGlobs,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dir != "" {
		if err := s.Reload(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Reload re-indexes the protocol directory, replacing all file-sourced
// entries. Built-ins are unaffected.
func (s *Store) Reload() error {
	if s.dir == "" {
		return nil
	}

	root := os.DirFS(s.dir)
	loaded := make(map[string]Protocol)
	for _, pattern := range s.globs {
		matches, err := doublestar.Glob(root, pattern)
		if err != nil {
			return fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			path := filepath.Join(s.dir, match)
			data, err := os.ReadFile(path)
			if err != nil {
				s.logger.Warn("Protocol file unreadable, skipping", "path", path, "error", err)
				continue
			}
			name := protocolName(match)
			loaded[name] = Protocol{Name: name, Text: string(data), Source: path}
		}
	}

	s.mu.Lock()
	s.files = loaded
	s.mu.Unlock()

	s.logger.Debug("Protocol directory indexed", "dir", s.dir, "count", len(loaded))
	return nil
}

// Get returns a protocol by name. File-sourced protocols shadow
// built-ins of the same name.
func (s *Store) Get(name string) (Protocol, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.files[name]; ok {
		return p, true
	}
	for _, p := range s.builtins {
		if p.Name == name {
			return p, true
		}
	}
	return Protocol{}, false
}

// List returns every protocol sorted by name.
func (s *Store) List() []Protocol {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(s.files))
	out := make([]Protocol, 0, len(s.files)+len(s.builtins))
	for _, p := range s.files {
		out = append(out, p)
		seen[p.Name] = true
	}
	for _, p := range s.builtins {
		if !seen[p.Name] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// protocolName derives a protocol name from its relative file path:
// "assays/mtt-viability.md" becomes "assays/mtt-viability".
func protocolName(relPath string) string {
	name := filepath.ToSlash(relPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
