// ABOUTME: File-backed store for tuning examples used as few-shot prompt context
// ABOUTME: Loads a JSON array at startup and rewrites the whole file on every append

package tuning

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Example is a curated (input, output) pair injected as few-shot context
// into prompts. Examples are immutable once appended; insertion order is
// meaningful and preserved.
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Store holds the ordered tuning set in memory and persists it to a flat
// JSON file. Appends are serialized by a mutex; reads take a snapshot so
// prompt building never observes a partial write.
type Store struct {
	mu       sync.RWMutex
	path     string
	examples []Example
	logger   *slog.Logger
}

// NewStore creates a store backed by the file at path and loads any
// existing examples. A missing or unparsable file is not an error: the
// store starts empty and logs the problem (tuning degrades to "no
// examples" rather than failing the gateway).
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		logger: logger.With("component", "tuning"),
	}
	s.load()
	return s
}

// load reads the backing file into memory. Fail-soft by design.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("tuning file not found, starting empty", "path", s.path)
		} else {
			s.logger.Warn("failed to read tuning file, starting empty", "path", s.path, "error", err)
		}
		return
	}

	var examples []Example
	if err := json.Unmarshal(data, &examples); err != nil {
		s.logger.Warn("failed to parse tuning file, starting empty", "path", s.path, "error", err)
		return
	}

	s.examples = examples
	s.logger.Info("loaded tuning examples", "path", s.path, "count", len(examples))
}

// Append adds an example to the in-memory set and durably rewrites the
// backing file before returning. The write is atomic (temp file + rename)
// so a crash mid-write cannot corrupt the existing file.
func (s *Store) Append(ex Example) error {
	if ex.Input == "" || ex.Output == "" {
		return fmt.Errorf("tuning example requires both input and output")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Example, len(s.examples), len(s.examples)+1)
	copy(next, s.examples)
	next = append(next, ex)

	if err := s.persist(next); err != nil {
		return err
	}

	s.examples = next
	return nil
}

// persist writes the full example set to the backing file, pretty-printed
// UTF-8 as the original format requires. Must be called with mu held.
func (s *Store) persist(examples []Example) error {
	data, err := json.MarshalIndent(examples, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding tuning data: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tuning-*.json")
	if err != nil {
		return fmt.Errorf("creating temp tuning file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing tuning data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp tuning file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing tuning file: %w", err)
	}

	return nil
}

// Snapshot returns a copy of the current example set in insertion order.
func (s *Store) Snapshot() []Example {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Example, len(s.examples))
	copy(out, s.examples)
	return out
}

// Len returns the number of stored examples.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.examples)
}
