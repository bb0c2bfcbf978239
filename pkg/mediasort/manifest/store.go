// Package manifest persists the archive's catalog as a single JSON
// document. The file is the source of truth for everything the archive
// has ever ingested, including soft-deleted entries.
package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/mediasort/mediasort/pkg/mediasort/classify"
)

// Store reads and writes the manifest file. All mutating operations
// rewrite the whole document atomically via a temp file and rename.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store backed by the manifest file at path. The
// file is created on first write; a missing file reads as empty.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the manifest file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads all entries. A missing manifest file yields an empty
// slice; a present but unparsable file is an error.
func (s *Store) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read manifest %s: %w", s.path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", s.path, err)
	}
	return entries, nil
}

// Append adds entries to the manifest and rewrites it.
func (s *Store) Append(entries ...Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(existing, entries...))
}

// Clear truncates the manifest to an empty document. The archived
// files themselves are left in place.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]Entry{})
}

// save writes entries to a temp file in the manifest's directory and
// renames it over the manifest, so readers never observe a torn write.
func (s *Store) save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create manifest temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write manifest temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close manifest temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace manifest %s: %w", s.path, err)
	}
	return nil
}

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	// Total is the number of manifest entries examined.
	Total int

	// NewlyRemoved is the number of live entries marked removed in
	// this pass.
	NewlyRemoved int

	// Changed reports whether the manifest was rewritten.
	Changed bool
}

// Reconcile walks the archive tree and marks manifest entries whose
// archived copy no longer exists as removed, stamping them with now.
// Already-removed entries stay removed even if a file reappears at
// their path. The manifest is rewritten only when something changed,
// so repeated passes over a stable archive are no-ops.
func (s *Store) Reconcile(archiveRoot string, now time.Time) (ReconcileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return ReconcileResult{}, err
	}
	result := ReconcileResult{Total: len(entries)}
	if len(entries) == 0 {
		return result, nil
	}

	present, err := archiveContents(archiveRoot)
	if err != nil {
		return ReconcileResult{}, err
	}

	for i := range entries {
		if entries[i].Removed {
			continue
		}
		if present[entries[i].SortedPath] {
			continue
		}
		entries[i].Removed = true
		stamp := now
		entries[i].RemovedDate = &stamp
		result.NewlyRemoved++
	}

	if result.NewlyRemoved > 0 {
		if err := s.save(entries); err != nil {
			return ReconcileResult{}, err
		}
		result.Changed = true
	}
	return result, nil
}

// archiveContents walks each media-type directory under root and
// returns the set of file paths present. Missing type directories are
// treated as empty; any other walk error aborts the reconciliation so
// a transient I/O failure cannot mass-remove entries.
func archiveContents(root string) (map[string]bool, error) {
	present := make(map[string]bool)
	var presentMu sync.Mutex
	conf := fastwalk.Config{Follow: false}

	for _, mediaType := range classify.AllTypes() {
		dir := filepath.Join(root, string(mediaType))
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		// fastwalk runs the callback from multiple goroutines.
		err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("walk %s: %w", path, err)
			}
			if !d.IsDir() {
				presentMu.Lock()
				present[path] = true
				presentMu.Unlock()
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan archive %s: %w", dir, err)
		}
	}
	return present, nil
}
