// Package workspace holds the in-memory, session-scoped project file map.
// A Store is an owned aggregate constructed once per session and passed
// into the dispatcher; concurrent sessions are isolated by construction.
package workspace

import (
	"sort"
	"sync"
)

// FileRecord is one project file: path, content and a language tag.
type FileRecord struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// Store is the working set being edited during one session. No I/O;
// lifetime is the session.
type Store struct {
	mu    sync.RWMutex
	files map[string]FileRecord
}

// NewStore builds a store from an ordered snapshot. Later entries with a
// duplicate path overwrite earlier ones, so paths are unique.
func NewStore(snapshot []FileRecord) *Store {
	files := make(map[string]FileRecord, len(snapshot))
	for _, f := range snapshot {
		files[f.Path] = f
	}
	return &Store{files: files}
}

// Get returns the record for path and whether it exists.
func (s *Store) Get(path string) (FileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[path]
	return f, ok
}

// Set inserts or overwrites a file.
func (s *Store) Set(path, content, language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = FileRecord{Path: path, Content: content, Language: language}
}

// Delete removes a file. Deleting an absent path is a no-op.
func (s *Store) Delete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
}

// Len returns the number of files in the working set.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Manifest returns the deterministically sorted path list, used for
// prompting.
func (s *Store) Manifest() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Records returns every file, sorted by path.
func (s *Store) Records() []FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]FileRecord, 0, len(s.files))
	for _, f := range s.files {
		records = append(records, f)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records
}
