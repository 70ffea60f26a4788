package script

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Store keeps named scripts as line lists and persists them to a JSON file.
// The on-disk form is a single object mapping name to line array, indented,
// with keys in sorted order.
type Store struct {
	mu      sync.Mutex
	path    string
	scripts map[string][]string
}

// NewStore returns an empty store bound to path.
func NewStore(path string) *Store {
	return &Store{path: path, scripts: make(map[string][]string)}
}

// Path returns the file the store persists to.
func (s *Store) Path() string { return s.path }

// Load reads the store file. A missing file leaves the store empty and is
// not an error.
func (s *Store) Load() error {
	return s.LoadFile(s.path)
}

// LoadFile replaces the store contents from the named JSON file. A missing
// file empties the store.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.scripts = make(map[string][]string)
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("script: load %s: %w", path, err)
	}

	var scripts map[string][]string
	if err := json.Unmarshal(data, &scripts); err != nil {
		return fmt.Errorf("script: load %s: %w", path, err)
	}
	if scripts == nil {
		scripts = make(map[string][]string)
	}

	s.mu.Lock()
	s.scripts = scripts
	s.mu.Unlock()
	return nil
}

// Save writes the store to its bound path.
func (s *Store) Save() error {
	return s.SaveFile(s.path)
}

// SaveFile writes the store to the named file.
func (s *Store) SaveFile(path string) error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.scripts, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("script: save %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("script: save %s: %w", path, err)
	}
	return nil
}

// Get returns the lines of a named script.
func (s *Store) Get(name string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines, ok := s.scripts[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out, true
}

// Put stores (or replaces) a named script.
func (s *Store) Put(name string, lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]string, len(lines))
	copy(cp, lines)
	s.scripts[name] = cp
}

// Delete removes a named script, reporting whether it existed.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scripts[name]; !ok {
		return false
	}
	delete(s.scripts, name)
	return true
}

// Names returns the stored script names in sorted order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.scripts))
	for name := range s.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored scripts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scripts)
}

// ImportText reads a plain text file into a named script, one command per
// line, and returns the number of lines imported.
func (s *Store) ImportText(name, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("script: import %s: %w", path, err)
	}
	lines := splitLines(string(data))
	s.Put(name, lines)
	return len(lines), nil
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	// Drop a single trailing blank produced by a final newline.
	if len(raw) > 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	return raw
}
