// Package localstore keeps the client's small persistent state: the bearer token
// and the dark-mode preference.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const stateFileName = "state.json"

type state struct {
	Token    string `json:"token,omitempty"`
	DarkMode bool   `json:"darkMode"`
}

// Store is a JSON file under dir. It is safe for concurrent use within a process.
type Store struct {
	mu   sync.Mutex
	path string
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, stateFileName)}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Token returns the persisted token, or "" when none is stored.
func (s *Store) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	return st.Token, err
}

func (s *Store) SetToken(token string) error {
	return s.update(func(st *state) { st.Token = token })
}

func (s *Store) ClearToken() error {
	return s.SetToken("")
}

func (s *Store) DarkMode() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	return st.DarkMode, err
}

func (s *Store) SetDarkMode(on bool) error {
	return s.update(func(st *state) { st.DarkMode = on })
}

func (s *Store) update(fn func(*state)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	fn(&st)
	return s.save(st)
}

func (s *Store) load() (state, error) {
	var st state
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		// A corrupt file holds nothing worth keeping.
		return state{}, nil
	}
	return st, nil
}

// save writes to a temp file and renames it into place.
func (s *Store) save(st state) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), stateFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
