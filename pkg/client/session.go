// Package client is a Go client for the Boma API that keeps the signed-in
// session on disk between runs.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	VerificationState string    `json:"verificationState"`
	CreatedAt         time.Time `json:"createdAt"`
}

// State is what a Store persists.
type State struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

type Store interface {
	Load() (State, error)
	Save(State) error
	Clear() error
}

// FileStore keeps the state in a JSON file readable only by its owner.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load returns the zero State when the file does not exist.
func (f *FileStore) Load() (State, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read session: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode session: %w", err)
	}
	return st, nil
}

// Save replaces the file atomically through a temp file in the same directory.
func (f *FileStore) Save(st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryStore is a Store that forgets everything on exit.
type MemoryStore struct {
	mu sync.Mutex
	st State
}

func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st, nil
}

func (m *MemoryStore) Save(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = State{}
	return nil
}

// Session is the in-memory view of the signed-in user, written through to
// its Store.
type Session struct {
	mu    sync.RWMutex
	store Store
	state State
}

func NewSession(store Store) *Session {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Session{store: store}
}

// Hydrate loads the persisted state. A corrupt file is discarded.
func (s *Session) Hydrate() error {
	st, err := s.store.Load()
	if err != nil {
		_ = s.store.Clear()
		s.mu.Lock()
		s.state = State{}
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

func (s *Session) Set(token string, user User) error {
	st := State{Token: token, User: &user}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return s.store.Save(st)
}

func (s *Session) setUser(user User) error {
	s.mu.Lock()
	s.state.User = &user
	st := s.state
	s.mu.Unlock()
	return s.store.Save(st)
}

func (s *Session) Clear() error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	return s.store.Clear()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Profile returns a copy of the cached user, or false when signed out.
func (s *Session) Profile() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return User{}, false
	}
	return *s.state.User, true
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// HasRole reports whether the cached user holds any of roles.
func (s *Session) HasRole(roles ...string) bool {
	u, ok := s.Profile()
	if !ok {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
