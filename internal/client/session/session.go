// Package session holds the client's authenticated state: the issued token
// and account summary, persisted to a JSON state file so a new process can
// resume the session. There is no hidden global flag; callers pass the
// Session to whatever needs it.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"member_console/internal/common"
	"member_console/internal/domain/model"
)

type State struct {
	Token   string         `json:"token"`
	Account *model.Account `json:"account,omitempty"`
	SavedAt time.Time      `json:"saved_at"`
}

// Store persists session state to a file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath places the state file under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "approvectl", "session.json"), nil
}

// Load reads persisted state. A missing file is not an error; it just means
// nobody is logged in.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Store) Save(state *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Session is the in-memory session with a defined lifecycle: initialized
// from the persisted state at startup, established on login, dropped on
// logout or when the server rejects the token.
type Session struct {
	store *Store

	mu    sync.Mutex
	state *State
}

func Open(store *Store) (*Session, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, state: state}, nil
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil && s.state.Token != ""
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ""
	}
	return s.state.Token
}

func (s *Session) Account() *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	return s.state.Account
}

// Establish records and persists a fresh login.
func (s *Session) Establish(token string, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &State{Token: token, Account: account, SavedAt: time.Now().UTC()}
	return s.store.Save(s.state)
}

// Drop forgets the session in memory and on disk.
func (s *Session) Drop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	return s.store.Clear()
}

// Invalidate drops the session when err means the token is no longer
// accepted. Reports whether the session was dropped.
func (s *Session) Invalidate(err error) bool {
	if err == nil || !errors.Is(err, common.ErrUnauthorized) {
		return false
	}
	_ = s.Drop()
	return true
}
