package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoSession is returned when no user is signed in.
var ErrNoSession = errors.New("session: no active session")

// Store persists the signed-in user between runs.
type Store interface {
	Load(ctx context.Context) (User, error)
	Save(ctx context.Context, user User) error
	Clear(ctx context.Context) error
}

// Session is the explicit auth context handed to views. Load it once at
// startup and Clear it at logout.
type Session struct {
	mu    sync.RWMutex
	store Store
	user  *User
}

// New returns an empty session backed by store; a nil store keeps the
// session in memory only.
func New(store Store) *Session {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Session{store: store}
}

// Load restores the user from the store. A store without a user yields
// ErrNoSession and leaves the session empty.
func (s *Session) Load(ctx context.Context) error {
	user, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Begin signs user in and persists it.
func (s *Session) Begin(ctx context.Context, user User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("session: unknown role %q", user.Role)
	}
	if err := s.store.Save(ctx, user); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Clear signs out and removes the persisted user.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return s.store.Clear(ctx)
}

// User returns the signed-in user.
func (s *Session) User() (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, ErrNoSession
	}
	return *s.user, nil
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	_, err := s.User()
	return err == nil
}

// MemoryStore keeps the user in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	user *User
}

func (m *MemoryStore) Load(context.Context) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return User{}, ErrNoSession
	}
	return *m.user, nil
}

func (m *MemoryStore) Save(_ context.Context, user User) error {
	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
	return nil
}

// FileStore persists the user as JSON at Path.
type FileStore struct {
	Path string
}

func (f FileStore) Load(ctx context.Context) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return User{}, ErrNoSession
	}
	if err != nil {
		return User{}, fmt.Errorf("session: read %s: %w", f.Path, err)
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return User{}, fmt.Errorf("session: decode %s: %w", f.Path, err)
	}
	return user, nil
}

func (f FileStore) Save(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("session: mkdir: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", f.Path, err)
	}
	return nil
}

func (f FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: remove %s: %w", f.Path, err)
	}
	return nil
}
