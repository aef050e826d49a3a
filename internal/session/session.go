// Package session holds the auth credential of one client and tells every
// interested component when it changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fadilmartias/ats-portal/internal/logger"
	"go.uber.org/zap"
)

var ErrEmptyToken = errors.New("session: empty token")

type State struct {
	Token         string
	Authenticated bool
}

type Session struct {
	mu      sync.RWMutex
	key     string
	token   string
	store   Store
	subs    map[int]func(State)
	nextSub int
	log     *zap.Logger
}

// New reads the persisted token for key once; later changes made through
// other Session values are not observed.
func New(ctx context.Context, store Store, key string, log *zap.Logger) (*Session, error) {
	token, err := store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", key, err)
	}
	return newSession(store, key, token, log), nil
}

func newSession(store Store, key, token string, log *zap.Logger) *Session {
	return &Session{
		key:   key,
		token: token,
		store: store,
		subs:  map[int]func(State){},
		log:   logger.OrNop(log),
	}
}

func (s *Session) Login(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.store.Save(ctx, s.key, token); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.log.Debug("session logged in", zap.String("key", s.key))
	s.notify()
	return nil
}

// Logout always drops the in-memory token; a store failure is still
// reported.
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.Clear(ctx, s.key)
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	s.log.Debug("session logged out", zap.String("key", s.key))
	s.notify()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) State() State {
	token := s.Token()
	return State{Token: token, Authenticated: token != ""}
}

func (s *Session) Key() string {
	return s.key
}

// Subscribe registers fn for every later Login and Logout. The returned
// function removes it.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	s.mu.RLock()
	state := State{Token: s.token, Authenticated: s.token != ""}
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(state)
	}
}
