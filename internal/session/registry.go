package session

import (
	"container/list"
	"context"
	"sync"

	"github.com/fadilmartias/ats-portal/internal/logger"
	"go.uber.org/zap"
)

// DefaultRegistrySize is the number of authenticated sessions kept in
// memory when NewRegistry is given no size.
const DefaultRegistrySize = 10000

// Registry hands out one Session per client key so that every component
// serving the same browser shares one credential. Only sessions holding a
// token are cached, least recently used first out once the cache is full.
// An evicted session is read back from the store on its next request.
type Registry struct {
	mu       sync.Mutex
	store    Store
	size     int
	sessions map[string]*list.Element
	order    *list.List
	log      *zap.Logger
}

type registryEntry struct {
	key     string
	session *Session
}

func NewRegistry(store Store, log *zap.Logger) *Registry {
	return NewRegistrySize(store, DefaultRegistrySize, log)
}

func NewRegistrySize(store Store, size int, log *zap.Logger) *Registry {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	return &Registry{
		store:    store,
		size:     size,
		sessions: map[string]*list.Element{},
		order:    list.New(),
		log:      logger.OrNop(log),
	}
}

// Get returns the Session for key, loading it from the store on a miss.
func (r *Registry) Get(ctx context.Context, key string) (*Session, error) {
	if s, ok := r.cached(key); ok {
		return s, nil
	}
	s, err := New(ctx, r.store, key, r.log)
	if err != nil {
		return nil, err
	}
	return r.track(s), nil
}

// Anonymous returns a Session for a key that was just minted and so cannot
// have a stored token. The store is not read.
func (r *Registry) Anonymous(key string) *Session {
	return r.track(newSession(r.store, key, "", r.log))
}

// Forget drops the cached Session; the persisted token is kept.
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.sessions[key]; ok {
		r.order.Remove(el)
		delete(r.sessions, key)
	}
}

// Len is the number of cached sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

func (r *Registry) cached(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.sessions[key]
	if !ok {
		return nil, false
	}
	r.order.MoveToFront(el)
	return el.Value.(*registryEntry).session, true
}

// track caches s while it holds a token and follows its later logins and
// logouts.
func (r *Registry) track(s *Session) *Session {
	s.Subscribe(func(st State) {
		if st.Authenticated {
			r.put(s)
			return
		}
		r.remove(s)
	})
	if !s.IsAuthenticated() {
		return s
	}
	return r.put(s)
}

// put caches s unless another Session for the same key got there first, in
// which case that one is returned.
func (r *Registry) put(s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.sessions[s.key]; ok {
		r.order.MoveToFront(el)
		entry := el.Value.(*registryEntry)
		if entry.session != s && !entry.session.IsAuthenticated() {
			entry.session = s
		}
		return entry.session
	}
	r.sessions[s.key] = r.order.PushFront(&registryEntry{key: s.key, session: s})
	for r.order.Len() > r.size {
		oldest := r.order.Back()
		entry := oldest.Value.(*registryEntry)
		r.order.Remove(oldest)
		delete(r.sessions, entry.key)
		r.log.Debug("session evicted", zap.String("key", entry.key))
	}
	return s
}

func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.sessions[s.key]; ok && el.Value.(*registryEntry).session == s {
		r.order.Remove(el)
		delete(r.sessions, s.key)
	}
}
