package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/seating-designer/internal/logging"
	"github.com/iliyamo/seating-designer/internal/utils"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("editing session not found")

// Registry keeps the live editing sessions of a server process.  All
// sessions share one SubmitGate so submits are serialised per screen across
// operators.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store   Store
	gate    *SubmitGate
	timeout time.Duration
	idleTTL time.Duration
	log     zerolog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRequestTimeout bounds load and submit calls of every session.
func WithRequestTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.timeout = d }
}

// WithIdleTTL evicts sessions unused for longer than d.  Zero keeps them
// until closed.
func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTTL = d }
}

// NewRegistry returns an empty registry whose sessions persist through store.
func NewRegistry(store Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		store:    store,
		gate:     NewSubmitGate(),
		log:      logging.Component("editor-registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open creates a session for screenID and loads the stored layout into it.
// The session is registered even when the load fails; the load error is
// returned alongside so the caller can report it and offer a reload.
func (r *Registry) Open(ctx context.Context, screenID string) (*Session, error) {
	r.sweep(time.Now())

	id, err := utils.RandomHex(16)
	if err != nil {
		return nil, err
	}
	s := NewSession(screenID, r.store,
		WithID(id),
		WithSubmitGate(r.gate),
		WithTimeout(r.timeout),
	)

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	r.log.Info().Str("session", id).Str("screen", screenID).Msg("session opened")

	return s, s.Load(ctx)
}

// Get returns a live session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close discards a session and its unsaved edits.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.log.Info().Str("session", id).Msg("session closed")
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// RunJanitor evicts idle sessions every interval until ctx is done.  A
// non-positive interval checks at half the idle TTL.  Without an idle TTL
// it returns immediately.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	if r.idleTTL <= 0 {
		return
	}
	if interval <= 0 {
		interval = r.idleTTL / 2
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			r.sweep(now)
		}
	}
}

func (r *Registry) sweep(now time.Time) {
	if r.idleTTL <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if now.Sub(s.LastActivity()) > r.idleTTL {
			delete(r.sessions, id)
			r.log.Info().Str("session", id).Msg("idle session evicted")
		}
	}
}
