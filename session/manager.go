package session

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/amoghasbhardwaj/botlang/ast"
	"github.com/amoghasbhardwaj/botlang/builtin"
	"github.com/amoghasbhardwaj/botlang/metrics"
	"github.com/amoghasbhardwaj/botlang/recognizer"
)

// Manager runs many independent Sessions concurrently. The AST is
// immutable and safely shared across sessions; each Session still gets
// its own Environment and Engine, so there is no shared mutable state
// between them beyond the read-only *ast.BotDef.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

// Open creates and starts a new Session for bot, registers it under its
// ulid-derived ID, and returns it.
func (m *Manager) Open(ctx context.Context, bot *ast.BotDef, io builtin.IOHandler, rec recognizer.IntentRecognizer) (*Session, error) {
	s := New(bot, io, rec)
	if err := s.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	metrics.ActiveSessions.Inc()
	return s, nil
}

// Close discards the session with the given ID, if one is open.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		metrics.ActiveSessions.Dec()
	}
}

// Get returns the open session with the given ID, if any.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// RunTurns drives every (sessionID, text) pair in turns concurrently,
// one goroutine per session, and returns the first error encountered
// across all of them (if any) once all have completed.
func (m *Manager) RunTurns(ctx context.Context, turns map[string][]string) error {
	g, ctx := errgroup.WithContext(ctx)
	for id, texts := range turns {
		id, texts := id, texts
		g.Go(func() error {
			sess, ok := m.Get(id)
			if !ok {
				return nil
			}
			for _, text := range texts {
				if sess.Ended() {
					return nil
				}
				if err := sess.Turn(ctx, text); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
