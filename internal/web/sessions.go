package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bookimport/internal/catalog"
	"github.com/JonMunkholm/bookimport/internal/importer"
)

// Session is one browser's import state: its pipeline (holding the single
// pending batch) and the entry-form field markers.
type Session struct {
	ID       string
	Pipeline *importer.Pipeline
	Fields   *catalog.FieldTracker

	lastSeen time.Time
}

// Sessions is the registry of live sessions. Sessions idle for longer
// than the TTL are dropped along with their batch.
type Sessions struct {
	ttl         time.Duration
	newPipeline func() *importer.Pipeline
	now         func() time.Time

	mu    sync.Mutex
	items map[string]*Session
}

// NewSessions returns a registry creating pipelines with newPipeline.
func NewSessions(ttl time.Duration, newPipeline func() *importer.Pipeline) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{
		ttl:         ttl,
		newPipeline: newPipeline,
		now:         time.Now,
		items:       make(map[string]*Session),
	}
}

// TTL returns the idle expiry.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Get returns the live session with id, or a new one when id is unknown
// or expired. The second result reports whether a session was created.
func (s *Sessions) Get(id string) (*Session, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.items[id]; ok && now.Sub(sess.lastSeen) <= s.ttl {
		sess.lastSeen = now
		return sess, false
	}
	delete(s.items, id)

	sess := &Session{
		ID:       uuid.NewString(),
		Pipeline: s.newPipeline(),
		Fields:   catalog.NewFieldTracker(nil),
		lastSeen: now,
	}
	s.items[sess.ID] = sess
	return sess, true
}

// Len returns the number of tracked sessions, expired ones included until
// the next sweep.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.items {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("expired import sessions removed", "count", n)
			}
		}
	}
}
