package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/bookimport/internal/importer"
)

func newTestSessions(ttl time.Duration, now *time.Time) *Sessions {
	s := NewSessions(ttl, func() *importer.Pipeline {
		return importer.NewPipeline(importer.Options{})
	})
	s.now = func() time.Time { return *now }
	return s
}

func TestSessions_GetReusesLiveSession(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSessions(time.Minute, &now)

	first, created := s.Get("")
	assert.True(t, created)

	now = now.Add(30 * time.Second)
	again, created := s.Get(first.ID)
	assert.False(t, created)
	assert.Same(t, first, again)
}

func TestSessions_ExpiredSessionIsReplaced(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSessions(time.Minute, &now)

	first, _ := s.Get("")
	now = now.Add(2 * time.Minute)

	next, created := s.Get(first.ID)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, next.ID)
	assert.Equal(t, 1, s.Len())
}

func TestSessions_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSessions(time.Minute, &now)

	s.Get("")
	s.Get("")
	now = now.Add(90 * time.Second)
	s.Get("")

	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 1, s.Len())
}
