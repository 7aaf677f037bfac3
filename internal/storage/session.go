// Package storage holds the session's mined corpora. State is in-memory only
// and lives for the process lifetime; corpora are replaced wholesale on each
// mining pass, never mutated in place.
package storage

import (
	"sync"
	"time"

	"theme-tracker/internal/corpus"
	"theme-tracker/internal/models"
)

type SessionStore struct {
	mu      sync.RWMutex
	corpora map[models.Window]*corpus.Corpus
	minedAt map[models.Window]time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		corpora: make(map[models.Window]*corpus.Corpus),
		minedAt: make(map[models.Window]time.Time),
	}
}

// Put replaces the stored corpus for a window.
func (s *SessionStore) Put(window models.Window, c *corpus.Corpus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpora[window] = c
	s.minedAt[window] = time.Now()
}

func (s *SessionStore) Get(window models.Window) (*corpus.Corpus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.corpora[window]
	return c, ok
}

// MinedAt reports when a window was last mined.
func (s *SessionStore) MinedAt(window models.Window) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.minedAt[window]
	return t, ok
}

// All returns the stored corpora in fixed window order.
func (s *SessionStore) All() []*corpus.Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*corpus.Corpus
	for _, w := range models.AllWindows() {
		if c, ok := s.corpora[w]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Windows returns the windows that currently hold a corpus, in fixed order.
func (s *SessionStore) Windows() []models.Window {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Window
	for _, w := range models.AllWindows() {
		if _, ok := s.corpora[w]; ok {
			out = append(out, w)
		}
	}
	return out
}

func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpora = make(map[models.Window]*corpus.Corpus)
	s.minedAt = make(map[models.Window]time.Time)
}
