package main

import (
	"sync"
	"time"
)

// chatSession holds the per-chat state for live-location tracking. Created on
// first interaction, held in memory, lost on restart.
type chatSession struct {
	liveLocationActive bool
	lastFactSent       time.Time
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*chatSession
	clock    Clock
}

func newSessionStore(clock Clock) *sessionStore {
	return &sessionStore{
		sessions: make(map[int64]*chatSession),
		clock:    clock,
	}
}

func (s *sessionStore) setLiveActive(chatID int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getLocked(chatID).liveLocationActive = active
}

func (s *sessionStore) liveActive(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[chatID]
	return exists && session.liveLocationActive
}

func (s *sessionStore) markFactSent(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getLocked(chatID).lastFactSent = s.clock.Now()
}

func (s *sessionStore) lastFactSent(chatID int64) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[chatID]
	if !exists {
		return time.Time{}
	}
	return session.lastFactSent
}

// getLocked returns the chat's session, creating it if needed. Callers must
// hold the write lock.
func (s *sessionStore) getLocked(chatID int64) *chatSession {
	session, exists := s.sessions[chatID]
	if !exists {
		session = &chatSession{}
		s.sessions[chatID] = session
	}
	return session
}
