package ratelimit

import (
	"sync"
	"time"
)

// Store tracks per-IP, per-action attempt counts within a time window. The
// window slides: every recorded attempt refreshes the expiry, so a lockout
// lasts until the source goes quiet for a full window.
type Store interface {
	IsLimited(ip, action string, maxAttempts int) (bool, error)
	RecordAttempt(ip, action string, window time.Duration) error
	ClearAttempts(ip, action string) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*entry
}

type entry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		data: make(map[string]*entry),
	}

	go store.cleanup()

	return store
}

func memKey(ip, action string) string {
	return action + ":" + ip
}

func (s *MemoryStore) IsLimited(ip, action string, maxAttempts int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memKey(ip, action)
	e, exists := s.data[key]
	if !exists {
		return false, nil
	}

	// lazy reset once the window has elapsed
	if time.Now().After(e.expiresAt) {
		delete(s.data, key)
		return false, nil
	}

	return e.count >= maxAttempts, nil
}

func (s *MemoryStore) RecordAttempt(ip, action string, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memKey(ip, action)
	now := time.Now()
	if e, exists := s.data[key]; exists && now.Before(e.expiresAt) {
		e.count++
		e.expiresAt = now.Add(window)
		return nil
	}

	s.data[key] = &entry{
		count:     1,
		expiresAt: now.Add(window),
	}
	return nil
}

func (s *MemoryStore) ClearAttempts(ip, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, memKey(ip, action))
	return nil
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()

		for key, e := range s.data {
			if now.After(e.expiresAt) {
				delete(s.data, key)
			}
		}

		s.mu.Unlock()
	}
}
