package service

import (
	"context"
	"sync"
	"time"

	"insurance_intake_backend/internal/intake"
	"insurance_intake_backend/platform/ai/openaichat"
	"insurance_intake_backend/platform/logger"
)

// Thread is one conversation with its message history and intake session.
// The mutex serializes turns: concurrent requests for the same thread queue
// up rather than interleave.
type Thread struct {
	ID string

	mu         sync.Mutex
	messages   []openaichat.Message
	session    *intake.Session
	createdAt  time.Time
	lastActive time.Time
}

// ThreadStore keeps conversations in memory. Threads idle past the TTL are
// evicted by a background janitor.
type ThreadStore struct {
	mu      sync.RWMutex
	threads map[string]*Thread

	systemPrompt string
	ttl          time.Duration
	log          *logger.Logger
	now          func() time.Time
}

// NewThreadStore builds an empty store. Every new thread starts with the
// given system prompt.
func NewThreadStore(systemPrompt string, ttl time.Duration, log *logger.Logger) *ThreadStore {
	return &ThreadStore{
		threads:      make(map[string]*Thread),
		systemPrompt: systemPrompt,
		ttl:          ttl,
		log:          log,
		now:          time.Now,
	}
}

// GetOrCreate returns the thread for id, creating it with a fresh intake
// session on first use.
func (s *ThreadStore) GetOrCreate(id string) *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.threads[id]; ok {
		return t
	}
	now := s.now()
	t := &Thread{
		ID:         id,
		messages:   []openaichat.Message{{Role: openaichat.RoleSystem, Content: s.systemPrompt}},
		session:    intake.NewSession(now),
		createdAt:  now,
		lastActive: now,
	}
	s.threads[id] = t
	s.log.Info("conversation thread created", "thread_id", id, "session_id", t.session.ID)
	return t
}

// Get returns the thread for id, or nil when it does not exist.
func (s *ThreadStore) Get(id string) *Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threads[id]
}

// Delete removes the thread for id. Deleting a missing thread is a no-op;
// the bool reports whether anything was removed.
func (s *ThreadStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[id]; !ok {
		return false
	}
	delete(s.threads, id)
	return true
}

// Count returns the number of live threads.
func (s *ThreadStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads)
}

// RunJanitor evicts idle threads until ctx is canceled. Intended to run in
// its own goroutine. A non-positive TTL disables eviction entirely.
func (s *ThreadStore) RunJanitor(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *ThreadStore) evictIdle() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.threads {
		t.mu.Lock()
		idle := t.lastActive.Before(cutoff)
		t.mu.Unlock()
		if idle {
			delete(s.threads, id)
			s.log.Info("idle thread evicted", "thread_id", id)
		}
	}
}
