package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/Shubham414kumar/vidyasphere/core"
)

// MemoryStore keeps revoked token IDs in process memory.
// A cron job sweeps the expired ones.
type MemoryStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // {tokenID: expiresAt}
	now     func() time.Time
	cron    *cron.Cron
}

var _ core.RevocationStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if !expiresAt.After(s.now()) {
		return nil
	}
	s.mu.Lock()
	s.revoked[tokenID] = expiresAt
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	exp, ok := s.revoked[tokenID]
	s.mu.RUnlock()
	return ok && exp.After(s.now()), nil
}

// Sweep forgets the tokens that expired and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep on the given cron schedule.
func (s *MemoryStore) StartSweeper(schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return errors.Wrap(err, "scheduling token sweeper")
	}
	c.Start()
	s.cron = c
	return nil
}

func (s *MemoryStore) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
