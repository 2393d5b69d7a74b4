package session

import (
	"context"
	"time"

	c "github.com/patrickmn/go-cache"

	"shift_report_bot/internal/domain/workflow"
)

var _ workflow.SessionStore = new(MemoryStore)

// MemoryStore is a process-local SessionStore. Sessions do not survive a
// restart; use it for development and tests.
type MemoryStore struct {
	cache *c.Cache
	ttl   time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = c.NoExpiration
	}
	return &MemoryStore{
		cache: c.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

func (s *MemoryStore) Get(_ context.Context, k workflow.SessionKey) (*workflow.Instance, error) {
	v, found := s.cache.Get(k.String())
	if !found {
		return nil, workflow.ErrSessionNotFound
	}
	return copyInstance(v.(*workflow.Instance)), nil
}

func (s *MemoryStore) Put(_ context.Context, k workflow.SessionKey, inst *workflow.Instance) error {
	s.cache.Set(k.String(), copyInstance(inst), s.ttl)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, k workflow.SessionKey) error {
	s.cache.Delete(k.String())
	return nil
}

func copyInstance(inst *workflow.Instance) *workflow.Instance {
	cp := *inst
	cp.Answers = inst.Answers.Clone()
	return &cp
}
