package memory

import (
	"context"
	"sync"

	domainhosts "github.com/calemaley/airbnb/internal/domain/hosts"
)

// HostRegistrationRepository keeps host registrations in memory.
type HostRegistrationRepository struct {
	mu     sync.RWMutex
	byID   map[domainhosts.RegistrationID]*domainhosts.Registration
	byUser map[string]domainhosts.RegistrationID
}

func NewHostRegistrationRepository() *HostRegistrationRepository {
	return &HostRegistrationRepository{
		byID:   make(map[domainhosts.RegistrationID]*domainhosts.Registration),
		byUser: make(map[string]domainhosts.RegistrationID),
	}
}

func (r *HostRegistrationRepository) Save(ctx context.Context, reg *domainhosts.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[reg.ID] = reg
	if reg.UserID != "" {
		r.byUser[reg.UserID] = reg.ID
	}
	return nil
}

func (r *HostRegistrationRepository) ByUser(ctx context.Context, userID string) (*domainhosts.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	if !ok {
		return nil, domainhosts.ErrRegistrationNotFound
	}
	return r.byID[id], nil
}

// HostCounter is the in-memory active host counter. Increment is atomic under
// the mutex, mirroring the findOneAndUpdate semantics of the mongo version.
type HostCounter struct {
	mu    sync.Mutex
	count int64
}

func NewHostCounter() *HostCounter {
	return &HostCounter{}
}

func (c *HostCounter) ActiveHosts(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count, nil
}

func (c *HostCounter) IncrementActiveHosts(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.count, nil
}

var _ domainhosts.RegistrationRepository = (*HostRegistrationRepository)(nil)
var _ domainhosts.CounterRepository = (*HostCounter)(nil)
