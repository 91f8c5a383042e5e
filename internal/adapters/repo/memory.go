package repo

import (
	"context"
	"sync"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
)

// MemoryRequestStore keeps consultation requests for the lifetime of the process.
// Ids come from a counter guarded by the same lock as the map, so concurrent
// creates never collide.
type MemoryRequestStore struct {
	mu       sync.RWMutex
	requests map[int64]*domain.ConsultationRequest
	order    []int64
	nextID   int64
	now      func() time.Time
}

func NewMemoryRequestStore() *MemoryRequestStore {
	return &MemoryRequestStore{
		requests: make(map[int64]*domain.ConsultationRequest),
		now:      time.Now,
	}
}

func (s *MemoryRequestStore) Create(ctx context.Context, month string, year int) (*domain.ConsultationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	req := domain.NewConsultationRequest(s.nextID, month, year, s.now())
	s.requests[req.ID] = req
	s.order = append(s.order, req.ID)

	return req.Clone(), nil
}

func (s *MemoryRequestStore) Get(ctx context.Context, id int64) (*domain.ConsultationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return req.Clone(), nil
}

// List returns requests in insertion order.
func (s *MemoryRequestStore) List(ctx context.Context) ([]*domain.ConsultationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ConsultationRequest, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.requests[id].Clone())
	}
	return out, nil
}

func (s *MemoryRequestStore) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	if !status.IsValid() {
		return domain.NewInvalidStatusError(status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil
	}
	return req.TransitionTo(status)
}
