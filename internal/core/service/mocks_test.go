package service

import (
	"context"
	"sync"
	"time"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
)

// MockRequestStore is a map-backed store whose methods can be overridden per test.
type MockRequestStore struct {
	mu       sync.RWMutex
	requests map[int64]*domain.ConsultationRequest
	nextID   int64

	CreateFn       func(ctx context.Context, month string, year int) (*domain.ConsultationRequest, error)
	UpdateStatusFn func(ctx context.Context, id int64, status domain.RequestStatus) error
}

func NewMockRequestStore() *MockRequestStore {
	return &MockRequestStore{
		requests: make(map[int64]*domain.ConsultationRequest),
	}
}

func (m *MockRequestStore) Create(ctx context.Context, month string, year int) (*domain.ConsultationRequest, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, month, year)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	req := domain.NewConsultationRequest(m.nextID, month, year, time.Now())
	m.requests[req.ID] = req
	return req.Clone(), nil
}

func (m *MockRequestStore) Get(ctx context.Context, id int64) (*domain.ConsultationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if req, ok := m.requests[id]; ok {
		return req.Clone(), nil
	}
	return nil, domain.ErrRequestNotFound
}

func (m *MockRequestStore) List(ctx context.Context) ([]*domain.ConsultationRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.ConsultationRequest, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, req.Clone())
	}
	return out, nil
}

func (m *MockRequestStore) UpdateStatus(ctx context.Context, id int64, status domain.RequestStatus) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil
	}
	return req.TransitionTo(status)
}

func (m *MockRequestStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}
