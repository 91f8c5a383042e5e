package service

import (
	"context"

	"github.com/DanielPopoola/consultation-relay/internal/core/domain"
	"github.com/DanielPopoola/consultation-relay/internal/core/ports"
)

type ConsultationQueryService struct {
	store ports.RequestStore
}

func NewConsultationQueryService(store ports.RequestStore) *ConsultationQueryService {
	return &ConsultationQueryService{
		store: store,
	}
}

func (s *ConsultationQueryService) History(ctx context.Context) ([]*domain.ConsultationRequest, error) {
	return s.store.List(ctx)
}

func (s *ConsultationQueryService) FindByID(ctx context.Context, id int64) (*domain.ConsultationRequest, error) {
	return s.store.Get(ctx, id)
}
