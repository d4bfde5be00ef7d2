package service

import (
	"context"

	"gitlab.com/agentlink-marketplace/attribution_api/config"
	"gitlab.com/agentlink-marketplace/attribution_api/queries"
	"gitlab.com/agentlink-marketplace/attribution_api/service/payments"
)

// Service structure
type Service struct {
	ctx     context.Context
	cfg     config.Config
	repo    *queries.Repo
	payouts *payments.Dispatcher
}

// NewService constructor
func NewService(ctx context.Context, cfg config.Config, repo *queries.Repo, payouts *payments.Dispatcher) *Service {
	return &Service{
		ctx:     ctx,
		cfg:     cfg,
		repo:    repo,
		payouts: payouts,
	}
}

// GetRepo godoc
func (service *Service) GetRepo() *queries.Repo {
	return service.repo
}
