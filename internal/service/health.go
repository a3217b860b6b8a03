package service

import (
	"context"

	"go.uber.org/zap"
)

type HealthRepository interface {
	IsOK(ctx context.Context) error
}

type HealthService struct {
	log        *zap.Logger
	healthRepo HealthRepository
}

func NewHealthService(log *zap.Logger, healthRepo HealthRepository) *HealthService {
	return &HealthService{
		log:        log,
		healthRepo: healthRepo,
	}
}

func (s *HealthService) IsOK(ctx context.Context) error {
	if err := s.healthRepo.IsOK(ctx); err != nil {
		s.log.Warn("database health check failed", zap.Error(err))
		return err
	}

	return nil
}
