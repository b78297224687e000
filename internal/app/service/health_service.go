package service

import (
	"github.com/petmarket/petmarket-backend/internal/app/model"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
)

const (
	defaultLogLimit = 200
	maxLogLimit     = 1000
)

type HealthService interface {
	RecentLogs(serviceName string, limit int) ([]model.HealthCheck, error)
	Series(serviceName string, limit int) ([]model.HealthCheck, error)
}

type healthService struct {
	healthRepo repository.HealthRepository
}

func NewHealthService(healthRepo repository.HealthRepository) HealthService {
	return &healthService{healthRepo: healthRepo}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLogLimit
	}
	if limit > maxLogLimit {
		return maxLogLimit
	}
	return limit
}

// RecentLogs returns probe outcomes newest first.
func (s *healthService) RecentLogs(serviceName string, limit int) ([]model.HealthCheck, error) {
	checks, err := s.healthRepo.FindRecent(serviceName, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	if checks == nil {
		checks = []model.HealthCheck{}
	}
	return checks, nil
}

// Series returns the same window as RecentLogs but oldest first, the
// order charts consume.
func (s *healthService) Series(serviceName string, limit int) ([]model.HealthCheck, error) {
	checks, err := s.RecentLogs(serviceName, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(checks)-1; i < j; i, j = i+1, j-1 {
		checks[i], checks[j] = checks[j], checks[i]
	}
	return checks, nil
}
