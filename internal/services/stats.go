package service

import (
	"context"

	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	repository "github.com/shopworks/storefront/internal/repositories"
)

type StatsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) *StatsService {
	return &StatsService{repo: repo}
}

const dashboardWindowDays = 30

func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {

	stats, err := s.repo.GetDashboardStats(ctx, dashboardWindowDays)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load dashboard stats").WithError(err)
	}

	return stats, nil
}
