package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/repositories"
)

// DashboardService считает сводку для панели организатора.
type DashboardService interface {
	GetStats(ctx context.Context, caller *models.Caller) (models.DashboardStats, error)
}

type dashboardService struct {
	userRepo         repositories.UserRepository
	campRepo         repositories.CampRepository
	registrationRepo repositories.RegistrationRepository
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	campRepo repositories.CampRepository,
	registrationRepo repositories.RegistrationRepository,
) DashboardService {
	return &dashboardService{
		userRepo:         userRepo,
		campRepo:         campRepo,
		registrationRepo: registrationRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context, caller *models.Caller) (models.DashboardStats, error) {
	if err := Authorize(caller, Organizer); err != nil {
		return models.DashboardStats{}, err
	}

	var (
		usersTotal int
		campsTotal int
		regStats   models.RegistrationStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		usersTotal, err = s.userRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		campsTotal, err = s.campRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		regStats, err = s.registrationRepo.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, translateRepoError("load dashboard stats", err)
	}

	return models.DashboardStats{
		UsersTotal:             usersTotal,
		CampsTotal:             campsTotal,
		RegistrationsTotal:     regStats.Total,
		PaidRegistrations:      regStats.Paid,
		ConfirmedRegistrations: regStats.Confirmed,
		FeesCollected:          regStats.FeesCollected,
	}, nil
}
