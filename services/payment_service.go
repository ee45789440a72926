package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/payments"
	"github.com/Dosada05/medcamp/repositories"
)

// PaymentIntent - данные, нужные клиенту для проведения платежа.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Provider     string `json:"provider"`
}

type PaymentService interface {
	// CreateIntent создает платеж на сумму взноса лагеря. Ничего не сохраняет.
	CreateIntent(ctx context.Context, caller *models.Caller, campID string) (*PaymentIntent, error)
}

type paymentService struct {
	provider payments.Provider
	camps    repositories.CampRepository
	currency string
	logger   *slog.Logger
}

func NewPaymentService(provider payments.Provider, camps repositories.CampRepository, currency string, logger *slog.Logger) PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &paymentService{provider: provider, camps: camps, currency: currency, logger: logger}
}

func (s *paymentService) CreateIntent(ctx context.Context, caller *models.Caller, campID string) (*PaymentIntent, error) {
	if err := Authorize(caller, Authenticated); err != nil {
		return nil, err
	}

	camp, err := s.camps.GetByID(ctx, campID)
	if err != nil {
		return nil, translateRepoError("load camp", err)
	}

	amount := toMinorUnits(camp.Fees)
	if amount <= 0 {
		return nil, validationError("camp %s has no fee to pay", camp.ID)
	}

	id, secret, err := s.provider.CreatePaymentIntent(ctx, amount, s.currency)
	if err != nil {
		s.logger.ErrorContext(ctx, "payment intent failed",
			slog.String("provider", s.provider.Name()), slog.String("camp_id", campID), slog.Any("error", err))
		return nil, fmt.Errorf("create payment intent: %w: %w", ErrUpstreamFailure, err)
	}

	return &PaymentIntent{
		ID:           id,
		ClientSecret: secret,
		Amount:       amount,
		Currency:     s.currency,
		Provider:     s.provider.Name(),
	}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
