package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/medcamp/models"
)

func TestFeedbackService_Submit(t *testing.T) {
	store := newMemStore()
	store.addCamp(models.Camp{ID: "camp-a", Name: "Camp A"})
	store.addUser(models.User{Email: "ann@example.com", Name: "Ann", Photo: "https://img/ann.png"})
	svc := NewFeedbackService(memFeedback{store}, memCamps{store}, memUsers{store})
	ctx := context.Background()

	fb, err := svc.Submit(ctx, participant("ann@example.com"), FeedbackInput{CampID: "camp-a", Rating: 5, Feedback: " Great care "})
	require.NoError(t, err)
	assert.Equal(t, "Ann", fb.ParticipantName)
	assert.Equal(t, "https://img/ann.png", fb.ParticipantImage)
	assert.Equal(t, "Great care", fb.Feedback)
	assert.False(t, fb.Date.IsZero())

	// Duplicate submissions are allowed.
	_, err = svc.Submit(ctx, participant("ann@example.com"), FeedbackInput{CampID: "camp-a", Rating: 4, Feedback: "Again"})
	require.NoError(t, err)

	items, err := svc.ListByCamp(ctx, "camp-a")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	tests := []struct {
		name    string
		caller  *models.Caller
		input   FeedbackInput
		wantErr error
	}{
		{name: "anonymous", input: FeedbackInput{CampID: "camp-a", Rating: 5, Feedback: "x"}, wantErr: ErrUnauthenticated},
		{name: "rating too high", caller: participant("ann@example.com"), input: FeedbackInput{CampID: "camp-a", Rating: 6, Feedback: "x"}, wantErr: ErrValidationFailed},
		{name: "empty text", caller: participant("ann@example.com"), input: FeedbackInput{CampID: "camp-a", Rating: 3}, wantErr: ErrValidationFailed},
		{name: "unknown camp", caller: participant("ann@example.com"), input: FeedbackInput{CampID: "zzz", Rating: 3, Feedback: "x"}, wantErr: ErrCampNotFound},
		{name: "unknown user", caller: participant("ghost@example.com"), input: FeedbackInput{CampID: "camp-a", Rating: 3, Feedback: "x"}, wantErr: ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.caller, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type mockProvider struct {
	CreateFunc func(ctx context.Context, amount int64, currency string) (string, string, error)
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, string, error) {
	return m.CreateFunc(ctx, amount, currency)
}

func (m *mockProvider) VerifyPayment(ctx context.Context, ref string) (models.PaymentVerification, error) {
	return models.PaymentVerification{}, nil
}

func TestPaymentService_CreateIntent(t *testing.T) {
	store := newMemStore()
	store.addCamp(models.Camp{ID: "camp-a", Fees: 49.99})
	store.addCamp(models.Camp{ID: "free", Fees: 0})
	ctx := context.Background()

	var gotAmount int64
	provider := &mockProvider{CreateFunc: func(ctx context.Context, amount int64, currency string) (string, string, error) {
		gotAmount = amount
		return "pi_1", "pi_1_secret", nil
	}}
	svc := NewPaymentService(provider, memCamps{store}, "usd", nil)

	intent, err := svc.CreateIntent(ctx, participant("ann@example.com"), "camp-a")
	require.NoError(t, err)
	assert.Equal(t, int64(4999), gotAmount)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, "mock", intent.Provider)

	_, err = svc.CreateIntent(ctx, nil, "camp-a")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CreateIntent(ctx, participant("ann@example.com"), "free")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.CreateIntent(ctx, participant("ann@example.com"), "missing")
	assert.ErrorIs(t, err, ErrCampNotFound)

	failing := NewPaymentService(&mockProvider{CreateFunc: func(context.Context, int64, string) (string, string, error) {
		return "", "", errors.New("card network down")
	}}, memCamps{store}, "usd", nil)
	_, err = failing.CreateIntent(ctx, participant("ann@example.com"), "camp-a")
	assert.ErrorIs(t, err, ErrUpstreamFailure)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(5000), toMinorUnits(50))
	assert.Equal(t, int64(1999), toMinorUnits(19.99))
	assert.Equal(t, int64(10), toMinorUnits(0.1))
}

func TestDashboardService_GetStats(t *testing.T) {
	store := newMemStore()
	store.addCamp(models.Camp{ID: "camp-a", Fees: 50})
	store.addCamp(models.Camp{ID: "camp-b", Fees: 20})
	store.addUser(models.User{Email: "ann@example.com"})
	ledger := NewRegistrationLedger(memRegistrations{store}, memCamps{store}, nil, "usd", nil, nil, nil)
	ctx := context.Background()

	ann := participant("ann@example.com")
	reg, err := ledger.Register(ctx, ann, "camp-a", ann.Email, validDetails())
	require.NoError(t, err)
	_, err = ledger.Register(ctx, ann, "camp-b", ann.Email, validDetails())
	require.NoError(t, err)
	_, err = ledger.ConfirmPayment(ctx, ann, "camp-a", "pi")
	require.NoError(t, err)
	_, err = ledger.ConfirmRegistration(ctx, organizer(), reg.ID, ann.Email, models.ConfirmationConfirmed)
	require.NoError(t, err)

	svc := NewDashboardService(memUsers{store}, memCamps{store}, memRegistrations{store})
	stats, err := svc.GetStats(ctx, organizer())
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{
		UsersTotal:             1,
		CampsTotal:             2,
		RegistrationsTotal:     2,
		PaidRegistrations:      1,
		ConfirmedRegistrations: 1,
		FeesCollected:          50,
	}, stats)

	_, err = svc.GetStats(ctx, ann)
	assert.ErrorIs(t, err, ErrForbidden)
}
