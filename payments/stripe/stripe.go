package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/Dosada05/medcamp/models"
)

// Provider creates and checks Stripe payment intents.
type Provider struct {
	api *client.API
}

func New(secretKey string) *Provider {
	return &Provider{api: client.New(secretKey, nil)}
}

func (p *Provider) Name() string { return "stripe" }

func (p *Provider) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string) (string, string, error) {
	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(amountMinor),
		Currency: stripego.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return pi.ID, pi.ClientSecret, nil
}

func (p *Provider) VerifyPayment(ctx context.Context, reference string) (models.PaymentVerification, error) {
	if reference == "" {
		return models.PaymentVerification{}, nil
	}
	params := &stripego.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Get(reference, params)
	if err != nil {
		var stripeErr *stripego.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripego.ErrorCodeResourceMissing {
			return models.PaymentVerification{}, nil
		}
		return models.PaymentVerification{}, fmt.Errorf("stripe: get payment intent: %w", err)
	}
	return models.PaymentVerification{
		Succeeded:   pi.Status == stripego.PaymentIntentStatusSucceeded,
		AmountMinor: pi.Amount,
		Currency:    string(pi.Currency),
	}, nil
}
