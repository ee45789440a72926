package stub

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Dosada05/medcamp/models"
)

// Stub provider:
// - CreatePaymentIntent: выдает идентификатор pi_stub_<uuid> и считает платеж сразу проведенным
// - VerifyPayment: знает только намерения, созданные этим процессом, и возвращает их сумму и валюту

const refPrefix = "pi_stub_"

type intent struct {
	amountMinor int64
	currency    string
}

type Provider struct {
	mu      sync.Mutex
	intents map[string]intent
}

func New() *Provider {
	return &Provider{intents: make(map[string]intent)}
}

func (p *Provider) Name() string { return "stub" }

func (p *Provider) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string) (string, string, error) {
	if amountMinor < 0 {
		return "", "", errors.New("amount must not be negative")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return "", "", errors.New("currency is required")
	}
	id := refPrefix + uuid.NewString()

	p.mu.Lock()
	p.intents[id] = intent{amountMinor: amountMinor, currency: currency}
	p.mu.Unlock()

	return id, id + "_secret_" + currency, nil
}

func (p *Provider) VerifyPayment(ctx context.Context, reference string) (models.PaymentVerification, error) {
	p.mu.Lock()
	in, ok := p.intents[reference]
	p.mu.Unlock()
	if !ok {
		return models.PaymentVerification{}, nil
	}
	return models.PaymentVerification{Succeeded: true, AmountMinor: in.amountMinor, Currency: in.currency}, nil
}
