package payments

import (
	"fmt"

	"github.com/Dosada05/medcamp/config"
	"github.com/Dosada05/medcamp/payments/stripe"
	"github.com/Dosada05/medcamp/payments/stub"
)

func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.PaymentProvider {
	case config.PaymentProviderStub:
		return stub.New(), nil
	case config.PaymentProviderStripe:
		return stripe.New(cfg.StripeSecretKey), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.PaymentProvider)
	}
}
