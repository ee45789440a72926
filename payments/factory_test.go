package payments

import (
	"testing"

	"github.com/Dosada05/medcamp/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(&config.Config{PaymentProvider: config.PaymentProviderStub})
	require.NoError(t, err)
	assert.Equal(t, "stub", p.Name())

	p, err = NewProvider(&config.Config{PaymentProvider: config.PaymentProviderStripe, StripeSecretKey: "sk_test_x"})
	require.NoError(t, err)
	assert.Equal(t, "stripe", p.Name())

	_, err = NewProvider(&config.Config{PaymentProvider: "paypal"})
	assert.Error(t, err)
}
