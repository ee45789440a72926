package payments

import (
	"context"

	"github.com/Dosada05/medcamp/models"
)

type Provider interface {
	Name() string

	// Создает платежное намерение на сумму в минимальных единицах валюты.
	// Возвращает идентификатор платежа и client secret для фронтенда.
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string) (id string, clientSecret string, err error)

	// Возвращает состояние платежа: завершен ли он, на какую сумму и в какой валюте.
	// Неизвестный идентификатор - не ошибка, а Succeeded == false.
	VerifyPayment(ctx context.Context, reference string) (models.PaymentVerification, error)
}
