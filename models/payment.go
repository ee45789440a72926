package models

// PaymentVerification - состояние платежа у провайдера. Сумма в минимальных единицах валюты.
type PaymentVerification struct {
	Succeeded   bool
	AmountMinor int64
	Currency    string
}
