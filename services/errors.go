package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки аутентификации и авторизации
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("operation not allowed for the current user")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки, специфичные для сущностей. errors.Is(err, ErrNotFound) для них истинно.
	ErrCampNotFound         = kindError("camp not found", ErrNotFound)
	ErrRegistrationNotFound = kindError("registration not found", ErrNotFound)
	ErrUserNotFound         = kindError("user not found", ErrNotFound)
	ErrNotRegistered        = kindError("caller is not registered for this camp", ErrNotFound)

	// Ошибки конфликтов и бизнес-правил
	ErrDuplicateRegistration  = errors.New("participant is already registered for this camp")
	ErrInvalidTransition      = errors.New("invalid registration status transition")
	ErrInvalidCountAdjustment = errors.New("participant count cannot go below zero")
	ErrPaymentNotVerified     = errors.New("payment has not been completed")
	ErrPaymentMismatch        = kindError("payment amount or currency does not match the camp fee", ErrPaymentNotVerified)
	ErrPaymentReused          = kindError("payment reference is already used by another registration", ErrPaymentNotVerified)

	// Ошибки валидации
	ErrValidationFailed = errors.New("validation failed")

	// Хранилище или внешний сервис недоступны либо вернули ошибку
	ErrUpstreamFailure = errors.New("upstream service failure")
	ErrUploadsDisabled = kindError("file uploads are not configured", ErrUpstreamFailure)
)

type kindErr struct {
	msg  string
	kind error
}

func (e *kindErr) Error() string { return e.msg }
func (e *kindErr) Unwrap() error { return e.kind }

func kindError(msg string, kind error) error {
	return &kindErr{msg: msg, kind: kind}
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
