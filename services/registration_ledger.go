package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/notify"
	"github.com/Dosada05/medcamp/repositories"
	"github.com/Dosada05/medcamp/storage"
)

const notifyTimeout = 5 * time.Second

// PaymentVerifier запрашивает у платежного провайдера состояние платежа.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, reference string) (models.PaymentVerification, error)
}

// RegistrationLedger ведет заявки на лагеря: одна заявка на пару (лагерь, участник),
// оплата с подтверждением и счетчик участников.
type RegistrationLedger interface {
	Register(ctx context.Context, caller *models.Caller, campID, participantEmail string, details models.RegistrationDetails) (*models.Registration, error)
	// ConfirmPayment отмечает заявку вызывающего как оплаченную. Платеж должен быть
	// проведен на сумму взноса лагеря; для бесплатного лагеря проверка не нужна.
	// Повторный вызов для оплаченной заявки возвращает ее без изменений.
	ConfirmPayment(ctx context.Context, caller *models.Caller, campID, paymentRef string) (*models.Registration, error)
	// ConfirmRegistration принимает только models.ConfirmationConfirmed.
	ConfirmRegistration(ctx context.Context, caller *models.Caller, registrationID, participantEmail string, target models.ConfirmationStatus) (*models.Registration, error)
	AdjustParticipantCount(ctx context.Context, caller *models.Caller, campID string, direction models.CountDirection) (*models.Camp, error)
	// RecountParticipants выставляет счетчик по числу существующих заявок.
	RecountParticipants(ctx context.Context, caller *models.Caller, campID string) (*models.Camp, error)
	WithdrawRegistration(ctx context.Context, caller *models.Caller, campID string) error
	AdminDeleteRegistration(ctx context.Context, caller *models.Caller, registrationID string) error
	ListPaidRegistrations(ctx context.Context, caller *models.Caller, search string, page, limit int) (*models.RegistrationPage, error)
	ListRegistrationsByParticipant(ctx context.Context, caller *models.Caller, email string) ([]models.RegistrationWithCamp, error)
	GetOwnRegistration(ctx context.Context, caller *models.Caller, campID string) (*models.Registration, error)
}

type registrationLedger struct {
	registrations repositories.RegistrationRepository
	camps         repositories.CampRepository
	verifier      PaymentVerifier
	currency      string
	notifier      notify.Notifier
	uploader      storage.FileUploader
	logger        *slog.Logger
	now           func() time.Time
}

// NewRegistrationLedger собирает реестр заявок. verifier, notifier и uploader могут быть nil.
// Пустая currency отключает сверку валюты.
func NewRegistrationLedger(
	registrations repositories.RegistrationRepository,
	camps repositories.CampRepository,
	verifier PaymentVerifier,
	currency string,
	notifier notify.Notifier,
	uploader storage.FileUploader,
	logger *slog.Logger,
) RegistrationLedger {
	if notifier == nil {
		notifier = notify.Nop
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &registrationLedger{
		registrations: registrations,
		camps:         camps,
		verifier:      verifier,
		currency:      strings.ToLower(strings.TrimSpace(currency)),
		notifier:      notifier,
		uploader:      uploader,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (l *registrationLedger) Register(ctx context.Context, caller *models.Caller, campID, participantEmail string, details models.RegistrationDetails) (*models.Registration, error) {
	participantEmail = normalizeEmail(participantEmail)
	if err := Authorize(caller, SelfOwner(participantEmail)); err != nil {
		return nil, err
	}
	details, err := validateRegistrationDetails(details)
	if err != nil {
		return nil, err
	}

	if _, err := l.camps.GetByID(ctx, campID); err != nil {
		return nil, translateRepoError("load camp", err)
	}

	now := l.now()
	reg := &models.Registration{
		ID:                 uuid.NewString(),
		CampID:             campID,
		ParticipantEmail:   participantEmail,
		ParticipantName:    details.ParticipantName,
		Age:                details.Age,
		PhoneNumber:        details.PhoneNumber,
		Gender:             details.Gender,
		EmergencyContact:   details.EmergencyContact,
		ConfirmationStatus: models.ConfirmationPending,
		PaymentStatus:      models.PaymentPay,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Уникальность (campId, email) и счетчик обеспечиваются хранилищем атомарно.
	if err := l.registrations.Create(ctx, reg); err != nil {
		return nil, translateRepoError("create registration", err)
	}

	l.logger.InfoContext(ctx, "registration created",
		slog.String("registration_id", reg.ID), slog.String("camp_id", campID), slog.String("participant", participantEmail))
	l.publish(ctx, notify.RegistrationCreated, reg)
	return reg, nil
}

func (l *registrationLedger) ConfirmPayment(ctx context.Context, caller *models.Caller, campID, paymentRef string) (*models.Registration, error) {
	if err := Authorize(caller, Authenticated); err != nil {
		return nil, err
	}

	reg, err := l.ownRegistration(ctx, caller, campID)
	if err != nil {
		return nil, err
	}
	if reg.IsPaid() {
		return reg, nil
	}

	camp, err := l.camps.GetByID(ctx, reg.CampID)
	if err != nil {
		return nil, translateRepoError("load camp", err)
	}

	txID, err := l.verifyPayment(ctx, camp, strings.TrimSpace(paymentRef))
	if err != nil {
		return nil, err
	}

	marked, err := l.registrations.MarkPaid(ctx, reg.ID, txID, l.now())
	if err != nil {
		return nil, translateRepoError("mark registration paid", err)
	}

	// Перечитываем: параллельный вызов мог оплатить раньше, результат тот же.
	updated, err := l.registrations.FindByID(ctx, reg.ID)
	if err != nil {
		return nil, translateRepoError("reload registration", err)
	}
	if !updated.IsPaid() {
		return nil, fmt.Errorf("%w: registration %s was not marked paid", ErrUpstreamFailure, reg.ID)
	}

	if marked {
		l.logger.InfoContext(ctx, "registration paid", slog.String("registration_id", reg.ID), slog.String("camp_id", campID))
		l.publish(ctx, notify.RegistrationPaid, updated)
	}
	return updated, nil
}

// verifyPayment возвращает идентификатор транзакции для записи в заявку.
// Бесплатный лагерь не требует платежа, и транзакция не записывается.
func (l *registrationLedger) verifyPayment(ctx context.Context, camp *models.Camp, paymentRef string) (*string, error) {
	due := toMinorUnits(camp.Fees)
	if due == 0 {
		return nil, nil
	}

	if l.verifier != nil {
		if paymentRef == "" {
			return nil, validationError("payment reference is required")
		}
		v, err := l.verifier.VerifyPayment(ctx, paymentRef)
		if err != nil {
			return nil, fmt.Errorf("verify payment: %w: %w", ErrUpstreamFailure, err)
		}
		if !v.Succeeded {
			return nil, ErrPaymentNotVerified
		}
		if v.AmountMinor != due || (l.currency != "" && !strings.EqualFold(v.Currency, l.currency)) {
			l.logger.WarnContext(ctx, "payment does not match camp fee",
				slog.String("camp_id", camp.ID), slog.Int64("due", due), slog.Int64("paid", v.AmountMinor),
				slog.String("currency", v.Currency))
			return nil, ErrPaymentMismatch
		}
	}

	if paymentRef == "" {
		return nil, nil
	}
	return &paymentRef, nil
}

func (l *registrationLedger) ConfirmRegistration(ctx context.Context, caller *models.Caller, registrationID, participantEmail string, target models.ConfirmationStatus) (*models.Registration, error) {
	if err := Authorize(caller, Organizer); err != nil {
		return nil, err
	}
	if target != models.ConfirmationConfirmed {
		return nil, fmt.Errorf("%w: unsupported target status %q", ErrInvalidTransition, target)
	}

	reg, err := l.registrations.FindByIDAndParticipant(ctx, registrationID, normalizeEmail(participantEmail))
	if err != nil {
		return nil, translateRepoError("load registration", err)
	}

	switch {
	case reg.ConfirmationStatus == models.ConfirmationConfirmed:
		return reg, nil
	case !reg.IsPaid():
		return nil, fmt.Errorf("%w: registration has not been paid", ErrInvalidTransition)
	}

	ok, err := l.registrations.MarkConfirmed(ctx, reg.ID, l.now())
	if err != nil {
		return nil, translateRepoError("confirm registration", err)
	}

	updated, err := l.registrations.FindByID(ctx, reg.ID)
	if err != nil {
		return nil, translateRepoError("reload registration", err)
	}
	if updated.ConfirmationStatus != models.ConfirmationConfirmed {
		return nil, fmt.Errorf("%w: registration is %s", ErrInvalidTransition, updated.ConfirmationStatus)
	}

	if ok {
		l.logger.InfoContext(ctx, "registration confirmed",
			slog.String("registration_id", reg.ID), slog.String("organizer", caller.Email))
		l.publish(ctx, notify.RegistrationConfirmed, updated)
	}
	return updated, nil
}

func (l *registrationLedger) AdjustParticipantCount(ctx context.Context, caller *models.Caller, campID string, direction models.CountDirection) (*models.Camp, error) {
	if err := Authorize(caller, Organizer); err != nil {
		return nil, err
	}
	delta, ok := direction.Delta()
	if !ok {
		return nil, validationError("direction must be %q or %q", models.CountIncrease, models.CountDecrease)
	}

	camp, err := l.camps.AdjustParticipantCount(ctx, campID, delta)
	if err != nil {
		return nil, translateRepoError("adjust participant count", err)
	}
	populateCampImageURL(camp, l.uploader)
	return camp, nil
}

func (l *registrationLedger) RecountParticipants(ctx context.Context, caller *models.Caller, campID string) (*models.Camp, error) {
	if err := Authorize(caller, Organizer); err != nil {
		return nil, err
	}

	count, err := l.registrations.CountByCamp(ctx, campID)
	if err != nil {
		return nil, translateRepoError("count registrations", err)
	}
	camp, err := l.camps.SetParticipantCount(ctx, campID, count)
	if err != nil {
		return nil, translateRepoError("set participant count", err)
	}
	populateCampImageURL(camp, l.uploader)
	return camp, nil
}

func (l *registrationLedger) WithdrawRegistration(ctx context.Context, caller *models.Caller, campID string) error {
	if err := Authorize(caller, Authenticated); err != nil {
		return err
	}

	deleted, err := l.registrations.DeleteByCampAndParticipant(ctx, campID, caller.Email)
	if err != nil {
		return translateRepoError("withdraw registration", err)
	}
	if deleted != nil {
		l.logger.InfoContext(ctx, "registration withdrawn", slog.String("registration_id", deleted.ID), slog.String("camp_id", campID))
		l.publish(ctx, notify.RegistrationWithdrawn, deleted)
	}
	return nil
}

func (l *registrationLedger) AdminDeleteRegistration(ctx context.Context, caller *models.Caller, registrationID string) error {
	if err := Authorize(caller, Organizer); err != nil {
		return err
	}

	deleted, err := l.registrations.DeleteByID(ctx, registrationID)
	if err != nil {
		return translateRepoError("delete registration", err)
	}
	if deleted != nil {
		l.logger.InfoContext(ctx, "registration removed",
			slog.String("registration_id", deleted.ID), slog.String("organizer", caller.Email))
		l.publish(ctx, notify.RegistrationRemoved, deleted)
	}
	return nil
}

func (l *registrationLedger) ListPaidRegistrations(ctx context.Context, caller *models.Caller, search string, page, limit int) (*models.RegistrationPage, error) {
	if err := Authorize(caller, Organizer); err != nil {
		return nil, err
	}

	page, limit, offset := normalizePage(page, limit)
	filter := models.PaidRegistrationsFilter{Search: strings.TrimSpace(search), Limit: limit, Offset: offset}

	var (
		items []models.RegistrationWithCamp
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = l.registrations.ListPaid(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = l.registrations.CountPaid(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translateRepoError("list paid registrations", err)
	}

	for i := range items {
		populateCampImageURL(&items[i].Camp, l.uploader)
	}
	return &models.RegistrationPage{Registrations: items, TotalCount: total, Page: page, Limit: limit}, nil
}

func (l *registrationLedger) ListRegistrationsByParticipant(ctx context.Context, caller *models.Caller, email string) ([]models.RegistrationWithCamp, error) {
	email = normalizeEmail(email)
	if err := Authorize(caller, AnyOf(SelfOwner(email), Organizer)); err != nil {
		return nil, err
	}

	items, err := l.registrations.ListByParticipant(ctx, email)
	if err != nil {
		return nil, translateRepoError("list participant registrations", err)
	}
	for i := range items {
		populateCampImageURL(&items[i].Camp, l.uploader)
	}
	return items, nil
}

func (l *registrationLedger) GetOwnRegistration(ctx context.Context, caller *models.Caller, campID string) (*models.Registration, error) {
	if err := Authorize(caller, Authenticated); err != nil {
		return nil, err
	}
	return l.ownRegistration(ctx, caller, campID)
}

func (l *registrationLedger) ownRegistration(ctx context.Context, caller *models.Caller, campID string) (*models.Registration, error) {
	reg, err := l.registrations.FindByCampAndParticipant(ctx, campID, caller.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, translateRepoError("load registration", err)
	}
	return reg, nil
}

// publish отправляет событие после записи изменения. Ошибки доставки только
// логируются и изменение не откатывают.
func (l *registrationLedger) publish(ctx context.Context, t notify.EventType, reg *models.Registration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	camp, err := l.camps.GetByID(ctx, reg.CampID)
	if err != nil {
		camp = nil
	}
	if err := l.notifier.Notify(ctx, notify.NewRegistrationEvent(t, reg, camp)); err != nil {
		l.logger.WarnContext(ctx, "registration event delivery failed",
			slog.String("event", string(t)), slog.String("registration_id", reg.ID), slog.Any("error", err))
	}
}

func validateRegistrationDetails(d models.RegistrationDetails) (models.RegistrationDetails, error) {
	d.ParticipantName = strings.TrimSpace(d.ParticipantName)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	d.Gender = strings.TrimSpace(d.Gender)
	d.EmergencyContact = strings.TrimSpace(d.EmergencyContact)

	switch {
	case d.ParticipantName == "":
		return d, validationError("participant name is required")
	case d.Age <= 0 || d.Age > 130:
		return d, validationError("age must be between 1 and 130")
	case d.PhoneNumber == "":
		return d, validationError("phone number is required")
	case d.Gender == "":
		return d, validationError("gender is required")
	case d.EmergencyContact == "":
		return d, validationError("emergency contact is required")
	}
	return d, nil
}
