package notify

import (
	"context"
	"time"

	"github.com/Dosada05/medcamp/models"
)

type EventType string

const (
	RegistrationCreated   EventType = "registration.created"
	RegistrationPaid      EventType = "registration.paid"
	RegistrationConfirmed EventType = "registration.confirmed"
	RegistrationWithdrawn EventType = "registration.withdrawn"
	RegistrationRemoved   EventType = "registration.removed"
)

// Event describes a committed change to a registration.
type Event struct {
	Type               EventType                 `json:"type"`
	RegistrationID     string                    `json:"registration_id"`
	CampID             string                    `json:"camp_id"`
	CampName           string                    `json:"camp_name,omitempty"`
	CampFees           float64                   `json:"camp_fees,omitempty"`
	ParticipantCount   int                       `json:"participant_count"`
	ParticipantEmail   string                    `json:"participant_email"`
	ParticipantName    string                    `json:"participant_name"`
	ConfirmationStatus models.ConfirmationStatus `json:"confirmation_status"`
	PaymentStatus      models.PaymentStatus      `json:"payment_status"`
	TransactionID      string                    `json:"transaction_id,omitempty"`
	OccurredAt         time.Time                 `json:"occurred_at"`
}

// NewRegistrationEvent builds an event from the registration and, when known, its camp.
func NewRegistrationEvent(t EventType, reg *models.Registration, camp *models.Camp) Event {
	e := Event{
		Type:               t,
		RegistrationID:     reg.ID,
		CampID:             reg.CampID,
		ParticipantEmail:   reg.ParticipantEmail,
		ParticipantName:    reg.ParticipantName,
		ConfirmationStatus: reg.ConfirmationStatus,
		PaymentStatus:      reg.PaymentStatus,
		OccurredAt:         time.Now().UTC(),
	}
	if reg.TransactionID != nil {
		e.TransactionID = *reg.TransactionID
	}
	if camp != nil {
		e.CampName = camp.Name
		e.CampFees = camp.Fees
		e.ParticipantCount = camp.ParticipantCount
	}
	return e
}

type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, e Event) error

func (f NotifierFunc) Notify(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Nop discards every event.
var Nop Notifier = NotifierFunc(func(context.Context, Event) error { return nil })
