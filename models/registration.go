package models

import "time"

type ConfirmationStatus string

const (
	ConfirmationPending    ConfirmationStatus = "Pending"
	ConfirmationProcessing ConfirmationStatus = "Processing"
	ConfirmationConfirmed  ConfirmationStatus = "Confirmed"
)

type PaymentStatus string

const (
	PaymentPay  PaymentStatus = "Pay"
	PaymentPaid PaymentStatus = "Paid"
)

// Registration - заявка участника на конкретный лагерь.
type Registration struct {
	ID                 string             `json:"id" bson:"_id"`
	CampID             string             `json:"camp_id" bson:"campId"`
	ParticipantEmail   string             `json:"participant_email" bson:"participantEmail"`
	ParticipantName    string             `json:"participant_name" bson:"participantName"`
	Age                int                `json:"age" bson:"age"`
	PhoneNumber        string             `json:"phone_number" bson:"phoneNumber"`
	Gender             string             `json:"gender" bson:"gender"`
	EmergencyContact   string             `json:"emergency_contact" bson:"emergencyContact"`
	ConfirmationStatus ConfirmationStatus `json:"confirmation_status" bson:"confirmationStatus"`
	PaymentStatus      PaymentStatus      `json:"payment_status" bson:"paymentStatus"`
	TransactionID      *string            `json:"transaction_id,omitempty" bson:"transactionId,omitempty"`
	PaidAt             *time.Time         `json:"paid_at,omitempty" bson:"paidAt,omitempty"`
	CreatedAt          time.Time          `json:"created_at" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updatedAt"`
}

func (r *Registration) IsPaid() bool {
	return r.PaymentStatus == PaymentPaid
}

// RegistrationDetails - данные, которые участник заполняет в форме регистрации.
type RegistrationDetails struct {
	ParticipantName  string `json:"participant_name"`
	Age              int    `json:"age"`
	PhoneNumber      string `json:"phone_number"`
	Gender           string `json:"gender"`
	EmergencyContact string `json:"emergency_contact"`
}

// RegistrationWithCamp is a registration joined with the camp it belongs to.
type RegistrationWithCamp struct {
	Registration `bson:",inline"`
	Camp         Camp `json:"camp" bson:"camp"`
}

type PaidRegistrationsFilter struct {
	Search string
	Limit  int
	Offset int
}

type RegistrationPage struct {
	Registrations []RegistrationWithCamp `json:"registrations"`
	TotalCount    int                    `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
}

type CountDirection string

const (
	CountIncrease CountDirection = "increase"
	CountDecrease CountDirection = "decrease"
)

func (d CountDirection) Delta() (int, bool) {
	switch d {
	case CountIncrease:
		return 1, true
	case CountDecrease:
		return -1, true
	}
	return 0, false
}
