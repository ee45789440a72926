package models

import "time"

// Camp представляет медицинский лагерь.
type Camp struct {
	ID                     string    `json:"id" bson:"_id"`
	Name                   string    `json:"name" bson:"name"`
	Description            string    `json:"description" bson:"description"`
	Location               string    `json:"location" bson:"location"`
	Date                   time.Time `json:"date" bson:"date"`
	Fees                   float64   `json:"fees" bson:"fees"`
	HealthcareProfessional string    `json:"healthcare_professional" bson:"healthcareProfessional"`
	ParticipantCount       int       `json:"participant_count" bson:"participantCount"`
	OrganizerEmail         string    `json:"organizer_email" bson:"organizerEmail"`
	ImageKey               *string   `json:"-" bson:"imageKey,omitempty"`
	ImageURL               *string   `json:"image_url,omitempty" bson:"-"`
	CreatedAt              time.Time `json:"created_at" bson:"createdAt"`
}

// CampSort lists the orderings accepted by camp listings.
type CampSort string

const (
	CampSortNewest       CampSort = ""
	CampSortParticipants CampSort = "participant_count"
	CampSortFees         CampSort = "fees"
	CampSortName         CampSort = "name"
	CampSortDate         CampSort = "date"
)

func (s CampSort) Valid() bool {
	switch s {
	case CampSortNewest, CampSortParticipants, CampSortFees, CampSortName, CampSortDate:
		return true
	}
	return false
}

type CampListResponse struct {
	Camps      []Camp `json:"camps"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}
