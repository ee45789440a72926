package models

import "time"

type Feedback struct {
	ID               string    `json:"id" bson:"_id"`
	CampID           string    `json:"camp_id" bson:"campId"`
	ParticipantName  string    `json:"participant_name" bson:"participantName"`
	ParticipantEmail string    `json:"participant_email" bson:"participantEmail"`
	ParticipantImage string    `json:"participant_image" bson:"participantImage"`
	Rating           int       `json:"rating" bson:"rating"`
	Feedback         string    `json:"feedback" bson:"feedback"`
	Date             time.Time `json:"date" bson:"date"`
}
