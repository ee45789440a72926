package models

import "time"

// UserRole представляет роль пользователя.
type UserRole string

const (
	RoleParticipant UserRole = "participant"
	RoleOrganizer   UserRole = "organizer"
)

type User struct {
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	Photo        string    `json:"photo" bson:"photo"`
	Role         UserRole  `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
}

// UserProfilePatch содержит изменяемые поля профиля. nil означает "не менять".
type UserProfilePatch struct {
	Name  *string `json:"name"`
	Photo *string `json:"photo"`
}

func (p UserProfilePatch) Empty() bool {
	return p.Name == nil && p.Photo == nil
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

func (c *Caller) IsOrganizer() bool {
	return c != nil && c.Role == RoleOrganizer
}
