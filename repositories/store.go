package repositories

import "database/sql"

func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Users:         NewPostgresUserRepository(db),
		Camps:         NewPostgresCampRepository(db),
		Registrations: NewPostgresRegistrationRepository(db),
		Feedback:      NewPostgresFeedbackRepository(db),
	}
}
