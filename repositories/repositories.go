package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/medcamp/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")

	ErrCampNotFound       = errors.New("camp not found")
	ErrCampCountUnderflow = errors.New("camp participant count cannot go below zero")

	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationConflict = errors.New("participant is already registered for this camp")
	ErrTransactionConflict  = errors.New("payment transaction is already attached to another registration")

	ErrFeedbackCampInvalid = errors.New("feedback camp conflict or invalid")
)

type ListCampsFilter struct {
	Search string
	Sort   models.CampSort
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, patch models.UserProfilePatch) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

type CampRepository interface {
	Create(ctx context.Context, camp *models.Camp) error
	GetByID(ctx context.Context, id string) (*models.Camp, error)
	List(ctx context.Context, filter ListCampsFilter) ([]models.Camp, int, error)
	Update(ctx context.Context, camp *models.Camp) error
	UpdateImageKey(ctx context.Context, id string, imageKey *string) error
	// Delete удаляет лагерь вместе с его заявками.
	Delete(ctx context.Context, id string) error
	// AdjustParticipantCount атомарно применяет delta. Уменьшение ниже нуля
	// возвращает ErrCampCountUnderflow.
	AdjustParticipantCount(ctx context.Context, id string, delta int) (*models.Camp, error)
	SetParticipantCount(ctx context.Context, id string, count int) (*models.Camp, error)
	Count(ctx context.Context) (int, error)
}

// RegistrationRepository хранит заявки и держит счетчик участников лагеря
// в согласии с ними.
type RegistrationRepository interface {
	// Create вставляет заявку и увеличивает счетчик лагеря одной операцией.
	// Повторная заявка на ту же пару (лагерь, email) дает ErrRegistrationConflict,
	// несуществующий лагерь дает ErrCampNotFound.
	Create(ctx context.Context, reg *models.Registration) error
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	FindByIDAndParticipant(ctx context.Context, id, email string) (*models.Registration, error)
	FindByCampAndParticipant(ctx context.Context, campID, email string) (*models.Registration, error)
	// MarkPaid переводит неоплаченную заявку в (Processing, Paid) и возвращает false,
	// если заявка уже была не в этом состоянии. Повторное использование transactionID
	// дает ErrTransactionConflict.
	MarkPaid(ctx context.Context, id string, transactionID *string, at time.Time) (bool, error)
	// MarkConfirmed переводит заявку (Processing, Paid) в Confirmed.
	MarkConfirmed(ctx context.Context, id string, at time.Time) (bool, error)
	// Delete* удаляют заявку и уменьшают счетчик, если что-то было удалено.
	DeleteByCampAndParticipant(ctx context.Context, campID, email string) (*models.Registration, error)
	DeleteByID(ctx context.Context, id string) (*models.Registration, error)
	CountByCamp(ctx context.Context, campID string) (int, error)
	ListPaid(ctx context.Context, filter models.PaidRegistrationsFilter) ([]models.RegistrationWithCamp, error)
	CountPaid(ctx context.Context, filter models.PaidRegistrationsFilter) (int, error)
	ListByParticipant(ctx context.Context, email string) ([]models.RegistrationWithCamp, error)
	Stats(ctx context.Context) (models.RegistrationStats, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	List(ctx context.Context, limit int) ([]models.Feedback, error)
	ListByCamp(ctx context.Context, campID string) ([]models.Feedback, error)
}

// Store объединяет репозитории одного хранилища.
type Store struct {
	Users         UserRepository
	Camps         CampRepository
	Registrations RegistrationRepository
	Feedback      FeedbackRepository
}
