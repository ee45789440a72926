package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/repositories"
)

type FeedbackInput struct {
	CampID   string `json:"camp_id"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// FeedbackService принимает и отдает отзывы участников.
type FeedbackService interface {
	Submit(ctx context.Context, caller *models.Caller, input FeedbackInput) (*models.Feedback, error)
	List(ctx context.Context, limit int) ([]models.Feedback, error)
	ListByCamp(ctx context.Context, campID string) ([]models.Feedback, error)
}

type feedbackService struct {
	feedback repositories.FeedbackRepository
	camps    repositories.CampRepository
	users    repositories.UserRepository
}

func NewFeedbackService(feedback repositories.FeedbackRepository, camps repositories.CampRepository, users repositories.UserRepository) FeedbackService {
	return &feedbackService{feedback: feedback, camps: camps, users: users}
}

func (s *feedbackService) Submit(ctx context.Context, caller *models.Caller, input FeedbackInput) (*models.Feedback, error) {
	if err := Authorize(caller, Authenticated); err != nil {
		return nil, err
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, validationError("rating must be between 1 and 5")
	}
	text := strings.TrimSpace(input.Feedback)
	if text == "" {
		return nil, validationError("feedback text is required")
	}

	if _, err := s.camps.GetByID(ctx, input.CampID); err != nil {
		return nil, translateRepoError("load camp", err)
	}
	user, err := s.users.GetByEmail(ctx, caller.Email)
	if err != nil {
		return nil, translateRepoError("load user", err)
	}

	fb := &models.Feedback{
		ID:               uuid.NewString(),
		CampID:           input.CampID,
		ParticipantName:  user.Name,
		ParticipantEmail: user.Email,
		ParticipantImage: user.Photo,
		Rating:           input.Rating,
		Feedback:         text,
		Date:             time.Now().UTC(),
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, translateRepoError("create feedback", err)
	}
	return fb, nil
}

func (s *feedbackService) List(ctx context.Context, limit int) ([]models.Feedback, error) {
	items, err := s.feedback.List(ctx, limit)
	if err != nil {
		return nil, translateRepoError("list feedback", err)
	}
	return items, nil
}

func (s *feedbackService) ListByCamp(ctx context.Context, campID string) ([]models.Feedback, error) {
	if _, err := s.camps.GetByID(ctx, campID); err != nil {
		return nil, translateRepoError("load camp", err)
	}
	items, err := s.feedback.ListByCamp(ctx, campID)
	if err != nil {
		return nil, translateRepoError("list camp feedback", err)
	}
	return items, nil
}
