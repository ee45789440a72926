package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/medcamp/models"
	"github.com/lib/pq"
)

type postgresFeedbackRepository struct {
	db *sql.DB
}

func NewPostgresFeedbackRepository(db *sql.DB) FeedbackRepository {
	return &postgresFeedbackRepository{db: db}
}

func (r *postgresFeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	query := `
		INSERT INTO feedback (id, camp_id, participant_name, participant_email, participant_image, rating, feedback, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		fb.ID, fb.CampID, fb.ParticipantName, fb.ParticipantEmail, fb.ParticipantImage, fb.Rating, fb.Feedback, fb.Date,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "feedback_camp_id_fkey" {
			return ErrFeedbackCampInvalid
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (r *postgresFeedbackRepository) List(ctx context.Context, limit int) ([]models.Feedback, error) {
	query := `
		SELECT id, camp_id, participant_name, participant_email, participant_image, rating, feedback, date
		FROM feedback
		ORDER BY date DESC
		LIMIT $1`
	return r.list(ctx, query, normalizeLimit(limit, 20, 100))
}

func (r *postgresFeedbackRepository) ListByCamp(ctx context.Context, campID string) ([]models.Feedback, error) {
	query := `
		SELECT id, camp_id, participant_name, participant_email, participant_image, rating, feedback, date
		FROM feedback
		WHERE camp_id = $1
		ORDER BY date DESC`
	return r.list(ctx, query, campID)
}

func (r *postgresFeedbackRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	out := make([]models.Feedback, 0)
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(
			&fb.ID, &fb.CampID, &fb.ParticipantName, &fb.ParticipantEmail, &fb.ParticipantImage,
			&fb.Rating, &fb.Feedback, &fb.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	return out, nil
}
