package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/medcamp/models"
)

const campColumns = `id, name, description, location, date, fees, healthcare_professional,
	participant_count, organizer_email, image_key, created_at`

type postgresCampRepository struct {
	db *sql.DB
}

func NewPostgresCampRepository(db *sql.DB) CampRepository {
	return &postgresCampRepository{db: db}
}

func (r *postgresCampRepository) Create(ctx context.Context, c *models.Camp) error {
	query := `
		INSERT INTO camps (
			id, name, description, location, date, fees, healthcare_professional,
			participant_count, organizer_email, image_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Description, c.Location, c.Date, c.Fees, c.HealthcareProfessional,
		c.ParticipantCount, c.OrganizerEmail, c.ImageKey,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create camp: %w", err)
	}
	return nil
}

func (r *postgresCampRepository) GetByID(ctx context.Context, id string) (*models.Camp, error) {
	query := `SELECT ` + campColumns + ` FROM camps WHERE id = $1`
	return scanCamp(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresCampRepository) List(ctx context.Context, filter ListCampsFilter) ([]models.Camp, int, error) {
	var where strings.Builder
	args := []interface{}{}
	argID := 1

	where.WriteString(" WHERE 1=1")
	if strings.TrimSpace(filter.Search) != "" {
		where.WriteString(fmt.Sprintf(
			" AND (name ILIKE $%[1]d OR location ILIKE $%[1]d OR healthcare_professional ILIKE $%[1]d)", argID))
		args = append(args, likePattern(filter.Search))
		argID++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM camps`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count camps: %w", err)
	}

	query := `SELECT ` + campColumns + ` FROM camps` + where.String() + campOrderBy(filter.Sort)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, normalizeLimit(filter.Limit, 20, 100), max(filter.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list camps: %w", err)
	}
	defer rows.Close()

	camps := make([]models.Camp, 0)
	for rows.Next() {
		c, err := scanCamp(rows)
		if err != nil {
			return nil, 0, err
		}
		camps = append(camps, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating camp rows: %w", err)
	}
	return camps, total, nil
}

func (r *postgresCampRepository) Update(ctx context.Context, c *models.Camp) error {
	query := `
		UPDATE camps SET
			name = $1,
			description = $2,
			location = $3,
			date = $4,
			fees = $5,
			healthcare_professional = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		c.Name, c.Description, c.Location, c.Date, c.Fees, c.HealthcareProfessional, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update camp: %w", err)
	}
	return checkAffectedRows(result, ErrCampNotFound)
}

func (r *postgresCampRepository) UpdateImageKey(ctx context.Context, id string, imageKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE camps SET image_key = $1 WHERE id = $2`, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to update camp image: %w", err)
	}
	return checkAffectedRows(result, ErrCampNotFound)
}

// Delete полагается на ON DELETE CASCADE у registrations.camp_id.
func (r *postgresCampRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM camps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete camp: %w", err)
	}
	return checkAffectedRows(result, ErrCampNotFound)
}

func (r *postgresCampRepository) AdjustParticipantCount(ctx context.Context, id string, delta int) (*models.Camp, error) {
	return adjustCampCount(ctx, r.db, id, delta)
}

func (r *postgresCampRepository) SetParticipantCount(ctx context.Context, id string, count int) (*models.Camp, error) {
	query := `UPDATE camps SET participant_count = $1 WHERE id = $2 RETURNING ` + campColumns
	return scanCamp(r.db.QueryRowContext(ctx, query, count, id))
}

func (r *postgresCampRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM camps`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count camps: %w", err)
	}
	return count, nil
}

// adjustCampCount is shared with the registration repository so that the
// counter moves inside the same transaction as the registration row.
func adjustCampCount(ctx context.Context, exec SQLExecutor, id string, delta int) (*models.Camp, error) {
	query := `
		UPDATE camps SET participant_count = participant_count + $1
		WHERE id = $2 AND participant_count + $1 >= 0
		RETURNING ` + campColumns

	camp, err := scanCamp(exec.QueryRowContext(ctx, query, delta, id))
	if err == nil {
		return camp, nil
	}
	if !errors.Is(err, ErrCampNotFound) {
		return nil, err
	}

	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM camps WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check camp existence: %w", err)
	}
	if exists {
		return nil, ErrCampCountUnderflow
	}
	return nil, ErrCampNotFound
}

func campOrderBy(sort models.CampSort) string {
	switch sort {
	case models.CampSortParticipants:
		return " ORDER BY participant_count DESC, created_at DESC"
	case models.CampSortFees:
		return " ORDER BY fees ASC, created_at DESC"
	case models.CampSortName:
		return " ORDER BY name ASC"
	case models.CampSortDate:
		return " ORDER BY date ASC"
	default:
		return " ORDER BY created_at DESC"
	}
}

func scanCamp(row rowScanner) (*models.Camp, error) {
	var c models.Camp
	var imageKey sql.NullString

	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Location, &c.Date, &c.Fees, &c.HealthcareProfessional,
		&c.ParticipantCount, &c.OrganizerEmail, &imageKey, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampNotFound
		}
		return nil, fmt.Errorf("failed to scan camp: %w", err)
	}
	if imageKey.Valid {
		c.ImageKey = &imageKey.String
	}
	return &c, nil
}
