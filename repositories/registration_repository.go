package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/medcamp/models"
	"github.com/lib/pq"
)

const registrationColumns = `r.id, r.camp_id, r.participant_email, r.participant_name, r.age, r.phone_number,
	r.gender, r.emergency_contact, r.confirmation_status, r.payment_status, r.transaction_id,
	r.paid_at, r.created_at, r.updated_at`

const joinedCampColumns = `c.id, c.name, c.description, c.location, c.date, c.fees, c.healthcare_professional,
	c.participant_count, c.organizer_email, c.image_key, c.created_at`

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO registrations (
				id, camp_id, participant_email, participant_name, age, phone_number, gender,
				emergency_contact, confirmation_status, payment_status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`

		_, err := tx.ExecContext(ctx, query,
			reg.ID, reg.CampID, reg.ParticipantEmail, reg.ParticipantName, reg.Age, reg.PhoneNumber,
			reg.Gender, reg.EmergencyContact, reg.ConfirmationStatus, reg.PaymentStatus, reg.CreatedAt,
		)
		if err != nil {
			if mapped := registrationWriteError(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("failed to create registration: %w", err)
		}

		_, err = adjustCampCount(ctx, tx, reg.CampID, 1)
		return err
	})
}

func (r *postgresRegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations r WHERE r.id = $1`
	return scanRegistration(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRegistrationRepository) FindByIDAndParticipant(ctx context.Context, id, email string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations r WHERE r.id = $1 AND r.participant_email = $2`
	return scanRegistration(r.db.QueryRowContext(ctx, query, id, email))
}

func (r *postgresRegistrationRepository) FindByCampAndParticipant(ctx context.Context, campID, email string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations r WHERE r.camp_id = $1 AND r.participant_email = $2`
	return scanRegistration(r.db.QueryRowContext(ctx, query, campID, email))
}

func (r *postgresRegistrationRepository) MarkPaid(ctx context.Context, id string, transactionID *string, at time.Time) (bool, error) {
	query := `
		UPDATE registrations SET
			confirmation_status = $1,
			payment_status = $2,
			transaction_id = $3,
			paid_at = $4,
			updated_at = $4
		WHERE id = $5 AND payment_status = $6`

	result, err := r.db.ExecContext(ctx, query,
		models.ConfirmationProcessing, models.PaymentPaid, transactionID, at, id, models.PaymentPay,
	)
	if err != nil {
		if mapped := registrationWriteError(err); mapped != nil {
			return false, mapped
		}
		return false, fmt.Errorf("failed to mark registration paid: %w", err)
	}
	return updated(result)
}

func (r *postgresRegistrationRepository) MarkConfirmed(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE registrations SET confirmation_status = $1, updated_at = $2
		WHERE id = $3 AND confirmation_status = $4 AND payment_status = $5`

	result, err := r.db.ExecContext(ctx, query,
		models.ConfirmationConfirmed, at, id, models.ConfirmationProcessing, models.PaymentPaid,
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm registration: %w", err)
	}
	return updated(result)
}

func (r *postgresRegistrationRepository) DeleteByCampAndParticipant(ctx context.Context, campID, email string) (*models.Registration, error) {
	query := `DELETE FROM registrations r WHERE r.camp_id = $1 AND r.participant_email = $2 RETURNING ` + registrationColumns
	return r.deleteOne(ctx, query, campID, email)
}

func (r *postgresRegistrationRepository) DeleteByID(ctx context.Context, id string) (*models.Registration, error) {
	query := `DELETE FROM registrations r WHERE r.id = $1 RETURNING ` + registrationColumns
	return r.deleteOne(ctx, query, id)
}

// deleteOne returns (nil, nil) when nothing matched.
func (r *postgresRegistrationRepository) deleteOne(ctx context.Context, query string, args ...interface{}) (*models.Registration, error) {
	var deleted *models.Registration
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		reg, err := scanRegistration(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			if errors.Is(err, ErrRegistrationNotFound) {
				return nil
			}
			return fmt.Errorf("failed to delete registration: %w", err)
		}
		if _, err := adjustCampCount(ctx, tx, reg.CampID, -1); err != nil && !errors.Is(err, ErrCampCountUnderflow) {
			return err
		}
		deleted = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *postgresRegistrationRepository) CountByCamp(ctx context.Context, campID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE camp_id = $1`, campID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count camp registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) ListPaid(ctx context.Context, filter models.PaidRegistrationsFilter) ([]models.RegistrationWithCamp, error) {
	where, args := paidRegistrationsWhere(filter)
	argID := len(args) + 1

	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM registrations r
		JOIN camps c ON c.id = r.camp_id
		%s
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $%d OFFSET $%d`, registrationColumns, joinedCampColumns, where, argID, argID+1)
	args = append(args, normalizeLimit(filter.Limit, 10, 100), max(filter.Offset, 0))

	return r.listJoined(ctx, query, args...)
}

func (r *postgresRegistrationRepository) CountPaid(ctx context.Context, filter models.PaidRegistrationsFilter) (int, error) {
	where, args := paidRegistrationsWhere(filter)
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations r `+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count paid registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) ListByParticipant(ctx context.Context, email string) ([]models.RegistrationWithCamp, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM registrations r
		JOIN camps c ON c.id = r.camp_id
		WHERE r.participant_email = $1
		ORDER BY r.created_at DESC`, registrationColumns, joinedCampColumns)
	return r.listJoined(ctx, query, email)
}

func (r *postgresRegistrationRepository) Stats(ctx context.Context) (models.RegistrationStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE r.payment_status = $1),
			COUNT(*) FILTER (WHERE r.confirmation_status = $2),
			COALESCE(SUM(c.fees) FILTER (WHERE r.payment_status = $1), 0)
		FROM registrations r
		JOIN camps c ON c.id = r.camp_id`

	var stats models.RegistrationStats
	err := r.db.QueryRowContext(ctx, query, models.PaymentPaid, models.ConfirmationConfirmed).Scan(
		&stats.Total, &stats.Paid, &stats.Confirmed, &stats.FeesCollected,
	)
	if err != nil {
		return models.RegistrationStats{}, fmt.Errorf("failed to load registration stats: %w", err)
	}
	return stats, nil
}

func (r *postgresRegistrationRepository) listJoined(ctx context.Context, query string, args ...interface{}) ([]models.RegistrationWithCamp, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	out := make([]models.RegistrationWithCamp, 0)
	for rows.Next() {
		var item models.RegistrationWithCamp
		var imageKey sql.NullString
		dest := append(registrationScanDest(&item.Registration),
			&item.Camp.ID, &item.Camp.Name, &item.Camp.Description, &item.Camp.Location, &item.Camp.Date,
			&item.Camp.Fees, &item.Camp.HealthcareProfessional, &item.Camp.ParticipantCount,
			&item.Camp.OrganizerEmail, &imageKey, &item.Camp.CreatedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		if imageKey.Valid {
			item.Camp.ImageKey = &imageKey.String
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return out, nil
}

// registrationWriteError переводит нарушения ограничений таблицы registrations
// в ошибки репозитория. Для прочих ошибок возвращает nil.
func registrationWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case "registrations_camp_participant_key":
			return ErrRegistrationConflict
		case "registrations_transaction_id_key":
			return ErrTransactionConflict
		}
	case "23503": // foreign_key_violation
		if pqErr.Constraint == "registrations_camp_id_fkey" {
			return ErrCampNotFound
		}
	}
	return nil
}

func paidRegistrationsWhere(filter models.PaidRegistrationsFilter) (string, []interface{}) {
	var where strings.Builder
	args := []interface{}{models.PaymentPaid}

	where.WriteString("WHERE r.payment_status = $1")
	if strings.TrimSpace(filter.Search) != "" {
		where.WriteString(" AND (r.participant_name ILIKE $2 OR r.confirmation_status ILIKE $2)")
		args = append(args, likePattern(filter.Search))
	}
	return where.String(), args
}

func registrationScanDest(reg *models.Registration) []interface{} {
	return []interface{}{
		&reg.ID, &reg.CampID, &reg.ParticipantEmail, &reg.ParticipantName, &reg.Age, &reg.PhoneNumber,
		&reg.Gender, &reg.EmergencyContact, &reg.ConfirmationStatus, &reg.PaymentStatus, &reg.TransactionID,
		&reg.PaidAt, &reg.CreatedAt, &reg.UpdatedAt,
	}
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	if err := row.Scan(registrationScanDest(&reg)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}
	return &reg, nil
}

func updated(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}
