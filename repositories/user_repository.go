package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/medcamp/models"
	"github.com/lib/pq"
)

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, photo, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	var passwordHash sql.NullString
	if user.PasswordHash != "" {
		passwordHash = sql.NullString{String: user.PasswordHash, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.Name,
		user.Photo,
		user.Role,
		passwordHash,
	).Scan(&user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "users_pkey" {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT email, name, photo, role, password_hash, created_at
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresUserRepository) UpdateProfile(ctx context.Context, email string, patch models.UserProfilePatch) (*models.User, error) {
	query := `
		UPDATE users SET
			name = COALESCE($1, name),
			photo = COALESCE($2, photo)
		WHERE email = $3
		RETURNING email, name, photo, role, password_hash, created_at`

	return r.scanUser(r.db.QueryRowContext(ctx, query, patch.Name, patch.Photo, email))
}

func (r *postgresUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *postgresUserRepository) scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var passwordHash sql.NullString

	err := row.Scan(
		&user.Email,
		&user.Name,
		&user.Photo,
		&user.Role,
		&passwordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.PasswordHash = passwordHash.String
	return &user, nil
}
