package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// UserRepository handles user database operations. Users are read-only from
// the engines' perspective; writes exist for provisioning only.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user and assigns its ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, role, default_hourly_rate, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	var rate decimal.NullDecimal
	if user.DefaultHourlyRate != nil {
		rate = decimal.NullDecimal{Decimal: *user.DefaultHourlyRate, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.Role,
		rate,
		user.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = id
	return nil
}

// GetByID retrieves a user by ID. Returns nil without error when the user
// does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, name, email, role, default_hourly_rate, created_at
		FROM users
		WHERE id = ?
	`

	var user models.User
	var rate decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&rate,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if rate.Valid {
		user.DefaultHourlyRate = &rate.Decimal
	}

	return &user, nil
}

// GetLecturer resolves a lecturer record for validation's rate-baseline
// comparison.
func (r *UserRepository) GetLecturer(ctx context.Context, id int64) (*models.User, error) {
	return r.GetByID(ctx, id)
}

// ListByRole retrieves all users holding a role, ordered by name.
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]*models.User, error) {
	query := `
		SELECT id, name, email, role, default_hourly_rate, created_at
		FROM users
		WHERE role = ?
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		r.logger.Error("Failed to list users by role", zap.String("role", role), zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		var rate decimal.NullDecimal
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&rate,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if rate.Valid {
			user.DefaultHourlyRate = &rate.Decimal
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}
