package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// ClaimRepository handles claim database operations
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) *ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

const claimColumns = `
	id, lecturer_id, period, hours_worked, hourly_rate, status,
	submission_date, coordinator_approval_date, manager_approval_date,
	lecturer_notes, coordinator_notes, manager_notes, created_at, updated_at
`

// Create inserts a new claim and assigns its ID
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	query := `
		INSERT INTO claims (
			lecturer_id, period, hours_worked, hourly_rate, status,
			submission_date, lecturer_notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		claim.LecturerID,
		claim.Period,
		claim.HoursWorked,
		claim.HourlyRate,
		claim.Status,
		claim.SubmissionDate,
		claim.LecturerNotes,
		claim.CreatedAt,
		claim.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	claim.ID = id
	return nil
}

// GetByID retrieves a claim by ID. Returns nil without error when the claim
// does not exist.
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	claim, err := r.scanClaim(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return claim, nil
}

// ListByStatus retrieves all claims in a status, oldest submission first
// (FIFO review order).
func (r *ClaimRepository) ListByStatus(ctx context.Context, status string) ([]*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE status = ? ORDER BY submission_date ASC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		r.logger.Error("Failed to list claims by status", zap.String("status", status), zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	return r.collectClaims(rows)
}

// ListByLecturer retrieves a lecturer's claims, newest submission first.
func (r *ClaimRepository) ListByLecturer(ctx context.Context, lecturerID int64) ([]*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE lecturer_id = ? ORDER BY submission_date DESC`

	rows, err := r.db.QueryContext(ctx, query, lecturerID)
	if err != nil {
		r.logger.Error("Failed to list claims by lecturer", zap.Int64("lecturer_id", lecturerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	return r.collectClaims(rows)
}

// ListForReport retrieves claims for HR reporting, optionally filtered by
// status and period, ordered by period then lecturer.
func (r *ClaimRepository) ListForReport(ctx context.Context, status, period string) ([]*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE 1=1`
	args := []interface{}{}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if period != "" {
		query += ` AND period = ?`
		args = append(args, period)
	}
	query += ` ORDER BY period ASC, lecturer_id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims for report", zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	return r.collectClaims(rows)
}

// Update persists a mutated claim in a single write. Status, approval dates
// and notes always travel together.
func (r *ClaimRepository) Update(ctx context.Context, claim *models.Claim) error {
	query := `
		UPDATE claims SET
			period = ?, hours_worked = ?, hourly_rate = ?, status = ?,
			submission_date = ?, coordinator_approval_date = ?, manager_approval_date = ?,
			lecturer_notes = ?, coordinator_notes = ?, manager_notes = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		claim.Period,
		claim.HoursWorked,
		claim.HourlyRate,
		claim.Status,
		claim.SubmissionDate,
		claim.CoordinatorApprovalDate,
		claim.ManagerApprovalDate,
		claim.LecturerNotes,
		claim.CoordinatorNotes,
		claim.ManagerNotes,
		claim.UpdatedAt,
		claim.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update claim", zap.Int64("id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to update claim: %w", err)
	}

	return nil
}

// HasDuplicateClaim reports whether another non-rejected claim exists for the
// same lecturer and period.
func (r *ClaimRepository) HasDuplicateClaim(ctx context.Context, lecturerID int64, period string, excludeClaimID int64) (bool, error) {
	query := `
		SELECT COUNT(*) FROM claims
		WHERE lecturer_id = ? AND period = ? AND status != ? AND id != ?
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, lecturerID, period, models.StatusRejected, excludeClaimID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to check duplicate claims",
			zap.Int64("lecturer_id", lecturerID),
			zap.String("period", period),
			zap.Error(err))
		return false, fmt.Errorf("failed to check duplicate claims: %w", err)
	}

	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ClaimRepository) scanClaim(row rowScanner) (*models.Claim, error) {
	var claim models.Claim
	var coordDate, mgrDate sql.NullTime
	var lecturerNotes, coordNotes, mgrNotes sql.NullString

	err := row.Scan(
		&claim.ID,
		&claim.LecturerID,
		&claim.Period,
		&claim.HoursWorked,
		&claim.HourlyRate,
		&claim.Status,
		&claim.SubmissionDate,
		&coordDate,
		&mgrDate,
		&lecturerNotes,
		&coordNotes,
		&mgrNotes,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if coordDate.Valid {
		claim.CoordinatorApprovalDate = &coordDate.Time
	}
	if mgrDate.Valid {
		claim.ManagerApprovalDate = &mgrDate.Time
	}
	claim.LecturerNotes = lecturerNotes.String
	claim.CoordinatorNotes = coordNotes.String
	claim.ManagerNotes = mgrNotes.String

	return &claim, nil
}

func (r *ClaimRepository) collectClaims(rows *sql.Rows) ([]*models.Claim, error) {
	var claims []*models.Claim
	for rows.Next() {
		claim, err := r.scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}
