package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
	"github.com/crestfield/lecturer-claims/internal/validation"
)

// ClaimStore defines the persistence operations the submission flow needs.
type ClaimStore interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id int64) (*models.Claim, error)
	Update(ctx context.Context, claim *models.Claim) error
}

// UserReader resolves lecturer records.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Verifier runs the submission-time validation pass.
type Verifier interface {
	AutoVerify(ctx context.Context, claim *models.Claim) *validation.Result
}

// Request carries the lecturer's submission input.
type Request struct {
	LecturerID  int64           `json:"lecturer_id"`
	Period      string          `json:"period"`
	HoursWorked decimal.Decimal `json:"hours_worked"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Notes       string          `json:"notes"`
}

// Service owns claim creation and resubmission. Claims enter the approval
// workflow in Pending; all later status changes belong to the workflow
// engine.
type Service struct {
	claims   ClaimStore
	users    UserReader
	verifier Verifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new submission service
func NewService(claims ClaimStore, users UserReader, verifier Verifier, logger *zap.Logger) *Service {
	return &Service{
		claims:   claims,
		users:    users,
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit creates a Pending claim after the submission checks pass. Hard
// validation errors (range violations, duplicate period, future month) block
// the submission; warnings ride along in the returned result for the caller
// to display.
func (s *Service) Submit(ctx context.Context, req Request) (*models.Claim, *validation.Result, error) {
	lecturer, err := s.users.GetByID(ctx, req.LecturerID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve lecturer: %w", err)
	}
	if lecturer == nil {
		return nil, nil, fmt.Errorf("lecturer %d not found", req.LecturerID)
	}
	if lecturer.Role != models.RoleLecturer {
		return nil, nil, fmt.Errorf("user %d is not a lecturer", req.LecturerID)
	}

	now := s.now()
	claim := &models.Claim{
		LecturerID:     req.LecturerID,
		Period:         req.Period,
		HoursWorked:    req.HoursWorked,
		HourlyRate:     req.HourlyRate,
		Status:         models.StatusPending,
		SubmissionDate: now,
		LecturerNotes:  req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	result := s.verifier.AutoVerify(ctx, claim)
	if !result.IsValid {
		s.logger.Info("Submission blocked by validation",
			zap.Int64("lecturer_id", req.LecturerID),
			zap.String("period", req.Period),
			zap.Strings("errors", result.Errors))
		return nil, result, nil
	}

	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, nil, fmt.Errorf("create claim: %w", err)
	}

	s.logger.Info("Claim submitted",
		zap.Int64("claim_id", claim.ID),
		zap.Int64("lecturer_id", claim.LecturerID),
		zap.String("period", claim.Period),
		zap.Int("risk_score", result.RiskScore))

	return claim, result, nil
}

// Resubmit reopens a Returned claim to Pending with revised quantities and a
// fresh submission date. Earlier stage notes are left in place; the next
// review cycle overwrites them.
func (s *Service) Resubmit(ctx context.Context, claimID int64, req Request) (*models.Claim, *validation.Result, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, fmt.Errorf("load claim: %w", err)
	}
	if claim == nil {
		return nil, nil, fmt.Errorf("claim %d not found", claimID)
	}
	if claim.Status != models.StatusReturned {
		return nil, nil, fmt.Errorf("claim %d is not awaiting revision", claimID)
	}
	if claim.LecturerID != req.LecturerID {
		return nil, nil, fmt.Errorf("claim %d does not belong to lecturer %d", claimID, req.LecturerID)
	}

	now := s.now()
	claim.Period = req.Period
	claim.HoursWorked = req.HoursWorked
	claim.HourlyRate = req.HourlyRate
	claim.LecturerNotes = req.Notes
	claim.Status = models.StatusPending
	claim.SubmissionDate = now
	claim.UpdatedAt = now

	result := s.verifier.AutoVerify(ctx, claim)
	if !result.IsValid {
		s.logger.Info("Resubmission blocked by validation",
			zap.Int64("claim_id", claimID),
			zap.Strings("errors", result.Errors))
		return nil, result, nil
	}

	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, nil, fmt.Errorf("update claim: %w", err)
	}

	s.logger.Info("Claim resubmitted",
		zap.Int64("claim_id", claim.ID),
		zap.String("period", claim.Period))

	return claim, result, nil
}
