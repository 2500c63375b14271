package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// Quantity bounds for a single monthly claim. 744 is the hour count of the
// longest possible month.
var (
	minHours   = decimal.RequireFromString("0.1")
	maxHours   = decimal.NewFromInt(744)
	minRate    = decimal.NewFromInt(1)
	maxRate    = decimal.RequireFromString("9999.99")
	highHours  = decimal.NewFromInt(200)
	highAmount = decimal.NewFromInt(100000)
)

// stalePeriodMonths is how far back a claim period may reach before the
// submission checks flag it.
const stalePeriodMonths = 3

// LecturerReader resolves lecturer records for the rate-baseline comparison.
type LecturerReader interface {
	GetLecturer(ctx context.Context, id int64) (*models.User, error)
}

// DocumentCounter counts active supporting documents for a claim.
type DocumentCounter interface {
	CountActiveDocuments(ctx context.Context, claimID int64) (int, error)
}

// SiblingFinder checks for another non-rejected claim covering the same
// lecturer and period.
type SiblingFinder interface {
	HasDuplicateClaim(ctx context.Context, lecturerID int64, period string, excludeClaimID int64) (bool, error)
}

// Engine is the rule-based claim evaluator. It computes a deterministic,
// side-effect-free assessment; it never mutates the claim or anything else.
type Engine struct {
	lecturers LecturerReader
	documents DocumentCounter
	siblings  SiblingFinder
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates a new validation engine
func NewEngine(lecturers LecturerReader, documents DocumentCounter, siblings SiblingFinder, logger *zap.Logger) *Engine {
	return &Engine{
		lecturers: lecturers,
		documents: documents,
		siblings:  siblings,
		logger:    logger,
		now:       time.Now,
	}
}

// Validate runs the full rule set against the claim and current persisted
// state. Hard violations land in Errors with IsValid=false; advisories land
// in Warnings with a risk increment. All rules are independent and every rule
// runs; the recommended action is derived once from the final score.
func (e *Engine) Validate(ctx context.Context, claim *models.Claim) *Result {
	res := newResult()

	e.checkQuantities(claim, res)
	e.checkRateBaseline(ctx, claim, res)
	e.checkWorkload(claim, res)
	e.checkDocuments(ctx, claim, res)
	e.checkDuplicatePeriod(ctx, claim, res)

	res.finalize()
	return res
}

// AutoVerify wraps Validate with two submission-time temporal checks on the
// claim period. Used only when a claim is first submitted, not at approval.
func (e *Engine) AutoVerify(ctx context.Context, claim *models.Claim) *Result {
	res := newResult()

	e.checkQuantities(claim, res)
	e.checkRateBaseline(ctx, claim, res)
	e.checkWorkload(claim, res)
	e.checkDocuments(ctx, claim, res)
	e.checkDuplicatePeriod(ctx, claim, res)
	e.checkPeriodWindow(claim, res)

	res.finalize()
	return res
}

// MeetsApprovalCriteria is the auto-approval gate: a claim qualifies only if
// it validates cleanly, scores under the caution threshold, carries at least
// one active document and stays within the high-amount bound. It consumes a
// single Validate pass rather than re-deriving rule logic.
func (e *Engine) MeetsApprovalCriteria(ctx context.Context, claim *models.Claim) bool {
	res := e.Validate(ctx, claim)
	if !res.IsValid || res.RiskScore >= autoApproveRiskLimit {
		return false
	}

	count, err := e.documents.CountActiveDocuments(ctx, claim.ID)
	if err != nil || count < 1 {
		return false
	}

	return claim.TotalAmount().LessThanOrEqual(highAmount)
}

// checkQuantities enforces the hard range bounds on hours and rate.
func (e *Engine) checkQuantities(claim *models.Claim, res *Result) {
	if claim.HoursWorked.LessThan(minHours) {
		res.addError(fmt.Sprintf("hours worked must be at least %s", minHours))
	}
	if claim.HoursWorked.GreaterThan(maxHours) {
		res.addError(fmt.Sprintf("hours worked cannot exceed %s for a single month", maxHours))
	}
	if claim.HourlyRate.LessThan(minRate) {
		res.addError(fmt.Sprintf("hourly rate must be at least %s", minRate))
	}
	if claim.HourlyRate.GreaterThan(maxRate) {
		res.addError(fmt.Sprintf("hourly rate cannot exceed %s", maxRate))
	}
}

// checkRateBaseline compares the claimed rate against the lecturer's default
// rate. A missing lecturer record degrades gracefully: the comparison is
// simply skipped.
func (e *Engine) checkRateBaseline(ctx context.Context, claim *models.Claim, res *Result) {
	lecturer, err := e.lecturers.GetLecturer(ctx, claim.LecturerID)
	if err != nil {
		e.logger.Warn("Lecturer lookup failed, skipping rate comparison",
			zap.Int64("claim_id", claim.ID),
			zap.Int64("lecturer_id", claim.LecturerID),
			zap.Error(err))
		return
	}
	if lecturer == nil || lecturer.DefaultHourlyRate == nil {
		return
	}

	if !claim.HourlyRate.Equal(*lecturer.DefaultHourlyRate) {
		res.addWarning(fmt.Sprintf("claimed rate %s differs from the lecturer's default rate %s",
			claim.HourlyRate, lecturer.DefaultHourlyRate), riskRateMismatch)
	}
}

// checkWorkload flags unusually large hour counts and totals.
func (e *Engine) checkWorkload(claim *models.Claim, res *Result) {
	if claim.HoursWorked.GreaterThan(highHours) {
		res.addWarning(fmt.Sprintf("hours worked above %s for a single month", highHours), riskHighHours)
	}
	if claim.TotalAmount().GreaterThan(highAmount) {
		res.addWarning(fmt.Sprintf("total amount %s exceeds %s", claim.TotalAmount(), highAmount), riskHighAmount)
	}
}

// checkDocuments flags claims submitted without any active supporting
// document. A count failure degrades gracefully.
func (e *Engine) checkDocuments(ctx context.Context, claim *models.Claim, res *Result) {
	count, err := e.documents.CountActiveDocuments(ctx, claim.ID)
	if err != nil {
		e.logger.Warn("Document count failed, skipping document check",
			zap.Int64("claim_id", claim.ID),
			zap.Error(err))
		return
	}

	if count < 1 {
		res.addWarning("no active supporting documents attached", riskNoDocuments)
	}
}

// checkDuplicatePeriod enforces the one-non-rejected-claim-per-period
// invariant. Unlike the advisory lookups, a read failure here is converted to
// a synthetic error: silently passing a claim that might double-bill a period
// is not acceptable.
func (e *Engine) checkDuplicatePeriod(ctx context.Context, claim *models.Claim, res *Result) {
	dup, err := e.siblings.HasDuplicateClaim(ctx, claim.LecturerID, claim.Period, claim.ID)
	if err != nil {
		e.logger.Error("Duplicate-period lookup failed",
			zap.Int64("claim_id", claim.ID),
			zap.Error(err))
		res.addError("system error during validation")
		return
	}

	if dup {
		res.Errors = append(res.Errors, fmt.Sprintf("another active claim already exists for period %s", claim.Period))
		res.IsValid = false
		res.RiskScore += riskDuplicatePeriod
	}
}

// checkPeriodWindow runs the submission-time temporal rules: a claim may not
// name a future month, and a claim reaching back more than three calendar
// months is flagged for review.
func (e *Engine) checkPeriodWindow(claim *models.Claim, res *Result) {
	periodStart, err := models.ParsePeriod(claim.Period)
	if err != nil {
		res.addError(fmt.Sprintf("claim period %q is not a valid YYYY-MM token", claim.Period))
		return
	}

	now := e.now()
	if periodStart.After(now) {
		res.addError(fmt.Sprintf("claim period %s is a future month", claim.Period))
	}

	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	cutoff := currentMonth.AddDate(0, -stalePeriodMonths, 0)
	if periodStart.Before(cutoff) {
		res.addWarning(fmt.Sprintf("claim period %s is more than %d months old", claim.Period, stalePeriodMonths), riskStalePeriod)
	}
}
