package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domainwf "github.com/crestfield/lecturer-claims/internal/domain/workflow"
	"github.com/crestfield/lecturer-claims/internal/models"
	"github.com/crestfield/lecturer-claims/internal/validation"
)

// ClaimRepository defines the persistence operations the engine needs. The
// engine is the only code path permitted to mutate claim status, approval
// dates and review notes.
type ClaimRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Claim, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Claim, error)
	Update(ctx context.Context, claim *models.Claim) error
}

// UserReader resolves approver records.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Validator is the read-only rule evaluator consulted on every transition.
type Validator interface {
	Validate(ctx context.Context, claim *models.Claim) *validation.Result
}

// Engine is the authoritative state machine for claim status. Every failure
// is absorbed into the returned Decision; callers never catch errors from
// normal rule or permission violations.
type Engine struct {
	claims    ClaimRepository
	users     UserReader
	validator Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates a new workflow engine
func NewEngine(claims ClaimRepository, users UserReader, validator Validator, logger *zap.Logger) *Engine {
	return &Engine{
		claims:    claims,
		users:     users,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessWorkflow authorizes and applies a review action against a claim.
// Status, approval date and notes are updated together in a single
// transactional write, or not at all: every failure path returns before the
// claim is persisted.
func (e *Engine) ProcessWorkflow(ctx context.Context, claimID int64, action domainwf.Action, approverID int64, comments string) *Decision {
	claim, err := e.claims.GetByID(ctx, claimID)
	if err != nil {
		e.logger.Error("Failed to load claim", zap.Int64("claim_id", claimID), zap.Error(err))
		return failure("system error while processing the claim")
	}
	if claim == nil {
		return failure("claim not found")
	}

	approver, err := e.users.GetByID(ctx, approverID)
	if err != nil {
		e.logger.Error("Failed to load approver", zap.Int64("approver_id", approverID), zap.Error(err))
		return failure("system error while processing the claim")
	}
	if approver == nil {
		return failure("approver not found")
	}

	if !e.canApprove(claim, approver.Role) {
		e.logger.Warn("Workflow action denied",
			zap.Int64("claim_id", claimID),
			zap.Int64("approver_id", approverID),
			zap.String("role", approver.Role),
			zap.String("status", claim.Status))
		return failure("approver is not authorized to act on this claim at its current stage")
	}

	newState, err := domainwf.Fire(domainwf.State(claim.Status), action)
	if err != nil {
		e.logger.Warn("Illegal transition requested",
			zap.Int64("claim_id", claimID),
			zap.String("status", claim.Status),
			zap.String("action", action.String()),
			zap.Error(err))
		return failure(fmt.Sprintf("action %s is not valid for a claim in status %s", action, claim.Status))
	}

	// Read-only assessment. Validation informs the approval notes; it never
	// vetoes a human decision.
	result := e.validator.Validate(ctx, claim)

	notifications := e.applyAction(claim, action, approver.Role, comments, result)

	claim.Status = newState.String()
	claim.UpdatedAt = e.now()

	if err := e.claims.Update(ctx, claim); err != nil {
		e.logger.Error("Failed to persist claim transition",
			zap.Int64("claim_id", claimID),
			zap.String("new_status", newState.String()),
			zap.Error(err))
		return failure("system error while saving the claim")
	}

	e.logger.Info("Claim transition applied",
		zap.Int64("claim_id", claimID),
		zap.Int64("approver_id", approverID),
		zap.String("action", action.String()),
		zap.String("new_status", newState.String()),
		zap.Int("risk_score", result.RiskScore))

	return &Decision{
		Success:       true,
		Message:       fmt.Sprintf("Claim %d moved to %s", claim.ID, newState),
		NewStatus:     newState.String(),
		Notifications: notifications,
	}
}

// applyAction stamps the acting stage's approval date and notes, and builds
// the notification strings for the external dispatcher. The dispatch is
// exhaustive over the three review actions.
func (e *Engine) applyAction(claim *models.Claim, action domainwf.Action, role, comments string, result *validation.Result) []string {
	now := e.now()
	coordinator := role == models.RoleCoordinator

	switch action {
	case domainwf.ActionApprove:
		if coordinator {
			claim.CoordinatorApprovalDate = &now
			claim.CoordinatorNotes = approvalNote(comments, "Approved by coordinator", result)
			return []string{fmt.Sprintf("Claim %d for period %s passed coordinator review and awaits academic manager approval", claim.ID, claim.Period)}
		}
		claim.ManagerApprovalDate = &now
		claim.ManagerNotes = approvalNote(comments, "Approved by manager", result)
		return []string{fmt.Sprintf("Claim %d for period %s has been approved; payment of %s will be processed", claim.ID, claim.Period, claim.TotalAmount())}

	case domainwf.ActionReject:
		if coordinator {
			claim.CoordinatorApprovalDate = &now
			claim.CoordinatorNotes = stageNote(comments, "Rejected by coordinator")
		} else {
			claim.ManagerApprovalDate = &now
			claim.ManagerNotes = stageNote(comments, "Rejected by manager")
		}
		return []string{fmt.Sprintf("Claim %d for period %s was rejected", claim.ID, claim.Period)}

	case domainwf.ActionReturn:
		if coordinator {
			claim.CoordinatorApprovalDate = &now
			claim.CoordinatorNotes = stageNote(comments, "Returned for revision")
		} else {
			claim.ManagerApprovalDate = &now
			claim.ManagerNotes = stageNote(comments, "Returned for revision")
		}
		return []string{fmt.Sprintf("Claim %d for period %s was returned for revision; please amend and resubmit", claim.ID, claim.Period)}
	}

	return nil
}

// GetClaimsForApprover returns the claims sitting in the exact status the
// role reviews, oldest submission first. Roles without a review stage get an
// empty set.
func (e *Engine) GetClaimsForApprover(ctx context.Context, approverID int64, role string) ([]*models.Claim, error) {
	stage, ok := domainwf.StageForRole(role)
	if !ok {
		e.logger.Debug("Approver queue requested by non-reviewing role",
			zap.Int64("approver_id", approverID),
			zap.String("role", role))
		return []*models.Claim{}, nil
	}

	claims, err := e.claims.ListByStatus(ctx, stage.String())
	if err != nil {
		e.logger.Error("Failed to list claims for approver",
			zap.Int64("approver_id", approverID),
			zap.String("status", stage.String()),
			zap.Error(err))
		return nil, fmt.Errorf("list claims for approver: %w", err)
	}

	return claims, nil
}

// CanApproveClaim is the pure permission predicate behind ProcessWorkflow,
// exposed so callers can pre-filter without attempting a mutation.
func (e *Engine) CanApproveClaim(ctx context.Context, claimID, approverID int64, role string) bool {
	claim, err := e.claims.GetByID(ctx, claimID)
	if err != nil || claim == nil {
		return false
	}
	return e.canApprove(claim, role)
}

// canApprove binds roles to review stages: coordinators act on Pending,
// managers on PendingManager, nobody else acts at all.
func (e *Engine) canApprove(claim *models.Claim, role string) bool {
	stage, ok := domainwf.StageForRole(role)
	if !ok {
		return false
	}
	return domainwf.State(claim.Status) == stage
}

// approvalNote resolves the stored note for an approval: the supplied
// comments (or the stage default), plus the automated-check block when
// validation raised warnings.
func approvalNote(comments, fallback string, result *validation.Result) string {
	note := stageNote(comments, fallback)
	if !result.HasWarnings() {
		return note
	}

	var b strings.Builder
	b.WriteString(note)
	b.WriteString("\n\nAutomated Checks:\n")
	for _, w := range result.Warnings {
		b.WriteString("- ")
		b.WriteString(w)
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Risk Score: %d/100", result.RiskScore))
	return b.String()
}

// stageNote returns the supplied comments, or the stage default when empty.
func stageNote(comments, fallback string) string {
	if strings.TrimSpace(comments) == "" {
		return fallback
	}
	return comments
}
