package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainwf "github.com/crestfield/lecturer-claims/internal/domain/workflow"
	"github.com/crestfield/lecturer-claims/internal/models"
	"github.com/crestfield/lecturer-claims/internal/submission"
	"github.com/crestfield/lecturer-claims/internal/validation"
	"github.com/crestfield/lecturer-claims/internal/workflow"
)

// SubmissionService owns claim creation and resubmission.
type SubmissionService interface {
	Submit(ctx context.Context, req submission.Request) (*models.Claim, *validation.Result, error)
	Resubmit(ctx context.Context, claimID int64, req submission.Request) (*models.Claim, *validation.Result, error)
}

// DocumentService owns supporting-document intake.
type DocumentService interface {
	Attach(ctx context.Context, claimID int64, fileName string, content []byte) (*models.SupportingDocument, error)
	List(ctx context.Context, claimID int64) ([]*models.SupportingDocument, error)
	Remove(ctx context.Context, documentID int64) error
}

// WorkflowService is the approval state machine.
type WorkflowService interface {
	ProcessWorkflow(ctx context.Context, claimID int64, action domainwf.Action, approverID int64, comments string) *workflow.Decision
	GetClaimsForApprover(ctx context.Context, approverID int64, role string) ([]*models.Claim, error)
}

// ValidationService exposes the read-only rule evaluation for previews.
type ValidationService interface {
	Validate(ctx context.Context, claim *models.Claim) *validation.Result
	MeetsApprovalCriteria(ctx context.Context, claim *models.Claim) bool
}

// ClaimReader loads claims for display and validation previews.
type ClaimReader interface {
	GetByID(ctx context.Context, id int64) (*models.Claim, error)
}

// UserReader resolves users for the approver queue.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// ReportService produces the HR Excel export.
type ReportService interface {
	Generate(ctx context.Context, status, period string) (string, error)
}

// Notifier delivers workflow notifications. May be nil when notifications
// are disabled.
type Notifier interface {
	NotifyUser(ctx context.Context, claimID, userID int64, message string) error
	NotifyRole(ctx context.Context, claimID int64, role, message string) error
}

// AdvisorService drafts review briefs for approvers. May be nil when no
// model is configured.
type AdvisorService interface {
	ReviewBrief(ctx context.Context, claim *models.Claim, result *validation.Result) (string, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	submissions SubmissionService
	documents   DocumentService
	engine      WorkflowService
	validator   ValidationService
	claims      ClaimReader
	users       UserReader
	reports     ReportService
	notifier    Notifier
	advisor     AdvisorService
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	submissions SubmissionService,
	documents DocumentService,
	engine WorkflowService,
	validator ValidationService,
	claims ClaimReader,
	users UserReader,
	reports ReportService,
	notifier Notifier,
	advisor AdvisorService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		submissions: submissions,
		documents:   documents,
		engine:      engine,
		validator:   validator,
		claims:      claims,
		users:       users,
		reports:     reports,
		notifier:    notifier,
		advisor:     advisor,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SubmissionResponse pairs the stored claim with its validation result. On a
// blocked submission Claim is nil and the result carries the errors.
type SubmissionResponse struct {
	Claim      *models.Claim      `json:"claim,omitempty"`
	Validation *validation.Result `json:"validation"`
}

// ActionRequest is the body for POST /api/claims/:id/action.
type ActionRequest struct {
	ApproverID int64  `json:"approver_id" binding:"required"`
	Action     string `json:"action" binding:"required"`
	Comments   string `json:"comments"`
}

// ReportRequest is the body for POST /api/reports/claims.
type ReportRequest struct {
	Status string `json:"status"`
	Period string `json:"period"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// SubmitClaim handles POST /api/claims
func (h *Handlers) SubmitClaim(c *gin.Context) {
	var req submission.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	claim, result, err := h.submissions.Submit(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Claim submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	if claim == nil {
		// Validation blocked the submission.
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    SubmissionResponse{Validation: result},
			Error:   "claim failed validation",
		})
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    SubmissionResponse{Claim: claim, Validation: result},
	})
}

// ResubmitClaim handles POST /api/claims/:id/resubmit
func (h *Handlers) ResubmitClaim(c *gin.Context) {
	claimID, ok := idParam(c)
	if !ok {
		return
	}

	var req submission.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	claim, result, err := h.submissions.Resubmit(c.Request.Context(), claimID, req)
	if err != nil {
		h.logger.Error("Claim resubmission failed", zap.Int64("claim_id", claimID), zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	if claim == nil {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    SubmissionResponse{Validation: result},
			Error:   "claim failed validation",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    SubmissionResponse{Claim: claim, Validation: result},
	})
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	claimID, ok := idParam(c)
	if !ok {
		return
	}

	claim, err := h.claims.GetByID(c.Request.Context(), claimID)
	if err != nil {
		h.logger.Error("Failed to load claim", zap.Int64("claim_id", claimID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve claim"})
		return
	}
	if claim == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "claim not found"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// ValidateClaim handles GET /api/claims/:id/validate. It runs the rule
// engine without touching the claim, for reviewers who want the assessment
// ahead of a decision.
func (h *Handlers) ValidateClaim(c *gin.Context) {
	claimID, ok := idParam(c)
	if !ok {
		return
	}

	claim, err := h.claims.GetByID(c.Request.Context(), claimID)
	if err != nil {
		h.logger.Error("Failed to load claim", zap.Int64("claim_id", claimID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve claim"})
		return
	}
	if claim == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "claim not found"})
		return
	}

	result := h.validator.Validate(c.Request.Context(), claim)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"validation":              result,
			"meets_approval_criteria": h.validator.MeetsApprovalCriteria(c.Request.Context(), claim),
		},
	})
}

// ProcessAction handles POST /api/claims/:id/action
func (h *Handlers) ProcessAction(c *gin.Context) {
	claimID, ok := idParam(c)
	if !ok {
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	action := domainwf.Action(req.Action)
	if !action.IsValid() {
		badRequest(c, "action must be one of APPROVE, REJECT, RETURN")
		return
	}

	decision := h.engine.ProcessWorkflow(c.Request.Context(), claimID, action, req.ApproverID, req.Comments)
	if !decision.Success {
		c.JSON(http.StatusOK, Response{Success: false, Data: decision, Error: decision.Message})
		return
	}

	h.dispatchNotifications(c.Request.Context(), claimID, decision)

	c.JSON(http.StatusOK, Response{Success: true, Data: decision})
}

// dispatchNotifications routes the decision's notification strings: stage
// handoffs go to the manager pool, terminal and return outcomes go back to
// the lecturer. Delivery failures are logged and dropped.
func (h *Handlers) dispatchNotifications(ctx context.Context, claimID int64, decision *workflow.Decision) {
	if h.notifier == nil || len(decision.Notifications) == 0 {
		return
	}

	claim, err := h.claims.GetByID(ctx, claimID)
	if err != nil || claim == nil {
		h.logger.Error("Failed to resolve claim for notification", zap.Int64("claim_id", claimID), zap.Error(err))
		return
	}

	for _, message := range decision.Notifications {
		if decision.NewStatus == models.StatusPendingManager {
			err = h.notifier.NotifyRole(ctx, claimID, models.RoleManager, message)
		} else {
			err = h.notifier.NotifyUser(ctx, claimID, claim.LecturerID, message)
		}
		if err != nil {
			h.logger.Error("Notification dispatch failed", zap.Int64("claim_id", claimID), zap.Error(err))
		}
	}
}

// ReviewBrief handles GET /api/claims/:id/brief. It drafts an advisory
// summary for the approver from the claim and its current validation result.
func (h *Handlers) ReviewBrief(c *gin.Context) {
	claimID, ok := idParam(c)
	if !ok {
		return
	}

	if h.advisor == nil {
		c.JSON(http.StatusNotImplemented, Response{Success: false, Error: "review advisor is not configured"})
		return
	}

	claim, err := h.claims.GetByID(c.Request.Context(), claimID)
	if err != nil {
		h.logger.Error("Failed to load claim", zap.Int64("claim_id", claimID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve claim"})
		return
	}
	if claim == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "claim not found"})
		return
	}

	result := h.validator.Validate(c.Request.Context(), claim)
	brief, err := h.advisor.ReviewBrief(c.Request.Context(), claim, result)
	if err != nil {
		h.logger.Error("Review brief generation failed", zap.Int64("claim_id", claimID), zap.Error(err))
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "review brief generation failed"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"brief":      brief,
			"validation": result,
		},
	})
}

// AttachDocument handles POST /api/claims/:id/documents
func (h *Handlers) AttachDocument(c *gin.Context) {
	claimID, ok := idParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to read upload"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to read upload"})
		return
	}

	doc, err := h.documents.Attach(c.Request.Context(), claimID, fileHeader.Filename, content)
	if err != nil {
		h.logger.Error("Document attach failed", zap.Int64("claim_id", claimID), zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: doc})
}

// ListDocuments handles GET /api/claims/:id/documents
func (h *Handlers) ListDocuments(c *gin.Context) {
	claimID, ok := idParam(c)
	if !ok {
		return
	}

	docs, err := h.documents.List(c.Request.Context(), claimID)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Int64("claim_id", claimID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve documents"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: docs})
}

// RemoveDocument handles DELETE /api/documents/:id
func (h *Handlers) RemoveDocument(c *gin.Context) {
	documentID, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.documents.Remove(c.Request.Context(), documentID); err != nil {
		h.logger.Error("Failed to remove document", zap.Int64("document_id", documentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to remove document"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ApproverQueue handles GET /api/approvers/:id/claims
func (h *Handlers) ApproverQueue(c *gin.Context) {
	approverID, ok := idParam(c)
	if !ok {
		return
	}

	approver, err := h.users.GetByID(c.Request.Context(), approverID)
	if err != nil {
		h.logger.Error("Failed to load approver", zap.Int64("approver_id", approverID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve approver"})
		return
	}
	if approver == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "approver not found"})
		return
	}

	claims, err := h.engine.GetClaimsForApprover(c.Request.Context(), approverID, approver.Role)
	if err != nil {
		h.logger.Error("Failed to list approver queue", zap.Int64("approver_id", approverID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve claims"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claims})
}

// ExportReport handles POST /api/reports/claims
func (h *Handlers) ExportReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	path, err := h.reports.Generate(c.Request.Context(), req.Status, req.Period)
	if err != nil {
		h.logger.Error("Report generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "report generation failed"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"path": path}})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid ID")
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}
