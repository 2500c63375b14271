package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Claim represents a lecturer's monthly hours-worked submission awaiting
// payment approval.
type Claim struct {
	ID                      int64           `json:"id"`
	LecturerID              int64           `json:"lecturer_id"`
	Period                  string          `json:"period"` // "YYYY-MM"
	HoursWorked             decimal.Decimal `json:"hours_worked"`
	HourlyRate              decimal.Decimal `json:"hourly_rate"`
	Status                  string          `json:"status"` // PENDING, PENDING_MANAGER, APPROVED, REJECTED, RETURNED
	SubmissionDate          time.Time       `json:"submission_date"`
	CoordinatorApprovalDate *time.Time      `json:"coordinator_approval_date,omitempty"`
	ManagerApprovalDate     *time.Time      `json:"manager_approval_date,omitempty"`
	LecturerNotes           string          `json:"lecturer_notes"`
	CoordinatorNotes        string          `json:"coordinator_notes"`
	ManagerNotes            string          `json:"manager_notes"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// TotalAmount returns hoursWorked x hourlyRate. The amount is derived on
// demand and never stored.
func (c *Claim) TotalAmount() decimal.Decimal {
	return c.HoursWorked.Mul(c.HourlyRate)
}

// SupportingDocument is an uploaded file backing a claim. Documents are soft
// deleted by clearing Active.
type SupportingDocument struct {
	ID         int64     `json:"id"`
	ClaimID    int64     `json:"claim_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	PageCount  int       `json:"page_count"`
	Active     bool      `json:"active"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Claim status constants
const (
	StatusPending        = "PENDING"
	StatusPendingManager = "PENDING_MANAGER"
	StatusApproved       = "APPROVED"
	StatusRejected       = "REJECTED"
	StatusReturned       = "RETURNED"
)

// periodLayout is the claim period token format.
const periodLayout = "2006-01"

// ParsePeriod parses a "YYYY-MM" period token into the first day of that
// month (UTC).
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse(periodLayout, period)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid claim period %q: %w", period, err)
	}
	return t, nil
}

// FormatPeriod renders a time as a "YYYY-MM" period token.
func FormatPeriod(t time.Time) string {
	return t.Format(periodLayout)
}
