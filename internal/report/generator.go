package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// ClaimLister retrieves claims for reporting.
type ClaimLister interface {
	ListForReport(ctx context.Context, status, period string) ([]*models.Claim, error)
}

// UserReader resolves lecturer names for the report rows.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Generator produces the HR claims report as an Excel workbook.
type Generator struct {
	claims    ClaimLister
	users     UserReader
	outputDir string
	logger    *zap.Logger
}

// NewGenerator creates a new report generator
func NewGenerator(claims ClaimLister, users UserReader, outputDir string, logger *zap.Logger) *Generator {
	return &Generator{
		claims:    claims,
		users:     users,
		outputDir: outputDir,
		logger:    logger,
	}
}

var reportHeaders = []string{
	"Claim ID", "Lecturer", "Period", "Hours Worked", "Hourly Rate",
	"Total Amount", "Status", "Submitted", "Coordinator Approved", "Manager Approved",
}

// Generate writes a claims report filtered by status and/or period (either
// may be empty) and returns the file path.
func (g *Generator) Generate(ctx context.Context, status, period string) (string, error) {
	claims, err := g.claims.ListForReport(ctx, status, period)
	if err != nil {
		return "", fmt.Errorf("list claims: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Claims"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	for col, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	f.SetColWidth(sheet, "A", "J", 18)

	for i, claim := range claims {
		row := i + 2
		lecturerName := fmt.Sprintf("lecturer %d", claim.LecturerID)
		if lecturer, err := g.users.GetByID(ctx, claim.LecturerID); err == nil && lecturer != nil {
			lecturerName = lecturer.Name
		}

		values := []interface{}{
			claim.ID,
			lecturerName,
			claim.Period,
			claim.HoursWorked.String(),
			claim.HourlyRate.String(),
			claim.TotalAmount().String(),
			claim.Status,
			claim.SubmissionDate.Format("2006-01-02"),
			formatDate(claim.CoordinatorApprovalDate),
			formatDate(claim.ManagerApprovalDate),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, value)
		}
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("claims_report_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	g.logger.Info("Claims report generated",
		zap.String("path", path),
		zap.Int("claims", len(claims)),
		zap.String("status_filter", status),
		zap.String("period_filter", period))

	return path, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
