package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// Mock collaborators

type mockLecturerReader struct {
	getLecturerFunc func(ctx context.Context, id int64) (*models.User, error)
}

func (m *mockLecturerReader) GetLecturer(ctx context.Context, id int64) (*models.User, error) {
	if m.getLecturerFunc != nil {
		return m.getLecturerFunc(ctx, id)
	}
	rate := decimal.NewFromInt(50)
	return &models.User{ID: id, Role: models.RoleLecturer, DefaultHourlyRate: &rate}, nil
}

type mockDocumentCounter struct {
	countFunc func(ctx context.Context, claimID int64) (int, error)
}

func (m *mockDocumentCounter) CountActiveDocuments(ctx context.Context, claimID int64) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, claimID)
	}
	return 1, nil
}

type mockSiblingFinder struct {
	hasDuplicateFunc func(ctx context.Context, lecturerID int64, period string, excludeClaimID int64) (bool, error)
}

func (m *mockSiblingFinder) HasDuplicateClaim(ctx context.Context, lecturerID int64, period string, excludeClaimID int64) (bool, error) {
	if m.hasDuplicateFunc != nil {
		return m.hasDuplicateFunc(ctx, lecturerID, period, excludeClaimID)
	}
	return false, nil
}

func newTestEngine() *Engine {
	return NewEngine(&mockLecturerReader{}, &mockDocumentCounter{}, &mockSiblingFinder{}, zap.NewNop())
}

func cleanClaim() *models.Claim {
	return &models.Claim{
		ID:          1,
		LecturerID:  10,
		Period:      "2026-07",
		HoursWorked: decimal.NewFromInt(40),
		HourlyRate:  decimal.NewFromInt(50),
		Status:      models.StatusPending,
	}
}

func TestValidate_CleanClaim(t *testing.T) {
	engine := newTestEngine()

	result := engine.Validate(context.Background(), cleanClaim())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 0, result.RiskScore)
	assert.Equal(t, ActionAutoApprove, result.RecommendedAction)
}

func TestValidate_QuantityBounds(t *testing.T) {
	tests := []struct {
		name      string
		hours     string
		rate      string
		wantValid bool
	}{
		{name: "hours at lower bound", hours: "0.1", rate: "50", wantValid: true},
		{name: "hours below lower bound", hours: "0.09", rate: "50", wantValid: false},
		{name: "hours at upper bound", hours: "744", rate: "50", wantValid: true},
		{name: "hours above upper bound", hours: "744.01", rate: "50", wantValid: false},
		{name: "rate at lower bound", hours: "40", rate: "1", wantValid: true},
		{name: "rate below lower bound", hours: "40", rate: "0.99", wantValid: false},
		{name: "rate at upper bound", hours: "40", rate: "9999.99", wantValid: true},
		{name: "rate above upper bound", hours: "40", rate: "10000", wantValid: false},
		{name: "zero hours", hours: "0", rate: "50", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A nil default rate keeps the baseline comparison out of the way
			// for boundary rates.
			engine := NewEngine(&mockLecturerReader{
				getLecturerFunc: func(ctx context.Context, id int64) (*models.User, error) {
					return &models.User{ID: id, Role: models.RoleLecturer}, nil
				},
			}, &mockDocumentCounter{}, &mockSiblingFinder{}, zap.NewNop())

			claim := cleanClaim()
			claim.HoursWorked = decimal.RequireFromString(tt.hours)
			claim.HourlyRate = decimal.RequireFromString(tt.rate)

			result := engine.Validate(context.Background(), claim)
			assert.Equal(t, tt.wantValid, result.IsValid)
		})
	}
}

func TestValidate_RateMismatchWarning(t *testing.T) {
	engine := newTestEngine()

	claim := cleanClaim()
	claim.HourlyRate = decimal.NewFromInt(60) // default is 50

	result := engine.Validate(context.Background(), claim)

	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 20, result.RiskScore)
	assert.Equal(t, ActionApproveWithNotes, result.RecommendedAction)
}

func TestValidate_RateBaselineSkips(t *testing.T) {
	tests := []struct {
		name     string
		lecturer func(ctx context.Context, id int64) (*models.User, error)
	}{
		{
			name: "lookup failure skips comparison",
			lecturer: func(ctx context.Context, id int64) (*models.User, error) {
				return nil, errors.New("db down")
			},
		},
		{
			name: "missing lecturer skips comparison",
			lecturer: func(ctx context.Context, id int64) (*models.User, error) {
				return nil, nil
			},
		},
		{
			name: "no default rate skips comparison",
			lecturer: func(ctx context.Context, id int64) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleLecturer}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&mockLecturerReader{getLecturerFunc: tt.lecturer},
				&mockDocumentCounter{}, &mockSiblingFinder{}, zap.NewNop())

			claim := cleanClaim()
			claim.HourlyRate = decimal.NewFromInt(500)

			result := engine.Validate(context.Background(), claim)
			assert.True(t, result.IsValid)
			assert.Empty(t, result.Warnings)
			assert.Equal(t, 0, result.RiskScore)
		})
	}
}

func TestValidate_HighWorkloadWarnings(t *testing.T) {
	engine := newTestEngine()

	claim := cleanClaim()
	claim.HoursWorked = decimal.NewFromInt(250) // above 200, total 12,500

	result := engine.Validate(context.Background(), claim)

	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 15, result.RiskScore)
}

func TestValidate_HighAmountWarning(t *testing.T) {
	engine := newTestEngine()

	claim := cleanClaim()
	claim.HoursWorked = decimal.NewFromInt(200) // not above the hours threshold
	claim.HourlyRate = decimal.NewFromInt(50)

	// 200 x 50 = 10,000: no warning.
	result := engine.Validate(context.Background(), claim)
	assert.Equal(t, 0, result.RiskScore)

	// 200 x 501 = 100,200: above the 100,000 bound, plus a rate mismatch.
	claim.HourlyRate = decimal.NewFromInt(501)
	result = engine.Validate(context.Background(), claim)
	assert.True(t, result.IsValid)
	assert.Equal(t, 25+20, result.RiskScore)
	assert.Equal(t, ActionReviewCaution, result.RecommendedAction)
}

func TestValidate_NoDocumentsWarning(t *testing.T) {
	engine := NewEngine(&mockLecturerReader{}, &mockDocumentCounter{
		countFunc: func(ctx context.Context, claimID int64) (int, error) { return 0, nil },
	}, &mockSiblingFinder{}, zap.NewNop())

	result := engine.Validate(context.Background(), cleanClaim())

	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 10, result.RiskScore)
}

func TestValidate_DocumentCountFailureSkips(t *testing.T) {
	engine := NewEngine(&mockLecturerReader{}, &mockDocumentCounter{
		countFunc: func(ctx context.Context, claimID int64) (int, error) { return 0, errors.New("db down") },
	}, &mockSiblingFinder{}, zap.NewNop())

	result := engine.Validate(context.Background(), cleanClaim())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
}

func TestValidate_DuplicatePeriod(t *testing.T) {
	engine := NewEngine(&mockLecturerReader{}, &mockDocumentCounter{}, &mockSiblingFinder{
		hasDuplicateFunc: func(ctx context.Context, lecturerID int64, period string, excludeClaimID int64) (bool, error) {
			return true, nil
		},
	}, zap.NewNop())

	result := engine.Validate(context.Background(), cleanClaim())

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "another active claim")
	assert.Equal(t, 50, result.RiskScore)
	assert.Equal(t, ActionManualReview, result.RecommendedAction)
}

func TestValidate_DuplicateLookupFailureIsError(t *testing.T) {
	// Unlike the advisory lookups, a failed duplicate check must not pass the
	// claim through.
	engine := NewEngine(&mockLecturerReader{}, &mockDocumentCounter{}, &mockSiblingFinder{
		hasDuplicateFunc: func(ctx context.Context, lecturerID int64, period string, excludeClaimID int64) (bool, error) {
			return false, errors.New("db down")
		},
	}, zap.NewNop())

	result := engine.Validate(context.Background(), cleanClaim())

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "system error during validation", result.Errors[0])
}

func TestValidate_AccumulatedRisk(t *testing.T) {
	// Maximum quantities with a mismatched rate and no documents: every
	// advisory rule fires and the score crosses the manual-review line.
	engine := NewEngine(&mockLecturerReader{}, &mockDocumentCounter{
		countFunc: func(ctx context.Context, claimID int64) (int, error) { return 0, nil },
	}, &mockSiblingFinder{}, zap.NewNop())

	claim := cleanClaim()
	claim.HoursWorked = decimal.NewFromInt(744)
	claim.HourlyRate = decimal.RequireFromString("9999.99")

	result := engine.Validate(context.Background(), claim)

	assert.True(t, result.IsValid, "boundary quantities are valid")
	assert.Len(t, result.Warnings, 4)
	assert.Equal(t, 20+15+25+10, result.RiskScore)
	assert.Equal(t, ActionManualReview, result.RecommendedAction)
}

func TestAutoVerify_PeriodWindow(t *testing.T) {
	reference := time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		period      string
		wantValid   bool
		wantRisk    int
		wantWarning bool
	}{
		{name: "current month", period: "2026-07", wantValid: true},
		{name: "previous month", period: "2026-06", wantValid: true},
		{name: "three months back is allowed", period: "2026-04", wantValid: true},
		{name: "four months back is stale", period: "2026-03", wantValid: true, wantRisk: 10, wantWarning: true},
		{name: "next month is rejected", period: "2026-08", wantValid: false},
		{name: "far future is rejected", period: "2027-01", wantValid: false},
		{name: "malformed period is rejected", period: "July 2026", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine()
			engine.now = func() time.Time { return reference }

			claim := cleanClaim()
			claim.Period = tt.period

			result := engine.AutoVerify(context.Background(), claim)

			assert.Equal(t, tt.wantValid, result.IsValid)
			assert.Equal(t, tt.wantRisk, result.RiskScore)
			assert.Equal(t, tt.wantWarning, result.HasWarnings())
		})
	}
}

func TestAutoVerify_RunsFullRuleSet(t *testing.T) {
	reference := time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC)

	engine := NewEngine(&mockLecturerReader{}, &mockDocumentCounter{
		countFunc: func(ctx context.Context, claimID int64) (int, error) { return 0, nil },
	}, &mockSiblingFinder{}, zap.NewNop())
	engine.now = func() time.Time { return reference }

	claim := cleanClaim()
	claim.Period = "2026-02" // stale
	claim.HourlyRate = decimal.NewFromInt(60)

	result := engine.AutoVerify(context.Background(), claim)

	assert.True(t, result.IsValid)
	assert.Len(t, result.Warnings, 3) // rate mismatch, no documents, stale period
	assert.Equal(t, 20+10+10, result.RiskScore)
	assert.Equal(t, ActionReviewCaution, result.RecommendedAction)
}

func TestMeetsApprovalCriteria(t *testing.T) {
	tests := []struct {
		name        string
		docs        int
		docErr      error
		defaultRate string
		hours       string
		rate        string
		duplicate   bool
		want        bool
	}{
		{name: "clean claim qualifies", docs: 1, defaultRate: "50", hours: "40", rate: "50", want: true},
		{name: "no documents disqualifies", docs: 0, defaultRate: "50", hours: "40", rate: "50", want: false},
		{name: "document count failure disqualifies", docs: 1, docErr: errors.New("db down"), defaultRate: "50", hours: "40", rate: "50", want: false},
		{name: "risk at caution threshold disqualifies", docs: 1, defaultRate: "50", hours: "250", rate: "60", want: false}, // 20+15 = 35
		{name: "invalid claim disqualifies", docs: 1, defaultRate: "50", hours: "40", rate: "50", duplicate: true, want: false},
		{name: "risk under threshold qualifies", docs: 1, defaultRate: "50", hours: "40", rate: "60", want: true}, // 20
		// 180 x 600 = 108,000: only the high-amount warning fires (25 < 30)
		// but the total bound itself disqualifies.
		{name: "total above amount bound disqualifies", docs: 1, defaultRate: "600", hours: "180", rate: "600", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&mockLecturerReader{
				getLecturerFunc: func(ctx context.Context, id int64) (*models.User, error) {
					rate := decimal.RequireFromString(tt.defaultRate)
					return &models.User{ID: id, Role: models.RoleLecturer, DefaultHourlyRate: &rate}, nil
				},
			}, &mockDocumentCounter{
				countFunc: func(ctx context.Context, claimID int64) (int, error) { return tt.docs, tt.docErr },
			}, &mockSiblingFinder{
				hasDuplicateFunc: func(ctx context.Context, lecturerID int64, period string, excludeClaimID int64) (bool, error) {
					return tt.duplicate, nil
				},
			}, zap.NewNop())

			claim := cleanClaim()
			claim.HoursWorked = decimal.RequireFromString(tt.hours)
			claim.HourlyRate = decimal.RequireFromString(tt.rate)

			assert.Equal(t, tt.want, engine.MeetsApprovalCriteria(context.Background(), claim))
		})
	}
}

func TestFinalize_ActionLadder(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{score: 0, want: ActionAutoApprove},
		{score: 1, want: ActionApproveWithNotes},
		{score: 29, want: ActionApproveWithNotes},
		{score: 30, want: ActionReviewCaution},
		{score: 49, want: ActionReviewCaution},
		{score: 50, want: ActionManualReview},
		{score: 120, want: ActionManualReview},
	}

	for _, tt := range tests {
		res := newResult()
		res.RiskScore = tt.score
		res.finalize()
		assert.Equal(t, tt.want, res.RecommendedAction, "score %d", tt.score)
	}
}
