package validation

// Recommended action labels, derived from the final risk score.
const (
	ActionManualReview     = "Manual Review Required"
	ActionReviewCaution    = "Review with Caution"
	ActionApproveWithNotes = "Approve with Notes"
	ActionAutoApprove      = "Auto-Approve"
)

// Risk score increments per advisory rule.
const (
	riskRateMismatch     = 20
	riskHighHours        = 15
	riskHighAmount       = 25
	riskNoDocuments      = 10
	riskDuplicatePeriod  = 50
	riskStalePeriod      = 10
	manualReviewScore    = 50
	cautionScore         = 30
	autoApproveRiskLimit = 30
)

// Result is the outcome of a validation pass over a single claim. It is
// computed fresh on every call and never cached; claim and document state may
// have changed between calls.
type Result struct {
	IsValid           bool     `json:"is_valid"`
	Errors            []string `json:"errors"`
	Warnings          []string `json:"warnings"`
	RiskScore         int      `json:"risk_score"`
	RecommendedAction string   `json:"recommended_action"`
}

func newResult() *Result {
	return &Result{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}
}

// addError records a hard rule violation. Errors block approval consideration
// by MeetsApprovalCriteria but never veto a human decision.
func (r *Result) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

// addWarning records an advisory with its risk increment.
func (r *Result) addWarning(msg string, risk int) {
	r.Warnings = append(r.Warnings, msg)
	r.RiskScore += risk
}

// HasWarnings reports whether any advisory fired.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// finalize derives the recommended action from the accumulated risk score.
// It runs once, after every rule has had a chance to fire, so scores from
// multiple warnings accumulate before the ladder is consulted.
func (r *Result) finalize() {
	switch {
	case r.RiskScore >= manualReviewScore:
		r.RecommendedAction = ActionManualReview
	case r.RiskScore >= cautionScore:
		r.RecommendedAction = ActionReviewCaution
	case r.RiskScore > 0:
		r.RecommendedAction = ActionApproveWithNotes
	default:
		r.RecommendedAction = ActionAutoApprove
	}
}
