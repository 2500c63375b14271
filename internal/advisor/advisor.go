package advisor

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
	"github.com/crestfield/lecturer-claims/internal/validation"
)

// chatCompleter is the slice of the OpenAI client the advisor uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Advisor drafts a review brief for claims the validation engine flags for
// manual review. The brief is advisory text for the approver; it never feeds
// back into the workflow decision.
type Advisor struct {
	client chatCompleter
	model  string
	temp   float32
	logger *zap.Logger
}

// New creates a new review advisor
func New(apiKey, model string, temperature float32, logger *zap.Logger) *Advisor {
	return &Advisor{
		client: openai.NewClient(apiKey),
		model:  model,
		temp:   temperature,
		logger: logger,
	}
}

// ReviewBrief asks the model to summarise the claim and its validation
// findings for the approver.
func (a *Advisor) ReviewBrief(ctx context.Context, claim *models.Claim, result *validation.Result) (string, error) {
	prompt := buildReviewPrompt(claim, result)

	a.logger.Debug("Requesting review brief",
		zap.Int64("claim_id", claim.ID),
		zap.Int("risk_score", result.RiskScore))

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temp,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an assistant to a university payroll approver. Summarise the claim and its automated check findings in plain English, flagging what the approver should verify before deciding. Keep it under 150 words.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.logger.Error("OpenAI API call failed", zap.Error(err))
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildReviewPrompt(claim *models.Claim, result *validation.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Claim %d from lecturer %d for period %s.\n", claim.ID, claim.LecturerID, claim.Period)
	fmt.Fprintf(&b, "Hours worked: %s, hourly rate: %s, total: %s.\n",
		claim.HoursWorked.String(), claim.HourlyRate.String(), claim.TotalAmount().String())
	fmt.Fprintf(&b, "Risk score: %d/100, recommended action: %s.\n", result.RiskScore, result.RecommendedAction)

	if len(result.Errors) > 0 {
		b.WriteString("Validation errors:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	if len(result.Warnings) > 0 {
		b.WriteString("Validation warnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
