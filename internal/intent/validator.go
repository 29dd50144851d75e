package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"prodscout/internal/llm"
	"prodscout/internal/model"
)

const validateTimeout = 30 * time.Second

// Validator double-checks extracted criteria against the user's original
// text. A negative verdict aborts the pipeline; downstream logic never
// overrides it.
type Validator struct {
	client llm.Client
}

// NewValidator creates a criteria validator.
func NewValidator(client llm.Client) *Validator {
	return &Validator{client: client}
}

// Validate asks the model whether the structured criteria still represents
// the original text. Any failure to obtain a clear positive verdict,
// including transport failure after retries, counts as invalid.
func (v *Validator) Validate(ctx context.Context, userText string, criteria *model.FilterCriteria) (bool, string) {
	criteriaJSON, err := json.MarshalIndent(criteria, "", "  ")
	if err != nil {
		return false, fmt.Sprintf("could not serialize criteria: %v", err)
	}

	prompt := fmt.Sprintf(`You verify that extracted filter criteria match the user's intent.

User text:
%q

Extracted criteria:
%s

Does the criteria faithfully reflect the user's filtering requirements?
Respond with JSON only:
{"is_valid": true or false, "reason": "explanation when invalid"}`,
		userText, criteriaJSON)

	resp, err := v.client.Generate(ctx, llm.Request{
		Prompt:   prompt,
		JSONMode: true,
		Timeout:  validateTimeout,
	})
	if err != nil {
		slog.Error("criteria validation call failed", "error", err)
		return false, fmt.Sprintf("could not validate criteria: %v", err)
	}

	var verdict struct {
		IsValid bool   `json:"is_valid"`
		Reason  string `json:"reason"`
	}
	cleaned := llm.CleanJSONResponse(resp.Text)
	if err := json.Unmarshal([]byte(cleaned), &verdict); err != nil {
		return false, "could not parse validation response"
	}

	if !verdict.IsValid {
		reason := verdict.Reason
		if reason == "" {
			reason = "the extracted criteria does not match the request"
		}
		return false, reason
	}

	return true, ""
}
