package model

import "time"

// Marketing task categories the generator is allowed to produce.
const (
	TaskTypeMarketingResearch   = "marketing_research"
	TaskTypeCompetitiveAnalysis = "competitive_analysis"
	TaskTypeContentStrategy     = "content_strategy"
	TaskTypePricingStrategy     = "pricing_strategy"
	TaskTypeMarketPositioning   = "market_positioning"
)

// ValidTaskTypes is the closed set accepted from the model.
var ValidTaskTypes = map[string]bool{
	TaskTypeMarketingResearch:   true,
	TaskTypeCompetitiveAnalysis: true,
	TaskTypeContentStrategy:     true,
	TaskTypePricingStrategy:     true,
	TaskTypeMarketPositioning:   true,
}

// ValidTaskPriorities is the closed priority set.
var ValidTaskPriorities = map[string]bool{
	"low": true, "medium": true, "high": true,
}

// MarketingTask is a generated follow-up action for an imported product.
type MarketingTask struct {
	CreatedAt      time.Time `json:"-"`
	ID             string    `json:"-"`
	ProductID      string    `json:"-"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	TaskType       string    `json:"task_type"`
	Priority       string    `json:"priority"`
	MarketingFocus string    `json:"marketing_focus"`
	EstimatedHours float64   `json:"estimated_hours"`
}

// Valid reports whether the task has the structure required for persistence.
func (t *MarketingTask) Valid() bool {
	return t.Name != "" && t.Description != "" &&
		ValidTaskTypes[t.TaskType] && ValidTaskPriorities[t.Priority]
}
