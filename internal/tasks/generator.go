// Package tasks turns an imported product into concrete marketing follow-up
// work: research, competitive analysis, and campaign planning tasks generated
// by a model and validated against a closed vocabulary.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"prodscout/internal/llm"
	"prodscout/internal/model"
)

const (
	// DefaultMaxTasks is used when the caller gives no budget.
	DefaultMaxTasks = 5
	maxTasksCap     = 10

	generateTimeout = 60 * time.Second
)

// Generator produces marketing tasks for a product.
type Generator struct {
	client llm.Client
	logger *slog.Logger
}

// NewGenerator creates a task generator.
func NewGenerator(client llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

type taskEnvelope struct {
	Tasks []model.MarketingTask `json:"tasks"`
}

// Generate asks for up to maxTasks marketing tasks grounded in the product
// and project context. Structurally invalid tasks are dropped. Model failure
// or an all-invalid response degrades to a deterministic fallback set, never
// to an error.
func (g *Generator) Generate(ctx context.Context, product model.Product, project *model.Project, maxTasks int) []model.MarketingTask {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}
	if maxTasks > maxTasksCap {
		maxTasks = maxTasksCap
	}

	resp, err := g.client.Generate(ctx, llm.Request{
		Prompt:   buildTaskPrompt(product, project, maxTasks),
		JSONMode: true,
		Timeout:  generateTimeout,
	})
	if err != nil {
		g.logger.Warn("task generation call failed, using fallback tasks",
			"product", product.Name,
			"error", err)
		return fallbackTasks(product)
	}

	var envelope taskEnvelope
	if err := json.Unmarshal([]byte(llm.CleanJSONResponse(resp.Text)), &envelope); err != nil {
		g.logger.Warn("failed to parse task generation response, using fallback tasks",
			"product", product.Name,
			"error", err)
		return fallbackTasks(product)
	}

	var valid []model.MarketingTask
	for i := range envelope.Tasks {
		if len(valid) >= maxTasks {
			break
		}
		t := envelope.Tasks[i]
		if !t.Valid() {
			g.logger.Warn("dropping structurally invalid task",
				"name", t.Name,
				"task_type", t.TaskType,
				"priority", t.Priority)
			continue
		}
		valid = append(valid, t)
	}

	if len(valid) == 0 {
		g.logger.Warn("no valid tasks generated, using fallback tasks",
			"product", product.Name)
		return fallbackTasks(product)
	}

	g.logger.Info("generated marketing tasks",
		"product", product.Name,
		"count", len(valid))
	return valid
}

// fallbackTasks are the generic research tasks used when the model cannot
// deliver product-specific ones.
func fallbackTasks(product model.Product) []model.MarketingTask {
	name := product.Name
	if name == "" {
		name = "this product"
	}

	return []model.MarketingTask{
		{
			Name:           fmt.Sprintf("Research 5 competitor products similar to %s", name),
			Description:    fmt.Sprintf("Find and analyze 5 competing products in the same category as %s on %s to compare pricing, ratings, and reviews.", name, product.Platform),
			TaskType:       model.TaskTypeMarketingResearch,
			Priority:       "high",
			MarketingFocus: "research",
			EstimatedHours: 4.0,
		},
		{
			Name:           fmt.Sprintf("Analyze competitive positioning of %s", name),
			Description:    fmt.Sprintf("Compare pricing, review sentiment, and sales volume of %s against its top 3 competitors to identify its market position and gaps worth exploiting.", name),
			TaskType:       model.TaskTypeCompetitiveAnalysis,
			Priority:       "high",
			MarketingFocus: "analysis",
			EstimatedHours: 3.0,
		},
	}
}

func buildTaskPrompt(product model.Product, project *model.Project, maxTasks int) string {
	var b strings.Builder

	b.WriteString("You are a marketing and market research expert for Vietnamese e-commerce.\n")
	b.WriteString("Create concrete, actionable tasks to research this competitor product and plan marketing campaigns against it.\n\n")

	b.WriteString("## Competitor product\n")
	fmt.Fprintf(&b, "- Name: %s\n", product.Name)
	fmt.Fprintf(&b, "- Platform: %s\n", product.Platform)
	fmt.Fprintf(&b, "- Price: %.0f VND\n", product.Price)
	if product.Brand != "" {
		fmt.Fprintf(&b, "- Brand: %s\n", product.Brand)
	}
	if product.Rating != nil {
		fmt.Fprintf(&b, "- Average rating: %.1f/5\n", *product.Rating)
	}
	if product.ReviewCount != nil {
		fmt.Fprintf(&b, "- Review count: %d\n", *product.ReviewCount)
	}
	if product.SalesCount != nil {
		fmt.Fprintf(&b, "- Units sold: %d\n", *product.SalesCount)
	}
	if len(product.Keywords) > 0 {
		fmt.Fprintf(&b, "- Keywords: %s\n", strings.Join(product.Keywords, ", "))
	}

	if project != nil {
		b.WriteString("\n## Project context\n")
		b.WriteString(project.PromptContext())
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nCreate AT MOST %d tasks. Each task must be specific, actionable, and focused on competitor research or marketing strategy.\n\n", maxTasks)
	b.WriteString("Respond with JSON only, in this exact shape:\n")
	b.WriteString(`{"tasks": [{"name": "short specific task name", "description": "detailed steps, data to collect, expected outcome", "task_type": "marketing_research|competitive_analysis|content_strategy|pricing_strategy|market_positioning", "priority": "low|medium|high", "estimated_hours": 2.5, "marketing_focus": "research|strategy|execution|analysis"}]}`)

	return b.String()
}
