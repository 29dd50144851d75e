package model

import (
	"fmt"
	"strings"
	"time"
)

// Project is the unit products are discovered for. The pipeline treats it as
// a read-only snapshot; only storage mutates it.
type Project struct {
	CreatedAt             time.Time
	ID                    string
	Name                  string
	Description           string
	TargetProductName     string
	TargetProductCategory string
	Currency              string
	Status                string
	PipelineType          string
	TargetBudgetRange     float64
}

// Complete reports whether the project carries enough context for discovery.
// A project without a target product cannot ground the intent parser.
func (p *Project) Complete() bool {
	return strings.TrimSpace(p.TargetProductName) != ""
}

// PromptContext renders the project snapshot for inclusion in model prompts.
func (p *Project) PromptContext() string {
	currency := p.Currency
	if currency == "" {
		currency = "VND"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project name: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(&b, "Target product: %s\n", p.TargetProductName)
	if p.TargetProductCategory != "" {
		fmt.Fprintf(&b, "Target category: %s\n", p.TargetProductCategory)
	}
	if p.TargetBudgetRange > 0 {
		fmt.Fprintf(&b, "Budget range: %.0f %s\n", p.TargetBudgetRange, currency)
	}
	if p.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n", p.Status)
	}
	if p.PipelineType != "" {
		fmt.Fprintf(&b, "Pipeline: %s\n", p.PipelineType)
	}
	return b.String()
}
