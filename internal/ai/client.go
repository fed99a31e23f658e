// Package ai defines the interface for AI-generated submission insights and
// provides Anthropic- and DeepSeek-backed implementations.
package ai

import "context"

// SubmissionContext is the qualified-lead summary handed to the model. Only
// answer values and aggregate numbers cross the wire — never contact details.
type SubmissionContext struct {
	Role         string
	Organization string
	Challenge    string
	FinancialSAR float64
	Readiness    string
	Score        int
	Tier         string
}

// InsightResult is the structured output from a successful Summarize call.
type InsightResult struct {
	// Insights are 2-3 short observations about the respondent's revenue
	// cycle position. May be nil if the call failed or AI is disabled.
	Insights []string

	// Trends are 1-2 market-context statements relevant to the respondent's
	// segment.
	Trends []string
}

// Insighter is the interface the submission pipeline uses to enrich a
// response with AI commentary.
// The concrete implementations live in anthropic.go and deepseek.go.
// Tests inject a stub that returns canned responses.
type Insighter interface {
	// Summarize accepts one submission context and returns AI-authored
	// insights and trends.
	//
	// Implementations must be safe to call concurrently.
	// A non-nil error means the call failed; the pipeline serves the
	// response without AI commentary.
	Summarize(ctx context.Context, sub SubmissionContext) (InsightResult, error)
}
