package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// fallbackInsighter wraps two Insighter implementations. It calls the primary
// first; if that returns an error it logs the failure and tries the secondary.
// This gives you Anthropic as the default with DeepSeek as the safety net
// (or vice versa — the choice is made in main.go).
type fallbackInsighter struct {
	primary   Insighter
	secondary Insighter
	logger    *slog.Logger
}

// NewFallbackInsighter returns an Insighter that calls primary and, on
// failure, falls back to secondary. Either argument may be nil — if primary
// is nil it goes straight to secondary; if secondary is nil and primary
// fails, the primary error is returned directly.
func NewFallbackInsighter(primary, secondary Insighter, logger *slog.Logger) Insighter {
	return &fallbackInsighter{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Summarize tries the primary Insighter. If it fails and a secondary is
// configured, it logs the primary error and tries the secondary.
func (f *fallbackInsighter) Summarize(ctx context.Context, sub SubmissionContext) (InsightResult, error) {
	if f.primary != nil {
		result, err := f.primary.Summarize(ctx, sub)
		if err == nil {
			return result, nil
		}
		f.logger.Warn("ai: primary insighter failed, trying secondary",
			"error", err,
			"tier", sub.Tier,
		)
		if f.secondary == nil {
			return InsightResult{}, fmt.Errorf("ai: primary failed and no secondary configured: %w", err)
		}
	}

	return f.secondary.Summarize(ctx, sub)
}

// Disabled is the Insighter used when AI analysis is switched off. It returns
// an empty result so the pipeline serves responses without commentary.
type Disabled struct{}

func (Disabled) Summarize(_ context.Context, _ SubmissionContext) (InsightResult, error) {
	return InsightResult{}, nil
}
