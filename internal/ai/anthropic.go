package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// anthropicClient is the concrete Insighter backed by the Anthropic Messages API.
type anthropicClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicClient returns an Insighter that calls the Anthropic API.
//   - apiKey: your ANTHROPIC_API_KEY
//   - model:  e.g. "claude-opus-4-6"
func NewAnthropicClient(apiKey, model string) Insighter {
	return &anthropicClient{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ─── ANTHROPIC API SHAPES ─────────────────────────────────────────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ─── INSIGHT RESULT JSON ──────────────────────────────────────────────────────
// The model is prompted to respond in this exact JSON shape so we can parse
// it without regex heuristics.

type insightJSON struct {
	Insights []string `json:"insights"`
	Trends   []string `json:"trends"`
}

// ─── IMPLEMENTATION ───────────────────────────────────────────────────────────

const systemPrompt = `You are an expert in Saudi Arabian healthcare revenue cycle management, NPHIES compliance, and AI adoption in healthcare.
You will receive one survey response from a healthcare professional describing their role, organization size, primary revenue cycle challenge, estimated monthly financial impact in SAR, and AI readiness.

Your job is to produce:
1. An insights array: 2-3 short, specific observations about this respondent's revenue cycle position and what their answers imply. Reference NPHIES, denial management, or Saudi market specifics where relevant.
2. A trends array: 1-2 statements placing the respondent in the context of current Saudi healthcare RCM market trends.

Respond ONLY with valid JSON matching this exact schema, no markdown fences, no preamble:
{
  "insights": ["...", "..."],
  "trends": ["..."]
}`

// Summarize calls the Anthropic API and returns AI-authored insights for the
// provided submission.
func (c *anthropicClient) Summarize(ctx context.Context, sub SubmissionContext) (InsightResult, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildPrompt(sub)},
		},
	}

	raw, err := c.call(ctx, reqBody)
	if err != nil {
		return InsightResult{}, err
	}

	// Strip any accidental markdown fences the model may have added.
	raw = stripFences(raw)

	var parsed insightJSON
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return InsightResult{}, fmt.Errorf("ai: parse response JSON: %w (raw: %.200s)", err, raw)
	}

	return InsightResult{
		Insights: parsed.Insights,
		Trends:   parsed.Trends,
	}, nil
}

// call sends one request to the Anthropic Messages API and returns the
// text content of the first content block.
func (c *anthropicClient) call(ctx context.Context, reqBody anthropicRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.anthropic.com/v1/messages",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB cap
	if err != nil {
		return "", fmt.Errorf("ai: read response body: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("ai: unmarshal response: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("ai: API error %s: %s", parsed.Error.Type, parsed.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("ai: no text content in response")
}

// buildPrompt serialises the submission into a compact prompt string.
func buildPrompt(sub SubmissionContext) string {
	var sb strings.Builder
	sb.WriteString("Survey response to analyse:\n\n")

	fmt.Fprintf(&sb, "role: %s\n", sub.Role)
	fmt.Fprintf(&sb, "organization_size: %s\n", sub.Organization)
	fmt.Fprintf(&sb, "primary_challenge: %s\n", sub.Challenge)
	fmt.Fprintf(&sb, "monthly_financial_impact_sar: %.0f\n", sub.FinancialSAR)
	fmt.Fprintf(&sb, "ai_readiness: %s\n", sub.Readiness)
	fmt.Fprintf(&sb, "qualification_score: %d/25, tier: %s\n", sub.Score, sub.Tier)

	return sb.String()
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
