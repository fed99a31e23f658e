package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

// resendClient is the concrete Sender backed by the Resend API.
type resendClient struct {
	apiKey     string
	fromAddr   string // e.g. "surveys@brainsait.com"
	fromName   string // e.g. "BrainSAIT Research"
	httpClient *http.Client
}

// NewResendClient returns a Sender that delivers email via Resend.
func NewResendClient(apiKey, fromAddr, fromName string) Sender {
	return &resendClient{
		apiKey:   apiKey,
		fromAddr: fromAddr,
		fromName: fromName,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Name       string `json:"name"`
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	} `json:"error"`
}

// ─── SENDER IMPLEMENTATION ────────────────────────────────────────────────────

// SendLeadAlert sends the qualified-lead summary to the sales inbox.
func (c *resendClient) SendLeadAlert(ctx context.Context, p LeadAlertParams) error {
	subject := fmt.Sprintf("Qualified Lead (%s): %s — %s", p.Tier, p.Name, p.Organization)

	return c.send(ctx, p.To, subject, leadAlertHTML(p))
}

// ─── HTTP SEND ────────────────────────────────────────────────────────────────

func (c *resendClient) send(ctx context.Context, to, subject, htmlBody string) error {
	from := fmt.Sprintf("%s <%s>", c.fromName, c.fromAddr)

	reqBody := resendRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("email: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.resend.com/emails",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return fmt.Errorf("email: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("email: read response: %w", err)
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return fmt.Errorf("email: unmarshal response (status %d): %w", resp.StatusCode, err)
	}

	if parsed.Error != nil {
		return fmt.Errorf("email: Resend error %s: %s", parsed.Error.Name, parsed.Error.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	return nil
}

// ─── HTML TEMPLATE ────────────────────────────────────────────────────────────

func leadAlertHTML(p LeadAlertParams) string {
	esc := html.EscapeString

	row := func(label, value string) string {
		if value == "" {
			return ""
		}
		return fmt.Sprintf(
			`<tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">%s</td><td style="padding: 4px 0;">%s</td></tr>`,
			esc(label), esc(value))
	}

	var contact strings.Builder
	contact.WriteString(row("Name", p.Name))
	contact.WriteString(row("Job Title", p.JobTitle))
	contact.WriteString(row("Organization", p.Organization))
	contact.WriteString(row("Email", p.Email))
	contact.WriteString(row("Phone", p.Phone))
	contact.WriteString(row("Location", p.Location))

	var answers strings.Builder
	answers.WriteString(row("Role", p.RoleText))
	answers.WriteString(row("Organization Size", p.OrgSizeText))
	answers.WriteString(row("Primary Challenge", p.ChallengeText))
	impact := p.ImpactText
	if p.ImpactSAR > 0 {
		impact = fmt.Sprintf("%s (~%.0f SAR/month)", p.ImpactText, p.ImpactSAR)
	}
	answers.WriteString(row("Financial Impact", impact))
	answers.WriteString(row("AI Readiness", p.ReadinessText))

	var recs strings.Builder
	for _, r := range p.Recommendations {
		fmt.Fprintf(&recs, `<li style="margin-bottom: 4px;">%s</li>`, esc(r))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2 style="margin-bottom: 8px;">New Qualified Lead — %s</h2>
  <p style="font-size: 18px;">Score: <strong>%d/%d</strong></p>
  <h3 style="margin-bottom: 4px;">Contact</h3>
  <table style="font-size: 14px; border-collapse: collapse;">%s</table>
  <h3 style="margin: 24px 0 4px;">Survey Answers</h3>
  <table style="font-size: 14px; border-collapse: collapse;">%s</table>
  <h3 style="margin: 24px 0 4px;">Recommendations</h3>
  <ul style="font-size: 14px; padding-left: 20px;">%s</ul>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 32px 0;">
  <p style="color: #9ca3af; font-size: 12px;">
    BrainSAIT Healthcare RCM Survey · Automated lead alert
  </p>
</body>
</html>`, esc(strings.ToUpper(p.Tier)), p.Score, p.MaxScore,
		contact.String(), answers.String(), recs.String())
}
