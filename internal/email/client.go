// Package email defines the interface for transactional email delivery and
// provides a Resend-backed implementation.
package email

import "context"

// LeadAlertParams holds the data for the qualified-lead notification sent to
// the sales inbox when a critical or high tier submission arrives.
type LeadAlertParams struct {
	To string // sales inbox address

	Name         string
	Email        string
	Organization string
	Phone        string
	Location     string
	JobTitle     string

	RoleText      string
	OrgSizeText   string
	ChallengeText string
	ImpactText    string
	ImpactSAR     float64
	ReadinessText string

	Score           int
	MaxScore        int
	Tier            string
	Recommendations []string
}

// Sender is the interface the submission pipeline uses to send email.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	// SendLeadAlert notifies the sales inbox about a newly qualified lead.
	// Called best-effort after the submission is persisted; a failure is
	// logged and never surfaced to the respondent.
	SendLeadAlert(ctx context.Context, p LeadAlertParams) error
}

// Noop is the Sender used when no email provider is configured.
type Noop struct{}

func (Noop) SendLeadAlert(_ context.Context, _ LeadAlertParams) error { return nil }
