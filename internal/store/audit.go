package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// complianceFlags is stamped on every audit entry. The survey handles Saudi
// healthcare contact data, so all three regimes apply to every event.
var complianceFlags = []string{"GDPR", "HIPAA", "NPHIES"}

// AuditSink records compliance events. Appends are best-effort at call
// sites: a failed audit write is logged, never surfaced to the client.
type AuditSink interface {
	Append(ctx context.Context, entry AuditEntry) error
}

// AuditEntry is one compliance event.
type AuditEntry struct {
	ID              uuid.UUID
	Timestamp       time.Time
	EventType       string
	Action          string
	Details         pqtype.NullRawMessage
	Success         bool
	ComplianceFlags []string
}

// NewAuditEntry builds a successful entry stamped with the standard
// compliance flags. Details marshaling failure degrades to a null details
// column rather than losing the event.
func NewAuditEntry(eventType, action string, details any) AuditEntry {
	entry := AuditEntry{
		ID:              uuid.New(),
		Timestamp:       time.Now().UTC(),
		EventType:       eventType,
		Action:          action,
		Success:         true,
		ComplianceFlags: complianceFlags,
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = pqtype.NullRawMessage{RawMessage: raw, Valid: true}
		}
	}
	return entry
}

// Append writes one audit entry.
func (s *Store) Append(ctx context.Context, entry AuditEntry) error {
	flags, err := json.Marshal(entry.ComplianceFlags)
	if err != nil {
		return fmt.Errorf("store: append audit: %w", err)
	}

	const q = `
		INSERT INTO audit_log (id, timestamp, event_type, action, details, success, compliance_flags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = s.pool.ExecContext(ctx, q,
		entry.ID, entry.Timestamp, entry.EventType, entry.Action,
		entry.Details, entry.Success, flags,
	)
	if err != nil {
		return fmt.Errorf("store: append audit: %w", err)
	}
	return nil
}
