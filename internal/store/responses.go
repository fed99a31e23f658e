package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// ResponseRecord is a flattened survey submission as stored in Postgres.
// Answer slots are nullable: a contact-only submission has no answers.
type ResponseRecord struct {
	ID              uuid.UUID
	Timestamp       time.Time
	ClientTimestamp sql.NullString

	ContactName         string
	ContactEmail        string
	ContactOrganization string
	ContactPhone        sql.NullString
	ContactLocation     sql.NullString
	ContactJobTitle     sql.NullString

	RoleValue sql.NullString
	RoleText  sql.NullString
	RoleScore int

	OrgSizeValue sql.NullString
	OrgSizeText  sql.NullString
	OrgSizeScore int

	ChallengeValue sql.NullString
	ChallengeText  sql.NullString
	ChallengeScore int

	ImpactValue sql.NullString
	ImpactText  sql.NullString
	ImpactSAR   sql.NullFloat64
	ImpactScore int

	ReadinessValue sql.NullString
	ReadinessText  sql.NullString
	ReadinessScore int

	TotalScore         int
	QualificationLevel string
	Recommendations    pqtype.NullRawMessage
	PriorityScore      int

	ProcessingStatus   string
	LanguagePreference string
	CreatedMonth       string
	Version            string
}

const responseColumns = `
	id, timestamp, client_timestamp,
	contact_name, contact_email, contact_organization,
	contact_phone, contact_location, contact_job_title,
	role_value, role_text, role_score,
	organization_size_value, organization_size_text, organization_size_score,
	primary_challenge_value, primary_challenge_text, primary_challenge_score,
	financial_impact_value, financial_impact_text, financial_impact_sar, financial_impact_score,
	ai_readiness_value, ai_readiness_text, ai_readiness_score,
	total_score, qualification_level, ai_recommendations, priority_score,
	processing_status, language_preference, created_month, version`

// InsertResponse persists one submission. CreatedMonth is derived from the
// record timestamp when unset, and the status/language/version defaults are
// applied here so callers only set what they know.
func (s *Store) InsertResponse(ctx context.Context, rec ResponseRecord) error {
	if rec.CreatedMonth == "" {
		rec.CreatedMonth = monthBucket(rec.Timestamp)
	}
	if rec.ProcessingStatus == "" {
		rec.ProcessingStatus = "processed"
	}
	if rec.LanguagePreference == "" {
		rec.LanguagePreference = "en"
	}
	if rec.Version == "" {
		rec.Version = "2.0"
	}

	const q = `
		INSERT INTO survey_responses (` + responseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25,
			$26, $27, $28, $29, $30, $31, $32, $33)`

	_, err := s.pool.ExecContext(ctx, q,
		rec.ID, rec.Timestamp, rec.ClientTimestamp,
		rec.ContactName, rec.ContactEmail, rec.ContactOrganization,
		rec.ContactPhone, rec.ContactLocation, rec.ContactJobTitle,
		rec.RoleValue, rec.RoleText, rec.RoleScore,
		rec.OrgSizeValue, rec.OrgSizeText, rec.OrgSizeScore,
		rec.ChallengeValue, rec.ChallengeText, rec.ChallengeScore,
		rec.ImpactValue, rec.ImpactText, rec.ImpactSAR, rec.ImpactScore,
		rec.ReadinessValue, rec.ReadinessText, rec.ReadinessScore,
		rec.TotalScore, rec.QualificationLevel, rec.Recommendations, rec.PriorityScore,
		rec.ProcessingStatus, rec.LanguagePreference, rec.CreatedMonth, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("store: insert response: %w", err)
	}
	return nil
}

// GetResponse fetches one submission by id. Returns ErrNotFound for
// an unknown id.
func (s *Store) GetResponse(ctx context.Context, id uuid.UUID) (ResponseRecord, error) {
	const q = `SELECT ` + responseColumns + ` FROM survey_responses WHERE id = $1`

	var rec ResponseRecord
	err := s.pool.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.Timestamp, &rec.ClientTimestamp,
		&rec.ContactName, &rec.ContactEmail, &rec.ContactOrganization,
		&rec.ContactPhone, &rec.ContactLocation, &rec.ContactJobTitle,
		&rec.RoleValue, &rec.RoleText, &rec.RoleScore,
		&rec.OrgSizeValue, &rec.OrgSizeText, &rec.OrgSizeScore,
		&rec.ChallengeValue, &rec.ChallengeText, &rec.ChallengeScore,
		&rec.ImpactValue, &rec.ImpactText, &rec.ImpactSAR, &rec.ImpactScore,
		&rec.ReadinessValue, &rec.ReadinessText, &rec.ReadinessScore,
		&rec.TotalScore, &rec.QualificationLevel, &rec.Recommendations, &rec.PriorityScore,
		&rec.ProcessingStatus, &rec.LanguagePreference, &rec.CreatedMonth, &rec.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ResponseRecord{}, ErrNotFound
	}
	if err != nil {
		return ResponseRecord{}, fmt.Errorf("store: get response: %w", err)
	}
	return rec, nil
}
