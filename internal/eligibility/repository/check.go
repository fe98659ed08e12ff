package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
	"github.com/talentflow/talentflow-backend/pkg/database"
	"github.com/talentflow/talentflow-backend/pkg/errors"
)

// Check is a persisted eligibility check: the final assessment plus enough
// input context to audit it later. Checks are immutable once written.
type Check struct {
	ID            string         `db:"id" json:"id"`
	EmployeeID    string         `db:"employee_id" json:"employee_id"`
	Status        string         `db:"status" json:"status"`
	Reasons       pq.StringArray `db:"reasons" json:"reasons"`
	Summary       string         `db:"summary" json:"summary"`
	ConflictNote  *string        `db:"conflict_note" json:"conflict_note,omitempty"`
	PermitType    *string        `db:"permit_type" json:"permit_type,omitempty"`
	ValidTo       *time.Time     `db:"valid_to" json:"valid_to,omitempty"`
	DocumentCount int            `db:"document_count" json:"document_count"`
	Source        string         `db:"source" json:"source"` // manual or submission
	PerformedBy   string         `db:"performed_by" json:"performed_by"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// Check sources
const (
	SourceManual     = "manual"
	SourceSubmission = "submission"
)

// CheckRepository stores eligibility checks
type CheckRepository struct {
	db *database.DB
}

// NewCheckRepository creates a new check repository
func NewCheckRepository(db *database.DB) *CheckRepository {
	return &CheckRepository{db: db}
}

// NewCheck builds a persistable check from a final assessment.
func NewCheck(employeeID, source, performedBy string, assessment domain.FinalAssessment, facts domain.PermitFacts, documentCount int) *Check {
	c := &Check{
		ID:            uuid.New().String(),
		EmployeeID:    employeeID,
		Status:        string(assessment.Status),
		Reasons:       pq.StringArray(assessment.Reasons),
		Summary:       assessment.Summary,
		DocumentCount: documentCount,
		Source:        source,
		PerformedBy:   performedBy,
	}
	if assessment.ConflictNote != "" {
		note := assessment.ConflictNote
		c.ConflictNote = &note
	}
	if facts.PermitType != "" {
		pt := string(facts.PermitType)
		c.PermitType = &pt
	}
	c.ValidTo = facts.ValidTo
	return c
}

// Create inserts a check
func (r *CheckRepository) Create(ctx context.Context, check *Check) error {
	query := `
		INSERT INTO eligibility_checks (
			id, employee_id, status, reasons, summary, conflict_note,
			permit_type, valid_to, document_count, source, performed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := r.db.GetContext(ctx, &check.CreatedAt, query,
		check.ID, check.EmployeeID, check.Status, check.Reasons, check.Summary,
		check.ConflictNote, check.PermitType, check.ValidTo, check.DocumentCount,
		check.Source, check.PerformedBy,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}
	return nil
}

// GetByID fetches a single check
func (r *CheckRepository) GetByID(ctx context.Context, id string) (*Check, error) {
	var check Check
	query := `
		SELECT id, employee_id, status, reasons, summary, conflict_note,
		       permit_type, valid_to, document_count, source, performed_by, created_at
		FROM eligibility_checks
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &check, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("eligibility check")
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// ListByEmployee returns all checks for an employee, newest first.
func (r *CheckRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*Check, error) {
	var checks []*Check
	query := `
		SELECT id, employee_id, status, reasons, summary, conflict_note,
		       permit_type, valid_to, document_count, source, performed_by, created_at
		FROM eligibility_checks
		WHERE employee_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &checks, query, employeeID); err != nil {
		return nil, err
	}
	return checks, nil
}

// DeleteByEmployee removes all checks for an employee. Used by the data
// retention consumer when the staff service deletes an employee.
func (r *CheckRepository) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM eligibility_checks WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
