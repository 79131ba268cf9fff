package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admission-api/internal/models"
)

// PriorityRepository persists the ranked preference ledger.
type PriorityRepository struct {
	db *sqlx.DB
}

// NewPriorityRepository constructs the repository.
func NewPriorityRepository(db *sqlx.DB) *PriorityRepository {
	return &PriorityRepository{db: db}
}

// InsertTx stores one ranked preference.
func (r *PriorityRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.PriorityEntry) error {
	const query = `INSERT INTO priorities (applicant_id, program_code, priority_rank, cycle_date)
        VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, entry.ApplicantID, entry.ProgramCode, entry.PriorityRank, entry.CycleDate); err != nil {
		return fmt.Errorf("insert priority for applicant %d: %w", entry.ApplicantID, err)
	}
	return nil
}

// DeleteByProgramTx removes a program's priority batch for a cycle date so a
// re-import fully supersedes the previous one.
func (r *PriorityRepository) DeleteByProgramTx(ctx context.Context, tx *sqlx.Tx, programCode, cycleDate string) error {
	const query = `DELETE FROM priorities WHERE program_code = $1 AND cycle_date = $2`
	if _, err := tx.ExecContext(ctx, query, programCode, cycleDate); err != nil {
		return fmt.Errorf("clear priorities for %s: %w", programCode, err)
	}
	return nil
}

// ListByApplicantDateTx returns an applicant's preferences in rank order,
// most preferred first.
func (r *PriorityRepository) ListByApplicantDateTx(ctx context.Context, tx *sqlx.Tx, applicantID int64, cycleDate string) ([]models.PriorityEntry, error) {
	const query = `SELECT applicant_id, program_code, priority_rank, cycle_date::text AS cycle_date
        FROM priorities
        WHERE applicant_id = $1 AND cycle_date = $2
        ORDER BY priority_rank ASC`
	var entries []models.PriorityEntry
	if err := tx.SelectContext(ctx, &entries, query, applicantID, cycleDate); err != nil {
		return nil, fmt.Errorf("list priorities for applicant %d: %w", applicantID, err)
	}
	return entries, nil
}

// ListDetailsByApplicant returns all of an applicant's preferences joined
// with program names, most preferred and most recent first.
func (r *PriorityRepository) ListDetailsByApplicant(ctx context.Context, applicantID int64) ([]models.PriorityEntryDetail, error) {
	const query = `SELECT p.applicant_id, p.program_code, p.priority_rank, p.cycle_date::text AS cycle_date,
        COALESCE(pr.name, p.program_code) AS program_name
        FROM priorities p
        LEFT JOIN programs pr ON pr.code = p.program_code
        WHERE p.applicant_id = $1
        ORDER BY p.priority_rank ASC, p.cycle_date DESC`
	var details []models.PriorityEntryDetail
	if err := r.db.SelectContext(ctx, &details, query, applicantID); err != nil {
		return nil, fmt.Errorf("list priority details: %w", err)
	}
	return details, nil
}

// ListJoined returns the priority rows joined with applicant scores,
// filtered and ordered for the listing endpoint.
func (r *PriorityRepository) ListJoined(ctx context.Context, filter models.PriorityListFilter) ([]models.PriorityListRow, error) {
	query := `SELECT p.applicant_id, p.program_code, p.priority_rank,
        a.physics_ict, a.russian, a.math, a.achievements, a.total_score, a.consent,
        p.cycle_date::text AS cycle_date
        FROM priorities p
        LEFT JOIN applicants a ON a.applicant_id = p.applicant_id AND a.cycle_date = p.cycle_date`
	var conditions []string
	var args []interface{}

	if filter.ProgramCode != "" {
		conditions = append(conditions, fmt.Sprintf("p.program_code = $%d", len(args)+1))
		args = append(args, filter.ProgramCode)
	}
	if filter.CycleDate != "" {
		conditions = append(conditions, fmt.Sprintf("p.cycle_date = $%d", len(args)+1))
		args = append(args, filter.CycleDate)
	}
	if filter.ApplicantID > 0 {
		conditions = append(conditions, fmt.Sprintf("p.applicant_id = $%d", len(args)+1))
		args = append(args, filter.ApplicantID)
	}
	if filter.Consent != nil {
		conditions = append(conditions, fmt.Sprintf("a.consent = $%d", len(args)+1))
		args = append(args, *filter.Consent)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.total_score DESC, p.applicant_id ASC"

	var rows []models.PriorityListRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list joined priorities: %w", err)
	}
	return rows, nil
}

// DeleteAllTx clears the priority ledger. Used only by the full reset.
func (r *PriorityRepository) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM priorities`); err != nil {
		return fmt.Errorf("clear priorities: %w", err)
	}
	return nil
}
