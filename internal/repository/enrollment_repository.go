package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admission-api/internal/models"
)

// EnrollmentRepository persists enrollment assignments produced by the
// simulation engine. Rows are written only inside a simulation transaction
// and cleared only by explicit resets.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// InsertTx records one assignment within the simulation transaction.
func (r *EnrollmentRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, assignment *models.EnrollmentAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	const query = `INSERT INTO enrollments (id, applicant_id, program_code, priority_rank, total_score, cycle_date)
        VALUES (:id, :applicant_id, :program_code, :priority_rank, :total_score, :cycle_date)`
	if _, err := tx.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("insert assignment for applicant %d: %w", assignment.ApplicantID, err)
	}
	return nil
}

// DeleteByDateTx clears all assignments for a cycle date ahead of a fresh
// simulation run.
func (r *EnrollmentRepository) DeleteByDateTx(ctx context.Context, tx *sqlx.Tx, cycleDate string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE cycle_date = $1`, cycleDate); err != nil {
		return fmt.Errorf("clear assignments for %s: %w", cycleDate, err)
	}
	return nil
}

// DeleteByProgramTx clears a program's assignments for a cycle date. Part of
// the ingest supersede step.
func (r *EnrollmentRepository) DeleteByProgramTx(ctx context.Context, tx *sqlx.Tx, programCode, cycleDate string) error {
	const query = `DELETE FROM enrollments WHERE program_code = $1 AND cycle_date = $2`
	if _, err := tx.ExecContext(ctx, query, programCode, cycleDate); err != nil {
		return fmt.Errorf("clear assignments for %s: %w", programCode, err)
	}
	return nil
}

// ListByProgramAndDate enumerates admitted applicants for a program in the
// stable reporting order: score descending, rank ascending, id ascending.
func (r *EnrollmentRepository) ListByProgramAndDate(ctx context.Context, programCode, cycleDate string) ([]models.EnrollmentAssignment, error) {
	const query = `SELECT id, applicant_id, program_code, priority_rank, total_score, cycle_date::text AS cycle_date
        FROM enrollments
        WHERE program_code = $1 AND cycle_date = $2
        ORDER BY total_score DESC, priority_rank ASC, applicant_id ASC`
	var assignments []models.EnrollmentAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, programCode, cycleDate); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// StatsTx aggregates a program's enrolled count and minimum admitted score
// within the simulation transaction.
func (r *EnrollmentRepository) StatsTx(ctx context.Context, tx *sqlx.Tx, programCode, cycleDate string) (*models.EnrollmentStats, error) {
	const query = `SELECT COUNT(*) AS enrolled_count, MIN(total_score) AS min_score
        FROM enrollments
        WHERE program_code = $1 AND cycle_date = $2`
	var stats models.EnrollmentStats
	if err := tx.GetContext(ctx, &stats, query, programCode, cycleDate); err != nil {
		return nil, fmt.Errorf("assignment stats for %s: %w", programCode, err)
	}
	return &stats, nil
}

// CountByDate reports how many assignments exist for a cycle date.
func (r *EnrollmentRepository) CountByDate(ctx context.Context, cycleDate string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE cycle_date = $1`, cycleDate); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return count, nil
}

// ProgramsWithAssignments returns the programs that admitted at least one
// applicant on a cycle date, with catalog metadata where available.
func (r *EnrollmentRepository) ProgramsWithAssignments(ctx context.Context, cycleDate string) ([]models.Program, error) {
	const query = `SELECT DISTINCT e.program_code AS code,
        COALESCE(p.name, e.program_code) AS name,
        COALESCE(p.capacity, 0) AS capacity
        FROM enrollments e
        LEFT JOIN programs p ON p.code = e.program_code
        WHERE e.cycle_date = $1
        ORDER BY e.program_code`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, cycleDate); err != nil {
		return nil, fmt.Errorf("programs with assignments: %w", err)
	}
	return programs, nil
}

// DeleteByDate clears a date's assignments outside a simulation run.
func (r *EnrollmentRepository) DeleteByDate(ctx context.Context, cycleDate string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE cycle_date = $1`, cycleDate); err != nil {
		return fmt.Errorf("clear assignments for %s: %w", cycleDate, err)
	}
	return nil
}

// DeleteAllTx clears every assignment. Used only by resets.
func (r *EnrollmentRepository) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments`); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	return nil
}

// DeleteAll clears every assignment without an enclosing transaction.
func (r *EnrollmentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM enrollments`); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	return nil
}
