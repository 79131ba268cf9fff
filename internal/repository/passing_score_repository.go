package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admission-api/internal/models"
)

// PassingScoreRepository persists per-program cutoff records. The existence
// of rows for a cycle date doubles as the simulation idempotency marker.
type PassingScoreRepository struct {
	db *sqlx.DB
}

// NewPassingScoreRepository constructs the repository.
func NewPassingScoreRepository(db *sqlx.DB) *PassingScoreRepository {
	return &PassingScoreRepository{db: db}
}

// ExistsForDate reports whether any passing score has been persisted for the
// cycle date. A true result means the simulation already ran.
func (r *PassingScoreRepository) ExistsForDate(ctx context.Context, cycleDate string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM passing_scores WHERE cycle_date = $1`, cycleDate); err != nil {
		return false, fmt.Errorf("check passing scores for %s: %w", cycleDate, err)
	}
	return count > 0, nil
}

// UpsertTx writes one cutoff record inside the simulation transaction,
// overwriting score and status on the (program_code, cycle_date) key.
func (r *PassingScoreRepository) UpsertTx(ctx context.Context, tx *sqlx.Tx, record *models.PassingScoreRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	const query = `INSERT INTO passing_scores (id, program_code, passing_score, status, cycle_date)
        VALUES (:id, :program_code, :passing_score, :status, :cycle_date)
        ON CONFLICT (program_code, cycle_date)
        DO UPDATE SET passing_score = EXCLUDED.passing_score, status = EXCLUDED.status`
	if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert passing score for %s: %w", record.ProgramCode, err)
	}
	return nil
}

// ListRowsByDate returns the passing score table for a cycle date joined with
// the program catalog, ordered by program code.
func (r *PassingScoreRepository) ListRowsByDate(ctx context.Context, cycleDate string) ([]models.PassingScoreRow, error) {
	const query = `SELECT ps.program_code,
        COALESCE(p.name, ps.program_code) AS program_name,
        ps.passing_score, ps.status,
        ps.cycle_date::text AS cycle_date,
        COALESCE(p.capacity, 0) AS total_seats
        FROM passing_scores ps
        LEFT JOIN programs p ON p.code = ps.program_code
        WHERE ps.cycle_date = $1
        ORDER BY ps.program_code`
	var rows []models.PassingScoreRow
	if err := r.db.SelectContext(ctx, &rows, query, cycleDate); err != nil {
		return nil, fmt.Errorf("list passing scores for %s: %w", cycleDate, err)
	}
	return rows, nil
}

// DeleteByDate removes a date's cutoff records, making the date recomputable.
func (r *PassingScoreRepository) DeleteByDate(ctx context.Context, cycleDate string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM passing_scores WHERE cycle_date = $1`, cycleDate); err != nil {
		return fmt.Errorf("clear passing scores for %s: %w", cycleDate, err)
	}
	return nil
}

// DeleteAllTx clears every cutoff record. Used only by the full reset.
func (r *PassingScoreRepository) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM passing_scores`); err != nil {
		return fmt.Errorf("clear passing scores: %w", err)
	}
	return nil
}
