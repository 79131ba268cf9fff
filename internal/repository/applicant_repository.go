package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admission-api/internal/models"
)

// ApplicantRepository persists the scored applicant ledger.
type ApplicantRepository struct {
	db *sqlx.DB
}

// NewApplicantRepository constructs the repository.
func NewApplicantRepository(db *sqlx.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

// UpsertTx writes one applicant record for a cycle date, recomputing the
// composite total from the component scores. Returns true when the row was
// newly inserted rather than updated.
func (r *ApplicantRepository) UpsertTx(ctx context.Context, tx *sqlx.Tx, record *models.ApplicantRecord) (bool, error) {
	record.TotalScore = record.ComponentScores.Sum()
	const query = `INSERT INTO applicants (applicant_id, physics_ict, russian, math, achievements, total_score, consent, cycle_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (applicant_id, cycle_date)
        DO UPDATE SET physics_ict = EXCLUDED.physics_ict, russian = EXCLUDED.russian,
            math = EXCLUDED.math, achievements = EXCLUDED.achievements,
            total_score = EXCLUDED.total_score, consent = EXCLUDED.consent
        RETURNING (xmax = 0) AS inserted`
	var inserted bool
	if err := tx.GetContext(ctx, &inserted, query,
		record.ApplicantID,
		record.PhysicsICT,
		record.Russian,
		record.Math,
		record.Achievements,
		record.TotalScore,
		record.Consent,
		record.CycleDate,
	); err != nil {
		return false, fmt.Errorf("upsert applicant %d: %w", record.ApplicantID, err)
	}
	return inserted, nil
}

// ListConsentingByDateTx returns consenting applicants for a cycle date in
// allocation order: total score descending, applicant id ascending. The
// ordering is the engine's ranking and must not change.
func (r *ApplicantRepository) ListConsentingByDateTx(ctx context.Context, tx *sqlx.Tx, cycleDate string) ([]models.ApplicantRecord, error) {
	const query = `SELECT applicant_id, physics_ict, russian, math, achievements, total_score, consent, cycle_date::text AS cycle_date
        FROM applicants
        WHERE consent = TRUE AND cycle_date = $1
        ORDER BY total_score DESC, applicant_id ASC`
	var records []models.ApplicantRecord
	if err := tx.SelectContext(ctx, &records, query, cycleDate); err != nil {
		return nil, fmt.Errorf("list consenting applicants: %w", err)
	}
	return records, nil
}

// ListSummaries returns distinct scored applicants that hold at least one
// priority, filtered by id, minimum score and cycle date.
func (r *ApplicantRepository) ListSummaries(ctx context.Context, filter models.ApplicantFilter) ([]models.ApplicantSummary, error) {
	query := `SELECT DISTINCT a.applicant_id, a.total_score, a.cycle_date::text AS cycle_date
        FROM applicants a
        INNER JOIN priorities p ON p.applicant_id = a.applicant_id AND p.cycle_date = a.cycle_date`
	var conditions []string
	var args []interface{}

	if filter.ApplicantID > 0 {
		conditions = append(conditions, fmt.Sprintf("a.applicant_id = $%d", len(args)+1))
		args = append(args, filter.ApplicantID)
	}
	if filter.MinScore > 0 {
		conditions = append(conditions, fmt.Sprintf("a.total_score >= $%d", len(args)+1))
		args = append(args, filter.MinScore)
	}
	if filter.CycleDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.cycle_date = $%d", len(args)+1))
		args = append(args, filter.CycleDate)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.total_score DESC, a.applicant_id ASC"

	var summaries []models.ApplicantSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("list applicant summaries: %w", err)
	}
	return summaries, nil
}

// FindLatestByID returns the most recent record for an applicant that holds
// at least one priority entry.
func (r *ApplicantRepository) FindLatestByID(ctx context.Context, applicantID int64) (*models.ApplicantRecord, error) {
	const query = `SELECT a.applicant_id, a.physics_ict, a.russian, a.math, a.achievements, a.total_score, a.consent, a.cycle_date::text AS cycle_date
        FROM applicants a
        INNER JOIN priorities p ON p.applicant_id = a.applicant_id AND p.cycle_date = a.cycle_date
        WHERE a.applicant_id = $1
        ORDER BY a.cycle_date DESC
        LIMIT 1`
	var record models.ApplicantRecord
	if err := r.db.GetContext(ctx, &record, query, applicantID); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteAllTx clears the applicant ledger. Used only by the full reset.
func (r *ApplicantRepository) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM applicants`); err != nil {
		return fmt.Errorf("clear applicants: %w", err)
	}
	return nil
}
