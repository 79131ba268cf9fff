package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admission-api/internal/models"
)

type assignmentAggregator interface {
	StatsTx(ctx context.Context, tx *sqlx.Tx, programCode, cycleDate string) (*models.EnrollmentStats, error)
}

type passingScoreWriter interface {
	UpsertTx(ctx context.Context, tx *sqlx.Tx, record *models.PassingScoreRecord) error
}

// PassingScoreCalculator derives per-program cutoffs from the assignments a
// simulation run just produced. It runs inside the same transaction, after
// all assignments for the date are final.
type PassingScoreCalculator struct {
	programs    programCatalog
	assignments assignmentAggregator
	scores      passingScoreWriter
	logger      *zap.Logger
}

// NewPassingScoreCalculator constructs the calculator.
func NewPassingScoreCalculator(programs programCatalog, assignments assignmentAggregator, scores passingScoreWriter, logger *zap.Logger) *PassingScoreCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PassingScoreCalculator{programs: programs, assignments: assignments, scores: scores, logger: logger}
}

// Compute writes exactly one PassingScoreRecord per program for the cycle
// date. A program with no enrollments still gets a NO_DATA row; one that did
// not fill its seats reports the lowest admitted score flagged
// UNDERSUBSCRIBED.
func (c *PassingScoreCalculator) Compute(ctx context.Context, tx *sqlx.Tx, cycleDate string) error {
	programs, err := c.programs.ListTx(ctx, tx)
	if err != nil {
		return err
	}

	for _, program := range programs {
		stats, err := c.assignments.StatsTx(ctx, tx, program.Code, cycleDate)
		if err != nil {
			return err
		}

		record := &models.PassingScoreRecord{
			ProgramCode: program.Code,
			CycleDate:   cycleDate,
		}
		switch {
		case stats.EnrolledCount == 0:
			record.Status = models.PassingScoreNoData
		case stats.EnrolledCount < program.Capacity:
			record.Status = models.PassingScoreUndersubscribed
			record.PassingScore = stats.MinScore
		default:
			record.Status = models.PassingScoreComputed
			record.PassingScore = stats.MinScore
		}

		if err := c.scores.UpsertTx(ctx, tx, record); err != nil {
			return err
		}
	}

	return nil
}
