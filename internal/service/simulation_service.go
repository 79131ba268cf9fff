package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admission-api/internal/models"
	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
)

type programCatalog interface {
	ListTx(ctx context.Context, tx *sqlx.Tx) ([]models.Program, error)
}

type applicantLedger interface {
	ListConsentingByDateTx(ctx context.Context, tx *sqlx.Tx, cycleDate string) ([]models.ApplicantRecord, error)
}

type priorityLedger interface {
	ListByApplicantDateTx(ctx context.Context, tx *sqlx.Tx, applicantID int64, cycleDate string) ([]models.PriorityEntry, error)
}

type assignmentStore interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, assignment *models.EnrollmentAssignment) error
	DeleteByDateTx(ctx context.Context, tx *sqlx.Tx, cycleDate string) error
}

type passingScoreReader interface {
	ExistsForDate(ctx context.Context, cycleDate string) (bool, error)
	ListRowsByDate(ctx context.Context, cycleDate string) ([]models.PassingScoreRow, error)
}

type passingScoreComputer interface {
	Compute(ctx context.Context, tx *sqlx.Tx, cycleDate string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// SimulationService runs the admission simulation: a single greedy pass of
// sequential admission offers over consenting applicants ranked by composite
// score. Results are computed at most once per cycle date; later requests are
// served from the persisted passing-score table.
type SimulationService struct {
	programs      programCatalog
	applicants    applicantLedger
	priorities    priorityLedger
	assignments   assignmentStore
	passingScores passingScoreReader
	calculator    passingScoreComputer
	tx            txProvider
	cache         *CacheService
	metrics       *MetricsService
	logger        *zap.Logger

	// one mutex per cycle date; different dates may simulate concurrently
	dateLocks sync.Map
}

// NewSimulationService wires the engine dependencies.
func NewSimulationService(
	programs programCatalog,
	applicants applicantLedger,
	priorities priorityLedger,
	assignments assignmentStore,
	passingScores passingScoreReader,
	calculator passingScoreComputer,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *SimulationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulationService{
		programs:      programs,
		applicants:    applicants,
		priorities:    priorities,
		assignments:   assignments,
		passingScores: passingScores,
		calculator:    calculator,
		tx:            tx,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
	}
}

// GetOrCompute returns the passing-score table for the cycle date. When the
// table already exists the engine is not re-run, even if ledgers changed
// since the first computation; callers must clear results explicitly to
// force a recomputation. The returned summary is nil on cache hits.
func (s *SimulationService) GetOrCompute(ctx context.Context, rawDate string) ([]models.PassingScoreRow, bool, *models.SimulationSummary, error) {
	cycleDate, err := NormalizeCycleDate(rawDate)
	if err != nil {
		return nil, false, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	lock := s.dateLock(cycleDate)
	lock.Lock()
	defer lock.Unlock()

	checkStart := time.Now()
	exists, err := s.passingScores.ExistsForDate(ctx, cycleDate)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("passing_scores_exists", time.Since(checkStart))
	}
	if err != nil {
		return nil, false, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prior results")
	}

	if exists {
		rows, err := s.loadTable(ctx, cycleDate)
		if err != nil {
			return nil, false, nil, err
		}
		if s.metrics != nil {
			s.metrics.RecordSimulation("cached", 0)
		}
		return rows, true, nil, nil
	}

	start := time.Now()
	summary, err := s.runOnce(ctx, cycleDate)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSimulation("error", time.Since(start))
		}
		return nil, false, nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSimulation("fresh", time.Since(start))
		s.metrics.RecordAllocation(summary.Assigned, summary.Unassigned)
	}
	s.logger.Info("simulation completed",
		zap.String("cycle_date", cycleDate),
		zap.Int("assigned", summary.Assigned),
		zap.Int("unassigned", summary.Unassigned),
	)

	rows, err := s.refreshTable(ctx, cycleDate)
	if err != nil {
		return nil, false, nil, err
	}
	return rows, false, summary, nil
}

// runOnce executes delete + allocate + passing-score computation in a single
// transaction. A failure at any point rolls the date back to its pre-run
// state, safe for the caller to retry.
func (s *SimulationService) runOnce(ctx context.Context, cycleDate string) (*models.SimulationSummary, error) {
	tx, err := s.tx.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "failed to begin simulation transaction")
	}

	summary, err := s.simulate(ctx, tx, cycleDate)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrNoPrograms.Code {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "simulation rolled back")
	}

	if err := s.calculator.Compute(ctx, tx, cycleDate); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "passing score computation rolled back")
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "failed to commit simulation")
	}
	return summary, nil
}

// simulate performs the greedy priority-rank allocation. Applicants are
// visited in ranking order (total score descending, applicant id ascending)
// and each takes the first preferred program with a seat remaining. Once
// assigned an applicant is never displaced; seat consumption is monotonic
// within the run.
func (s *SimulationService) simulate(ctx context.Context, tx *sqlx.Tx, cycleDate string) (*models.SimulationSummary, error) {
	if err := s.assignments.DeleteByDateTx(ctx, tx, cycleDate); err != nil {
		return nil, err
	}

	programs, err := s.programs.ListTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(programs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoPrograms, "")
	}

	seatsRemaining := make(map[string]int, len(programs))
	for _, program := range programs {
		seatsRemaining[program.Code] = program.Capacity
	}

	applicants, err := s.applicants.ListConsentingByDateTx(ctx, tx, cycleDate)
	if err != nil {
		return nil, err
	}

	assigned := make(map[int64]struct{}, len(applicants))
	summary := &models.SimulationSummary{}

	for _, applicant := range applicants {
		// the (applicant_id, cycle_date) key makes duplicates impossible;
		// guarded anyway so a duplicate could never double-consume a seat
		if _, ok := assigned[applicant.ApplicantID]; ok {
			continue
		}

		preferences, err := s.priorities.ListByApplicantDateTx(ctx, tx, applicant.ApplicantID, cycleDate)
		if err != nil {
			return nil, err
		}
		if len(preferences) == 0 {
			summary.Unassigned++
			continue
		}

		placed := false
		for _, preference := range preferences {
			if seatsRemaining[preference.ProgramCode] <= 0 {
				continue
			}
			assignment := &models.EnrollmentAssignment{
				ApplicantID:  applicant.ApplicantID,
				ProgramCode:  preference.ProgramCode,
				PriorityRank: preference.PriorityRank,
				TotalScore:   applicant.TotalScore,
				CycleDate:    cycleDate,
			}
			if err := s.assignments.InsertTx(ctx, tx, assignment); err != nil {
				return nil, err
			}
			seatsRemaining[preference.ProgramCode]--
			assigned[applicant.ApplicantID] = struct{}{}
			summary.Assigned++
			placed = true
			break
		}
		if !placed {
			summary.Unassigned++
		}
	}

	return summary, nil
}

// loadTable reads the persisted table, going through the response cache when
// it is enabled. The existence check always hits the database first, so the
// cache can never cause a second simulation.
func (s *SimulationService) loadTable(ctx context.Context, cycleDate string) ([]models.PassingScoreRow, error) {
	if s.cache.Enabled() {
		var rows []models.PassingScoreRow
		if hit, _ := s.cache.Get(ctx, passingScoreCacheKey(cycleDate), &rows); hit {
			return rows, nil
		}
	}
	return s.refreshTable(ctx, cycleDate)
}

// refreshTable reads the authoritative table and overwrites any cached copy.
// A fresh run always goes through here, never through the cache read: a
// payload cached before a reset must not survive the recomputation.
func (s *SimulationService) refreshTable(ctx context.Context, cycleDate string) ([]models.PassingScoreRow, error) {
	queryStart := time.Now()
	rows, err := s.passingScores.ListRowsByDate(ctx, cycleDate)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("passing_scores_list", time.Since(queryStart))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load passing scores")
	}
	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, passingScoreCacheKey(cycleDate), rows, 0)
	}
	return rows, nil
}

// InvalidateCache drops the cached table for a date after a reset.
func (s *SimulationService) InvalidateCache(ctx context.Context, cycleDate string) error {
	if !s.cache.Enabled() {
		return nil
	}
	return s.cache.Invalidate(ctx, passingScoreCacheKey(cycleDate))
}

// InvalidateAllCache drops every cached table after a full reset.
func (s *SimulationService) InvalidateAllCache(ctx context.Context) error {
	if !s.cache.Enabled() {
		return nil
	}
	return s.cache.Invalidate(ctx, passingScoreCacheKey("*"))
}

func (s *SimulationService) dateLock(cycleDate string) *sync.Mutex {
	lock, _ := s.dateLocks.LoadOrStore(cycleDate, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func passingScoreCacheKey(cycleDate string) string {
	return fmt.Sprintf("passing_scores:%s", cycleDate)
}
