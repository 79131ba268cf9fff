package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admission-api/internal/models"
	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
)

type applicantWriter interface {
	UpsertTx(ctx context.Context, tx *sqlx.Tx, record *models.ApplicantRecord) (bool, error)
}

type priorityWriter interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.PriorityEntry) error
	DeleteByProgramTx(ctx context.Context, tx *sqlx.Tx, programCode, cycleDate string) error
}

type assignmentCleaner interface {
	DeleteByProgramTx(ctx context.Context, tx *sqlx.Tx, programCode, cycleDate string) error
}

type programReader interface {
	FindByCode(ctx context.Context, code string) (*models.Program, error)
}

type simulationMarker interface {
	ExistsForDate(ctx context.Context, cycleDate string) (bool, error)
}

// IngestRow is one pre-validated applicant row from the upstream parser.
// Parsing, column inference and type coercion happen before this boundary.
type IngestRow struct {
	ApplicantID  int64 `json:"applicant_id"`
	PhysicsICT   int   `json:"physics_ict"`
	Russian      int   `json:"russian"`
	Math         int   `json:"math"`
	Achievements int   `json:"achievements"`
	Consent      bool  `json:"consent"`
	PriorityRank int   `json:"priority_rank"`
}

// IngestBatchRequest replaces one program's ledger batch for a cycle date.
type IngestBatchRequest struct {
	ProgramCode string      `json:"program_code" validate:"required"`
	CycleDate   string      `json:"cycle_date" validate:"required"`
	Rows        []IngestRow `json:"rows" validate:"required,min=1"`
}

// IngestBatchResult reports per-batch outcome counts. Simulated warns the
// caller that passing scores already exist for the date, so the new data
// will not be reflected until those results are cleared.
type IngestBatchResult struct {
	Inserted  int  `json:"inserted"`
	Updated   int  `json:"updated"`
	Errors    int  `json:"errors"`
	Simulated bool `json:"simulated"`
}

// IngestService replaces applicant and priority ledger batches. A batch
// fully supersedes the previous import for the same program and date.
type IngestService struct {
	programs      programReader
	applicants    applicantWriter
	priorities    priorityWriter
	assignments   assignmentCleaner
	passingScores simulationMarker
	tx            txProvider
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewIngestService constructs IngestService.
func NewIngestService(
	programs programReader,
	applicants applicantWriter,
	priorities priorityWriter,
	assignments assignmentCleaner,
	passingScores simulationMarker,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *IngestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		programs:      programs,
		applicants:    applicants,
		priorities:    priorities,
		assignments:   assignments,
		passingScores: passingScores,
		tx:            tx,
		validator:     validate,
		logger:        logger,
	}
}

// ReplaceBatch deletes the program's prior batch and writes the new rows in
// one transaction. Malformed rows are counted and skipped, never aborting
// the remaining rows.
func (s *IngestService) ReplaceBatch(ctx context.Context, req IngestBatchRequest) (*IngestBatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ingest payload")
	}
	cycleDate, err := NormalizeCycleDate(req.CycleDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if _, err := s.programs.FindByCode(ctx, req.ProgramCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	simulated, err := s.passingScores.ExistsForDate(ctx, cycleDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prior results")
	}
	if simulated {
		// results for this date stay as-is until explicitly cleared; the
		// flag in the response is the caller's staleness warning
		s.logger.Warn("ingest into already-simulated date",
			zap.String("program_code", req.ProgramCode),
			zap.String("cycle_date", cycleDate),
		)
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "failed to begin ingest transaction")
	}

	result, err := s.replaceLocked(ctx, tx, req.ProgramCode, cycleDate, req.Rows)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "ingest rolled back")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "failed to commit ingest")
	}

	result.Simulated = simulated
	s.logger.Info("ingest batch replaced",
		zap.String("program_code", req.ProgramCode),
		zap.String("cycle_date", cycleDate),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *IngestService) replaceLocked(ctx context.Context, tx *sqlx.Tx, programCode, cycleDate string, rows []IngestRow) (*IngestBatchResult, error) {
	if err := s.priorities.DeleteByProgramTx(ctx, tx, programCode, cycleDate); err != nil {
		return nil, err
	}
	if err := s.assignments.DeleteByProgramTx(ctx, tx, programCode, cycleDate); err != nil {
		return nil, err
	}

	result := &IngestBatchResult{}
	for _, row := range rows {
		if row.ApplicantID <= 0 || row.PriorityRank < 1 || row.PriorityRank > models.PriorityRankMax {
			result.Errors++
			continue
		}

		record := &models.ApplicantRecord{
			ApplicantID: row.ApplicantID,
			ComponentScores: models.ComponentScores{
				PhysicsICT:   row.PhysicsICT,
				Russian:      row.Russian,
				Math:         row.Math,
				Achievements: row.Achievements,
			},
			Consent:   row.Consent,
			CycleDate: cycleDate,
		}
		inserted, err := s.applicants.UpsertTx(ctx, tx, record)
		if err != nil {
			return nil, err
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}

		entry := &models.PriorityEntry{
			ApplicantID:  row.ApplicantID,
			ProgramCode:  programCode,
			PriorityRank: row.PriorityRank,
			CycleDate:    cycleDate,
		}
		if err := s.priorities.InsertTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}
	return result, nil
}
