package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
)

type enrollmentResetter interface {
	DeleteByDate(ctx context.Context, cycleDate string) error
	DeleteAll(ctx context.Context) error
	DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error
}

type passingScoreResetter interface {
	DeleteByDate(ctx context.Context, cycleDate string) error
	DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error
}

type applicantResetter interface {
	DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error
}

type priorityResetter interface {
	DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error
}

type resultCacheInvalidator interface {
	InvalidateCache(ctx context.Context, cycleDate string) error
	InvalidateAllCache(ctx context.Context) error
}

// AdminService performs the explicit resets that make a cycle date
// recomputable. These are the only paths that remove simulation output.
type AdminService struct {
	enrollments   enrollmentResetter
	passingScores passingScoreResetter
	applicants    applicantResetter
	priorities    priorityResetter
	simulations   resultCacheInvalidator
	tx            txProvider
	logger        *zap.Logger
}

// NewAdminService constructs AdminService.
func NewAdminService(
	enrollments enrollmentResetter,
	passingScores passingScoreResetter,
	applicants applicantResetter,
	priorities priorityResetter,
	simulations resultCacheInvalidator,
	tx txProvider,
	logger *zap.Logger,
) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		enrollments:   enrollments,
		passingScores: passingScores,
		applicants:    applicants,
		priorities:    priorities,
		simulations:   simulations,
		tx:            tx,
		logger:        logger,
	}
}

// ClearEnrollment removes assignments, and when scoped to a date also its
// passing scores, so that date simulates afresh on the next request.
func (s *AdminService) ClearEnrollment(ctx context.Context, rawDate string) error {
	if rawDate == "" {
		if err := s.enrollments.DeleteAll(ctx); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear enrollments")
		}
		s.logger.Info("all enrollments cleared")
		return nil
	}

	cycleDate, err := NormalizeCycleDate(rawDate)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.enrollments.DeleteByDate(ctx, cycleDate); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear enrollments")
	}
	if err := s.passingScores.DeleteByDate(ctx, cycleDate); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear passing scores")
	}
	if s.simulations != nil {
		_ = s.simulations.InvalidateCache(ctx, cycleDate)
	}
	s.logger.Info("enrollment reset", zap.String("cycle_date", cycleDate))
	return nil
}

// ClearAll wipes every ledger and all simulation output in one transaction.
func (s *AdminService) ClearAll(ctx context.Context) error {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "failed to begin clear transaction")
	}

	steps := []func(context.Context, *sqlx.Tx) error{
		s.enrollments.DeleteAllTx,
		s.priorities.DeleteAllTx,
		s.applicants.DeleteAllTx,
		s.passingScores.DeleteAllTx,
	}
	for _, step := range steps {
		if err := step(ctx, tx); err != nil {
			tx.Rollback() //nolint:errcheck
			return appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "clear rolled back")
		}
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "failed to commit clear")
	}
	if s.simulations != nil {
		_ = s.simulations.InvalidateAllCache(ctx)
	}
	s.logger.Info("database fully cleared")
	return nil
}
