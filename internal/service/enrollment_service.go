package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-admission-api/internal/models"
	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
)

type assignmentReader interface {
	ListByProgramAndDate(ctx context.Context, programCode, cycleDate string) ([]models.EnrollmentAssignment, error)
	CountByDate(ctx context.Context, cycleDate string) (int, error)
}

type programSource interface {
	FindByCode(ctx context.Context, code string) (*models.Program, error)
	List(ctx context.Context) ([]models.Program, error)
}

// EnrollmentService exposes read access to simulation output. Assignments
// are written only by the engine; this service never mutates them.
type EnrollmentService struct {
	assignments assignmentReader
	programs    programSource
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(assignments assignmentReader, programs programSource, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{assignments: assignments, programs: programs, logger: logger}
}

// ListByProgram enumerates admitted applicants for a program and date in the
// stable reporting order (score desc, rank asc, id asc).
func (s *EnrollmentService) ListByProgram(ctx context.Context, programCode, rawDate string) ([]models.EnrollmentAssignment, error) {
	if programCode == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "program code is required")
	}
	cycleDate, err := NormalizeCycleDate(rawDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if _, err := s.programs.FindByCode(ctx, programCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	assignments, err := s.assignments.ListByProgramAndDate(ctx, programCode, cycleDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// ListPrograms returns the program catalog with seat capacities.
func (s *EnrollmentService) ListPrograms(ctx context.Context) ([]models.Program, error) {
	programs, err := s.programs.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}
