package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-admission-api/internal/models"
	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
)

type applicantReader interface {
	ListSummaries(ctx context.Context, filter models.ApplicantFilter) ([]models.ApplicantSummary, error)
	FindLatestByID(ctx context.Context, applicantID int64) (*models.ApplicantRecord, error)
}

type priorityReader interface {
	ListJoined(ctx context.Context, filter models.PriorityListFilter) ([]models.PriorityListRow, error)
	ListDetailsByApplicant(ctx context.Context, applicantID int64) ([]models.PriorityEntryDetail, error)
}

// ApplicantService serves the read models over the applicant and priority
// ledgers.
type ApplicantService struct {
	applicants applicantReader
	priorities priorityReader
	logger     *zap.Logger
}

// NewApplicantService constructs ApplicantService.
func NewApplicantService(applicants applicantReader, priorities priorityReader, logger *zap.Logger) *ApplicantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicantService{applicants: applicants, priorities: priorities, logger: logger}
}

// ListPriorities returns the joined applicant+priority listing.
func (s *ApplicantService) ListPriorities(ctx context.Context, filter models.PriorityListFilter) ([]models.PriorityListRow, error) {
	if filter.CycleDate != "" {
		normalized, err := NormalizeCycleDate(filter.CycleDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		filter.CycleDate = normalized
	}
	rows, err := s.priorities.ListJoined(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list priorities")
	}
	return rows, nil
}

// ListApplicants returns distinct scored applicants that hold priorities.
func (s *ApplicantService) ListApplicants(ctx context.Context, filter models.ApplicantFilter) ([]models.ApplicantSummary, error) {
	if filter.CycleDate != "" {
		normalized, err := NormalizeCycleDate(filter.CycleDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		filter.CycleDate = normalized
	}
	summaries, err := s.applicants.ListSummaries(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}
	return summaries, nil
}

// GetApplicantDetail returns the latest record and all ranked priorities for
// one applicant.
func (s *ApplicantService) GetApplicantDetail(ctx context.Context, applicantID int64) (*models.ApplicantDetail, error) {
	if applicantID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "applicant id must be positive")
	}
	record, err := s.applicants.FindLatestByID(ctx, applicantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found or has no priorities")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}
	priorities, err := s.priorities.ListDetailsByApplicant(ctx, applicantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant priorities")
	}
	return &models.ApplicantDetail{Applicant: *record, Priorities: priorities}, nil
}
