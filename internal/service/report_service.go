package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-admission-api/internal/models"
	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
	"github.com/noah-isme/uni-admission-api/pkg/export"
)

// ReportFormat selects the rendered output type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type reportAssignmentSource interface {
	ProgramsWithAssignments(ctx context.Context, cycleDate string) ([]models.Program, error)
	ListByProgramAndDate(ctx context.Context, programCode, cycleDate string) ([]models.EnrollmentAssignment, error)
	CountByDate(ctx context.Context, cycleDate string) (int, error)
}

type reportScoreSource interface {
	ListRowsByDate(ctx context.Context, cycleDate string) ([]models.PassingScoreRow, error)
}

// ReportFile is a rendered report ready to stream to the caller.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService renders admission results as downloadable documents: the
// per-program admitted lists and the passing-score table for a cycle date.
type ReportService struct {
	assignments   reportAssignmentSource
	passingScores reportScoreSource
	csv           csvRenderer
	pdf           pdfRenderer
	logger        *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(assignments reportAssignmentSource, passingScores reportScoreSource, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		assignments:   assignments,
		passingScores: passingScores,
		csv:           csv,
		pdf:           pdf,
		logger:        logger,
	}
}

// GenerateEnrollmentReport renders the admitted applicants of every program
// for the cycle date. It fails with a not-found error when the date has no
// assignments, which means the date was never simulated or was cleared.
func (s *ReportService) GenerateEnrollmentReport(ctx context.Context, rawDate string, format ReportFormat) (*ReportFile, error) {
	cycleDate, err := NormalizeCycleDate(rawDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := validateFormat(format); err != nil {
		return nil, err
	}

	count, err := s.assignments.CountByDate(ctx, cycleDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignments")
	}
	if count == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no enrollment data for the requested date")
	}

	programs, err := s.assignments.ProgramsWithAssignments(ctx, cycleDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list report programs")
	}

	headers := []string{"Program", "Rank", "Applicant ID", "Priority", "Total Score"}
	rows := make([]map[string]string, 0, count)
	for _, program := range programs {
		assignments, err := s.assignments.ListByProgramAndDate(ctx, program.Code, cycleDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list report assignments")
		}
		for i, assignment := range assignments {
			rows = append(rows, map[string]string{
				"Program":      program.Name,
				"Rank":         fmt.Sprintf("%d", i+1),
				"Applicant ID": fmt.Sprintf("%d", assignment.ApplicantID),
				"Priority":     fmt.Sprintf("%d", assignment.PriorityRank),
				"Total Score":  fmt.Sprintf("%d", assignment.TotalScore),
			})
		}
	}

	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Enrollment Report %s", cycleDate)
	return s.render(dataset, title, fmt.Sprintf("enrollment_%s", cycleDate), format)
}

// GeneratePassingScoreReport renders the passing-score table for the cycle
// date in the same stable order the API serves it.
func (s *ReportService) GeneratePassingScoreReport(ctx context.Context, rawDate string, format ReportFormat) (*ReportFile, error) {
	cycleDate, err := NormalizeCycleDate(rawDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := validateFormat(format); err != nil {
		return nil, err
	}

	scoreRows, err := s.passingScores.ListRowsByDate(ctx, cycleDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load passing scores")
	}
	if len(scoreRows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no passing scores for the requested date")
	}

	headers := []string{"Program", "Seats", "Passing Score", "Status"}
	rows := make([]map[string]string, 0, len(scoreRows))
	for _, row := range scoreRows {
		score := ""
		if row.PassingScore != nil {
			score = fmt.Sprintf("%d", *row.PassingScore)
		}
		rows = append(rows, map[string]string{
			"Program":       row.ProgramName,
			"Seats":         fmt.Sprintf("%d", row.TotalSeats),
			"Passing Score": score,
			"Status":        string(row.Status),
		})
	}

	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Passing Scores %s", cycleDate)
	return s.render(dataset, title, fmt.Sprintf("passing_scores_%s", cycleDate), format)
}

func (s *ReportService) render(dataset export.Dataset, title, basename string, format ReportFormat) (*ReportFile, error) {
	var payload []byte
	var err error
	var contentType string
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return &ReportFile{
		Filename:    fmt.Sprintf("%s.%s", basename, format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

func validateFormat(format ReportFormat) error {
	switch format {
	case ReportFormatCSV, ReportFormatPDF:
		return nil
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", strings.TrimSpace(string(format))))
	}
}
