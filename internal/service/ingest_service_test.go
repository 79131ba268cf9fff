package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admission-api/internal/models"
	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
)

type ingestFixtureConfig struct {
	missingProgram bool
	simulated      bool
	existingIDs    []int64
}

type ingestFixture struct {
	svc         *IngestService
	applicants  *applicantWriterStub
	priorities  *priorityWriterStub
	assignments *assignmentCleanerStub
}

func newIngestFixture(t *testing.T, cfg ingestFixtureConfig) *ingestFixture {
	t.Helper()

	txProvider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	applicants := &applicantWriterStub{seen: make(map[int64]struct{})}
	for _, id := range cfg.existingIDs {
		applicants.seen[id] = struct{}{}
	}
	priorities := &priorityWriterStub{}
	assignments := &assignmentCleanerStub{}

	svc := NewIngestService(
		programReaderStub{missing: cfg.missingProgram},
		applicants,
		priorities,
		assignments,
		&passingScoreReaderStub{exists: cfg.simulated},
		txProvider,
		nil,
		zap.NewNop(),
	)
	return &ingestFixture{svc: svc, applicants: applicants, priorities: priorities, assignments: assignments}
}

func ingestRow(id int64, rank int) IngestRow {
	return IngestRow{
		ApplicantID:  id,
		PhysicsICT:   80,
		Russian:      70,
		Math:         90,
		Achievements: 5,
		Consent:      true,
		PriorityRank: rank,
	}
}

func TestIngestServiceReplaceBatchCounts(t *testing.T) {
	fixture := newIngestFixture(t, ingestFixtureConfig{existingIDs: []int64{2}})

	result, err := fixture.svc.ReplaceBatch(context.Background(), IngestBatchRequest{
		ProgramCode: "CS",
		CycleDate:   "2026-07-01",
		Rows:        []IngestRow{ingestRow(1, 1), ingestRow(2, 1), ingestRow(3, 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Errors)
	assert.False(t, result.Simulated)
	assert.Len(t, fixture.priorities.inserted, 3)
}

func TestIngestServiceSkipsMalformedRows(t *testing.T) {
	fixture := newIngestFixture(t, ingestFixtureConfig{})

	result, err := fixture.svc.ReplaceBatch(context.Background(), IngestBatchRequest{
		ProgramCode: "CS",
		CycleDate:   "2026-07-01",
		Rows: []IngestRow{
			ingestRow(1, 1),
			ingestRow(-5, 1),
			ingestRow(2, 0),
			ingestRow(3, models.PriorityRankMax+1),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 3, result.Errors)
	assert.Len(t, fixture.priorities.inserted, 1)
}

func TestIngestServiceRecomputesTotalScore(t *testing.T) {
	fixture := newIngestFixture(t, ingestFixtureConfig{})

	_, err := fixture.svc.ReplaceBatch(context.Background(), IngestBatchRequest{
		ProgramCode: "CS",
		CycleDate:   "2026-07-01",
		Rows:        []IngestRow{ingestRow(1, 1)},
	})
	require.NoError(t, err)
	require.Len(t, fixture.applicants.records, 1)
	assert.Equal(t, 245, fixture.applicants.records[0].TotalScore)
}

func TestIngestServiceSupersedesPriorBatch(t *testing.T) {
	fixture := newIngestFixture(t, ingestFixtureConfig{})

	_, err := fixture.svc.ReplaceBatch(context.Background(), IngestBatchRequest{
		ProgramCode: "CS",
		CycleDate:   "01.07.2026",
		Rows:        []IngestRow{ingestRow(1, 1)},
	})
	require.NoError(t, err)
	require.Len(t, fixture.priorities.deleted, 1)
	assert.Equal(t, "CS|2026-07-01", fixture.priorities.deleted[0])
	require.Len(t, fixture.assignments.deleted, 1)
	assert.Equal(t, "CS|2026-07-01", fixture.assignments.deleted[0])
}

func TestIngestServiceFlagsSimulatedDate(t *testing.T) {
	fixture := newIngestFixture(t, ingestFixtureConfig{simulated: true})

	result, err := fixture.svc.ReplaceBatch(context.Background(), IngestBatchRequest{
		ProgramCode: "CS",
		CycleDate:   "2026-07-01",
		Rows:        []IngestRow{ingestRow(1, 1)},
	})
	require.NoError(t, err)
	assert.True(t, result.Simulated)
	assert.Len(t, fixture.applicants.records, 1, "data is written even when results already exist")
}

func TestIngestServiceUnknownProgram(t *testing.T) {
	fixture := newIngestFixture(t, ingestFixtureConfig{missingProgram: true})

	_, err := fixture.svc.ReplaceBatch(context.Background(), IngestBatchRequest{
		ProgramCode: "NOPE",
		CycleDate:   "2026-07-01",
		Rows:        []IngestRow{ingestRow(1, 1)},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestIngestServiceRejectsEmptyBatch(t *testing.T) {
	fixture := newIngestFixture(t, ingestFixtureConfig{})

	_, err := fixture.svc.ReplaceBatch(context.Background(), IngestBatchRequest{
		ProgramCode: "CS",
		CycleDate:   "2026-07-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

type programReaderStub struct {
	missing  bool
	programs []models.Program
}

func (s programReaderStub) FindByCode(ctx context.Context, code string) (*models.Program, error) {
	if s.missing {
		return nil, sql.ErrNoRows
	}
	return &models.Program{Code: code, Name: code, Capacity: 10}, nil
}

func (s programReaderStub) List(ctx context.Context) ([]models.Program, error) {
	return s.programs, nil
}

type applicantWriterStub struct {
	seen    map[int64]struct{}
	records []models.ApplicantRecord
}

func (s *applicantWriterStub) UpsertTx(ctx context.Context, tx *sqlx.Tx, record *models.ApplicantRecord) (bool, error) {
	record.TotalScore = record.Sum()
	s.records = append(s.records, *record)
	if _, ok := s.seen[record.ApplicantID]; ok {
		return false, nil
	}
	s.seen[record.ApplicantID] = struct{}{}
	return true, nil
}

type priorityWriterStub struct {
	inserted []models.PriorityEntry
	deleted  []string
}

func (s *priorityWriterStub) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.PriorityEntry) error {
	s.inserted = append(s.inserted, *entry)
	return nil
}

func (s *priorityWriterStub) DeleteByProgramTx(ctx context.Context, tx *sqlx.Tx, programCode, cycleDate string) error {
	s.deleted = append(s.deleted, programCode+"|"+cycleDate)
	return nil
}

type assignmentCleanerStub struct {
	deleted []string
}

func (s *assignmentCleanerStub) DeleteByProgramTx(ctx context.Context, tx *sqlx.Tx, programCode, cycleDate string) error {
	s.deleted = append(s.deleted, programCode+"|"+cycleDate)
	return nil
}
