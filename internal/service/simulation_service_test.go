package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admission-api/internal/models"
	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
)

type simulationFixtureConfig struct {
	programs      []models.Program
	applicants    []models.ApplicantRecord
	preferences   map[int64][]models.PriorityEntry
	alreadyExists bool
	tableRows     []models.PassingScoreRow
	insertErr     error
	calculatorErr error
}

type simulationFixture struct {
	svc         *SimulationService
	assignments *assignmentStoreStub
	calculator  *calculatorStub
	mock        sqlmock.Sqlmock
}

func newSimulationFixture(t *testing.T, cfg simulationFixtureConfig) *simulationFixture {
	t.Helper()

	txProvider, mock := newTxProviderMock(t)
	assignments := &assignmentStoreStub{insertErr: cfg.insertErr}
	calculator := &calculatorStub{err: cfg.calculatorErr}

	svc := NewSimulationService(
		programCatalogStub{items: cfg.programs},
		applicantLedgerStub{items: cfg.applicants},
		priorityLedgerStub{prefs: cfg.preferences},
		assignments,
		&passingScoreReaderStub{exists: cfg.alreadyExists, rows: cfg.tableRows},
		calculator,
		txProvider,
		NewCacheService(nil, nil, 0, zap.NewNop(), false),
		nil,
		zap.NewNop(),
	)
	return &simulationFixture{svc: svc, assignments: assignments, calculator: calculator, mock: mock}
}

func applicant(id int64, total int) models.ApplicantRecord {
	return models.ApplicantRecord{ApplicantID: id, TotalScore: total, Consent: true, CycleDate: "2026-07-01"}
}

func preference(id int64, rank int, program string) models.PriorityEntry {
	return models.PriorityEntry{ApplicantID: id, ProgramCode: program, PriorityRank: rank, CycleDate: "2026-07-01"}
}

func TestSimulationServiceTwoProgramScenario(t *testing.T) {
	fixture := newSimulationFixture(t, simulationFixtureConfig{
		programs: []models.Program{
			{Code: "CS", Name: "Computer Science", Capacity: 1},
			{Code: "MATH", Name: "Mathematics", Capacity: 1},
		},
		applicants: []models.ApplicantRecord{
			applicant(1, 300),
			applicant(2, 290),
			applicant(3, 280),
		},
		preferences: map[int64][]models.PriorityEntry{
			1: {preference(1, 1, "CS")},
			2: {preference(2, 1, "CS"), preference(2, 2, "MATH")},
			3: {preference(3, 1, "CS"), preference(3, 2, "MATH")},
		},
		tableRows: []models.PassingScoreRow{
			{ProgramName: "Computer Science"},
			{ProgramName: "Mathematics"},
		},
	})
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	rows, fromCache, summary, err := fixture.svc.GetOrCompute(context.Background(), "2026-07-01")
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Len(t, rows, 2)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.Assigned)
	assert.Equal(t, 1, summary.Unassigned)

	require.Len(t, fixture.assignments.inserted, 2)
	assert.Equal(t, int64(1), fixture.assignments.inserted[0].ApplicantID)
	assert.Equal(t, "CS", fixture.assignments.inserted[0].ProgramCode)
	assert.Equal(t, int64(2), fixture.assignments.inserted[1].ApplicantID)
	assert.Equal(t, "MATH", fixture.assignments.inserted[1].ProgramCode)
	assert.Equal(t, 2, fixture.assignments.inserted[1].PriorityRank)
	assert.True(t, fixture.calculator.called)
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestSimulationServiceLastSeatGoesToLowerID(t *testing.T) {
	// applicants arrive in ranking order: equal totals break by lower id
	fixture := newSimulationFixture(t, simulationFixtureConfig{
		programs: []models.Program{{Code: "CS", Capacity: 1}},
		applicants: []models.ApplicantRecord{
			applicant(7, 250),
			applicant(9, 250),
		},
		preferences: map[int64][]models.PriorityEntry{
			7: {preference(7, 1, "CS")},
			9: {preference(9, 1, "CS")},
		},
	})
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	_, _, summary, err := fixture.svc.GetOrCompute(context.Background(), "2026-07-01")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Assigned)
	assert.Equal(t, 1, summary.Unassigned)
	require.Len(t, fixture.assignments.inserted, 1)
	assert.Equal(t, int64(7), fixture.assignments.inserted[0].ApplicantID)
}

func TestSimulationServiceApplicantWithoutPreferencesUnassigned(t *testing.T) {
	fixture := newSimulationFixture(t, simulationFixtureConfig{
		programs:   []models.Program{{Code: "CS", Capacity: 5}},
		applicants: []models.ApplicantRecord{applicant(1, 200)},
	})
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	_, _, summary, err := fixture.svc.GetOrCompute(context.Background(), "2026-07-01")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Assigned)
	assert.Equal(t, 1, summary.Unassigned)
	assert.Empty(t, fixture.assignments.inserted)
}

func TestSimulationServiceSecondCallServedFromStore(t *testing.T) {
	fixture := newSimulationFixture(t, simulationFixtureConfig{
		alreadyExists: true,
		tableRows:     []models.PassingScoreRow{{ProgramName: "Computer Science"}},
	})

	rows, fromCache, summary, err := fixture.svc.GetOrCompute(context.Background(), "2026-07-01")
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Nil(t, summary)
	assert.Len(t, rows, 1)
	assert.Empty(t, fixture.assignments.deletedDates, "existing results must not trigger a re-run")
	assert.False(t, fixture.calculator.called)
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestSimulationServiceNoProgramsFails(t *testing.T) {
	fixture := newSimulationFixture(t, simulationFixtureConfig{
		applicants: []models.ApplicantRecord{applicant(1, 200)},
	})
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectRollback()

	_, _, _, err := fixture.svc.GetOrCompute(context.Background(), "2026-07-01")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoPrograms.Code, appErr.Code)
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestSimulationServiceRollsBackOnInsertFailure(t *testing.T) {
	fixture := newSimulationFixture(t, simulationFixtureConfig{
		programs:   []models.Program{{Code: "CS", Capacity: 1}},
		applicants: []models.ApplicantRecord{applicant(1, 200)},
		preferences: map[int64][]models.PriorityEntry{
			1: {preference(1, 1, "CS")},
		},
		insertErr: errors.New("constraint violation"),
	})
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectRollback()

	_, _, _, err := fixture.svc.GetOrCompute(context.Background(), "2026-07-01")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrTransaction.Code, appErr.Code)
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestSimulationServiceRollsBackOnCalculatorFailure(t *testing.T) {
	fixture := newSimulationFixture(t, simulationFixtureConfig{
		programs:      []models.Program{{Code: "CS", Capacity: 1}},
		calculatorErr: errors.New("aggregate failed"),
	})
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectRollback()

	_, _, _, err := fixture.svc.GetOrCompute(context.Background(), "2026-07-01")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTransaction.Code, appErrors.FromError(err).Code)
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestSimulationServiceAcceptsLegacyDateFormat(t *testing.T) {
	fixture := newSimulationFixture(t, simulationFixtureConfig{
		programs: []models.Program{{Code: "CS", Capacity: 1}},
	})
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	_, _, _, err := fixture.svc.GetOrCompute(context.Background(), "01.07.2026")
	require.NoError(t, err)
	require.Len(t, fixture.assignments.deletedDates, 1)
	assert.Equal(t, "2026-07-01", fixture.assignments.deletedDates[0])
}

func TestSimulationServiceRejectsMalformedDate(t *testing.T) {
	fixture := newSimulationFixture(t, simulationFixtureConfig{})

	_, _, _, err := fixture.svc.GetOrCompute(context.Background(), "July 1st")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSimulationServiceFreshRunOverwritesCachedTable(t *testing.T) {
	txProvider, mock := newTxProviderMock(t)
	cacheRepo := newCacheRepoStub()
	scores := &passingScoreReaderStub{exists: true, rows: []models.PassingScoreRow{{ProgramCode: "CS", ProgramName: "Old Catalog"}}}
	svc := NewSimulationService(
		programCatalogStub{items: []models.Program{{Code: "CS", Name: "New Catalog", Capacity: 1}}},
		applicantLedgerStub{},
		priorityLedgerStub{},
		&assignmentStoreStub{},
		scores,
		&calculatorStub{},
		txProvider,
		NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true),
		nil,
		zap.NewNop(),
	)

	rows, fromCache, _, err := svc.GetOrCompute(context.Background(), "2026-07-01")
	require.NoError(t, err)
	assert.True(t, fromCache)
	require.Len(t, rows, 1)
	assert.Equal(t, "Old Catalog", rows[0].ProgramName)

	// a full reset wiped the tables, then a new batch landed under the same
	// date; the redis payload from the first run is still present
	scores.exists = false
	scores.rows = []models.PassingScoreRow{{ProgramCode: "CS", ProgramName: "New Catalog"}}
	mock.ExpectBegin()
	mock.ExpectCommit()

	rows, fromCache, _, err = svc.GetOrCompute(context.Background(), "2026-07-01")
	require.NoError(t, err)
	assert.False(t, fromCache)
	require.Len(t, rows, 1)
	assert.Equal(t, "New Catalog", rows[0].ProgramName, "fresh run must not serve the pre-reset payload")

	// and the fresh table replaced the cached copy for later reads
	scores.exists = true
	rows, fromCache, _, err = svc.GetOrCompute(context.Background(), "2026-07-01")
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, "New Catalog", rows[0].ProgramName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSimulationServiceInvalidateAllCacheDropsEveryDate(t *testing.T) {
	txProvider, _ := newTxProviderMock(t)
	cacheRepo := newCacheRepoStub()
	cacheRepo.entries["passing_scores:2026-07-01"] = `[]`
	cacheRepo.entries["passing_scores:2026-07-02"] = `[]`
	svc := NewSimulationService(
		programCatalogStub{}, applicantLedgerStub{}, priorityLedgerStub{}, &assignmentStoreStub{},
		&passingScoreReaderStub{}, &calculatorStub{}, txProvider,
		NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true),
		nil, zap.NewNop(),
	)

	require.NoError(t, svc.InvalidateAllCache(context.Background()))
	assert.Empty(t, cacheRepo.entries)
}

func TestSimulationServiceRecordsQueryTimings(t *testing.T) {
	txProvider, _ := newTxProviderMock(t)
	metrics := NewMetricsService()
	svc := NewSimulationService(
		programCatalogStub{}, applicantLedgerStub{}, priorityLedgerStub{}, &assignmentStoreStub{},
		&passingScoreReaderStub{exists: true, rows: []models.PassingScoreRow{{ProgramName: "Computer Science"}}},
		&calculatorStub{}, txProvider,
		NewCacheService(nil, metrics, 0, zap.NewNop(), false),
		metrics, zap.NewNop(),
	)

	_, _, _, err := svc.GetOrCompute(context.Background(), "2026-07-01")
	require.NoError(t, err)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.DBQueryCount, "existence check and table read are both timed")
	assert.Equal(t, uint64(1), snapshot.SimulationCacheHits)
}

type programCatalogStub struct {
	items []models.Program
}

func (s programCatalogStub) ListTx(ctx context.Context, tx *sqlx.Tx) ([]models.Program, error) {
	return s.items, nil
}

type applicantLedgerStub struct {
	items []models.ApplicantRecord
}

func (s applicantLedgerStub) ListConsentingByDateTx(ctx context.Context, tx *sqlx.Tx, cycleDate string) ([]models.ApplicantRecord, error) {
	return s.items, nil
}

type priorityLedgerStub struct {
	prefs map[int64][]models.PriorityEntry
}

func (s priorityLedgerStub) ListByApplicantDateTx(ctx context.Context, tx *sqlx.Tx, applicantID int64, cycleDate string) ([]models.PriorityEntry, error) {
	return s.prefs[applicantID], nil
}

type assignmentStoreStub struct {
	inserted     []models.EnrollmentAssignment
	deletedDates []string
	insertErr    error
}

func (s *assignmentStoreStub) InsertTx(ctx context.Context, tx *sqlx.Tx, assignment *models.EnrollmentAssignment) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, *assignment)
	return nil
}

func (s *assignmentStoreStub) DeleteByDateTx(ctx context.Context, tx *sqlx.Tx, cycleDate string) error {
	s.deletedDates = append(s.deletedDates, cycleDate)
	return nil
}

type passingScoreReaderStub struct {
	exists bool
	rows   []models.PassingScoreRow
}

func (s *passingScoreReaderStub) ExistsForDate(ctx context.Context, cycleDate string) (bool, error) {
	return s.exists, nil
}

func (s *passingScoreReaderStub) ListRowsByDate(ctx context.Context, cycleDate string) ([]models.PassingScoreRow, error) {
	return s.rows, nil
}

type cacheRepoStub struct {
	entries map[string]string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{entries: map[string]string{}}
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = string(raw)
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

type calculatorStub struct {
	called bool
	err    error
}

func (s *calculatorStub) Compute(ctx context.Context, tx *sqlx.Tx, cycleDate string) error {
	s.called = true
	return s.err
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}
