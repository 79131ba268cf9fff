package service

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/uni-admission-api/pkg/errors"
)

type adminFixture struct {
	svc           *AdminService
	enrollments   *enrollmentResetterStub
	passingScores *passingScoreResetterStub
	applicants    *tableResetterStub
	priorities    *tableResetterStub
	invalidations *invalidatorStub
}

func newAdminFixtureWithTx(tx txProvider) *adminFixture {
	enrollments := &enrollmentResetterStub{}
	passingScores := &passingScoreResetterStub{}
	applicants := &tableResetterStub{}
	priorities := &tableResetterStub{}
	invalidations := &invalidatorStub{}
	svc := NewAdminService(enrollments, passingScores, applicants, priorities, invalidations, tx, zap.NewNop())
	return &adminFixture{
		svc:           svc,
		enrollments:   enrollments,
		passingScores: passingScores,
		applicants:    applicants,
		priorities:    priorities,
		invalidations: invalidations,
	}
}

func TestAdminServiceClearEnrollmentScopedToDate(t *testing.T) {
	txProvider, _ := newTxProviderMock(t)
	fixture := newAdminFixtureWithTx(txProvider)

	err := fixture.svc.ClearEnrollment(context.Background(), "01.07.2026")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-07-01"}, fixture.enrollments.deletedDates)
	assert.Equal(t, []string{"2026-07-01"}, fixture.passingScores.deletedDates)
	assert.Equal(t, []string{"2026-07-01"}, fixture.invalidations.dates)
	assert.False(t, fixture.enrollments.deletedAll)
}

func TestAdminServiceClearEnrollmentWithoutDate(t *testing.T) {
	txProvider, _ := newTxProviderMock(t)
	fixture := newAdminFixtureWithTx(txProvider)

	err := fixture.svc.ClearEnrollment(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, fixture.enrollments.deletedAll)
	assert.Empty(t, fixture.passingScores.deletedDates)
}

func TestAdminServiceClearEnrollmentRejectsBadDate(t *testing.T) {
	txProvider, _ := newTxProviderMock(t)
	fixture := newAdminFixtureWithTx(txProvider)

	err := fixture.svc.ClearEnrollment(context.Background(), "soon")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdminServiceClearAllWipesEveryLedger(t *testing.T) {
	txProvider, mock := newTxProviderMock(t)
	fixture := newAdminFixtureWithTx(txProvider)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := fixture.svc.ClearAll(context.Background())
	require.NoError(t, err)
	assert.True(t, fixture.enrollments.deletedAllTx)
	assert.True(t, fixture.priorities.cleared)
	assert.True(t, fixture.applicants.cleared)
	assert.True(t, fixture.passingScores.cleared)
	assert.True(t, fixture.invalidations.droppedAll, "full reset must drop every cached table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

type enrollmentResetterStub struct {
	deletedDates []string
	deletedAll   bool
	deletedAllTx bool
}

func (s *enrollmentResetterStub) DeleteByDate(ctx context.Context, cycleDate string) error {
	s.deletedDates = append(s.deletedDates, cycleDate)
	return nil
}

func (s *enrollmentResetterStub) DeleteAll(ctx context.Context) error {
	s.deletedAll = true
	return nil
}

func (s *enrollmentResetterStub) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	s.deletedAllTx = true
	return nil
}

type passingScoreResetterStub struct {
	deletedDates []string
	cleared      bool
}

func (s *passingScoreResetterStub) DeleteByDate(ctx context.Context, cycleDate string) error {
	s.deletedDates = append(s.deletedDates, cycleDate)
	return nil
}

func (s *passingScoreResetterStub) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	s.cleared = true
	return nil
}

type tableResetterStub struct {
	cleared bool
}

func (s *tableResetterStub) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	s.cleared = true
	return nil
}

type invalidatorStub struct {
	dates      []string
	droppedAll bool
}

func (s *invalidatorStub) InvalidateCache(ctx context.Context, cycleDate string) error {
	s.dates = append(s.dates, cycleDate)
	return nil
}

func (s *invalidatorStub) InvalidateAllCache(ctx context.Context) error {
	s.droppedAll = true
	return nil
}
