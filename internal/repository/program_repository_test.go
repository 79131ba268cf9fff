package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgramRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestProgramRepositoryList(t *testing.T) {
	db, mock, cleanup := newProgramRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	rows := sqlmock.NewRows([]string{"code", "name", "capacity"}).
		AddRow("CS", "Computer Science", 25).
		AddRow("MATH", "Mathematics", 30)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT code, name, capacity FROM programs ORDER BY code")).
		WillReturnRows(rows)

	programs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, "CS", programs[0].Code)
	assert.Equal(t, 25, programs[0].Capacity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryFindByCode(t *testing.T) {
	db, mock, cleanup := newProgramRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT code, name, capacity FROM programs WHERE code = $1")).
		WithArgs("CS").
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "capacity"}).AddRow("CS", "Computer Science", 25))

	program, err := repo.FindByCode(context.Background(), "CS")
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", program.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryFindByCodeMissing(t *testing.T) {
	db, mock, cleanup := newProgramRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT code, name, capacity FROM programs WHERE code = $1")).
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCode(context.Background(), "NOPE")
	assert.Equal(t, sql.ErrNoRows, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
