package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admission-api/internal/models"
)

// ProgramRepository reads the program catalog. Programs are reference data
// and are never mutated by the simulation engine.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns all programs ordered by code.
func (r *ProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	const query = `SELECT code, name, capacity FROM programs ORDER BY code`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// ListTx returns all programs within the caller's transaction so that a
// simulation run sees a consistent catalog snapshot.
func (r *ProgramRepository) ListTx(ctx context.Context, tx *sqlx.Tx) ([]models.Program, error) {
	const query = `SELECT code, name, capacity FROM programs ORDER BY code`
	var programs []models.Program
	if err := tx.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs in tx: %w", err)
	}
	return programs, nil
}

// FindByCode returns a single program.
func (r *ProgramRepository) FindByCode(ctx context.Context, code string) (*models.Program, error) {
	const query = `SELECT code, name, capacity FROM programs WHERE code = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, code); err != nil {
		return nil, err
	}
	return &program, nil
}
