package models

// PassingScoreStatus classifies a program's cutoff for one cycle date.
type PassingScoreStatus string

const (
	// PassingScoreComputed means the program filled all seats.
	PassingScoreComputed PassingScoreStatus = "COMPUTED"
	// PassingScoreUndersubscribed means seats remained after the run.
	PassingScoreUndersubscribed PassingScoreStatus = "UNDERSUBSCRIBED"
	// PassingScoreNoData means nobody enrolled into the program.
	PassingScoreNoData PassingScoreStatus = "NO_DATA"
)

// PassingScoreRecord stores the per-program cutoff produced by a run.
// PassingScore is nil when status is NO_DATA.
type PassingScoreRecord struct {
	ID           string             `db:"id" json:"id"`
	ProgramCode  string             `db:"program_code" json:"program_code"`
	PassingScore *int               `db:"passing_score" json:"passing_score"`
	Status       PassingScoreStatus `db:"status" json:"status"`
	CycleDate    string             `db:"cycle_date" json:"cycle_date"`
}

// PassingScoreRow is the table row served to clients, joined with the
// program catalog.
type PassingScoreRow struct {
	ProgramCode  string             `db:"program_code" json:"program_code"`
	ProgramName  string             `db:"program_name" json:"program_name"`
	PassingScore *int               `db:"passing_score" json:"passing_score"`
	Status       PassingScoreStatus `db:"status" json:"status"`
	CycleDate    string             `db:"cycle_date" json:"cycle_date"`
	TotalSeats   int                `db:"total_seats" json:"total_seats"`
}
