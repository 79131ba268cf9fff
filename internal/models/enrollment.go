package models

// EnrollmentAssignment records one applicant admitted to one program by a
// simulation run. An applicant holds at most one assignment per cycle date.
type EnrollmentAssignment struct {
	ID           string `db:"id" json:"id"`
	ApplicantID  int64  `db:"applicant_id" json:"applicant_id"`
	ProgramCode  string `db:"program_code" json:"program_code"`
	PriorityRank int    `db:"priority_rank" json:"priority_rank"`
	TotalScore   int    `db:"total_score" json:"total_score"`
	CycleDate    string `db:"cycle_date" json:"cycle_date"`
}

// EnrollmentStats aggregates a program's assignments for one cycle date.
type EnrollmentStats struct {
	EnrolledCount int  `db:"enrolled_count"`
	MinScore      *int `db:"min_score"`
}

// SimulationSummary reports aggregate counts of one engine run.
type SimulationSummary struct {
	Assigned   int `json:"assigned"`
	Unassigned int `json:"unassigned"`
}
