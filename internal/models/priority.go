package models

// PriorityRankMax bounds the number of ranked preferences per applicant.
const PriorityRankMax = 4

// PriorityEntry is one ranked program preference for an applicant on a cycle
// date. Unique on (applicant_id, cycle_date, priority_rank).
type PriorityEntry struct {
	ApplicantID  int64  `db:"applicant_id" json:"applicant_id"`
	ProgramCode  string `db:"program_code" json:"program_code"`
	PriorityRank int    `db:"priority_rank" json:"priority_rank"`
	CycleDate    string `db:"cycle_date" json:"cycle_date"`
}

// PriorityEntryDetail joins a priority entry with program metadata.
type PriorityEntryDetail struct {
	PriorityEntry
	ProgramName string `db:"program_name" json:"program_name"`
}

// PriorityListRow is the joined applicant+priority listing row.
type PriorityListRow struct {
	ApplicantID  int64  `db:"applicant_id" json:"applicant_id"`
	ProgramCode  string `db:"program_code" json:"program_code"`
	PriorityRank int    `db:"priority_rank" json:"priority_rank"`
	PhysicsICT   int    `db:"physics_ict" json:"physics_ict"`
	Russian      int    `db:"russian" json:"russian"`
	Math         int    `db:"math" json:"math"`
	Achievements int    `db:"achievements" json:"achievements"`
	TotalScore   int    `db:"total_score" json:"total_score"`
	Consent      bool   `db:"consent" json:"consent"`
	CycleDate    string `db:"cycle_date" json:"cycle_date"`
}

// PriorityListFilter scopes the joined listing.
type PriorityListFilter struct {
	ProgramCode string
	CycleDate   string
	ApplicantID int64
	Consent     *bool
}
