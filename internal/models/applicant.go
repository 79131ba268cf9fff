package models

// ComponentScores holds the four admission test components.
type ComponentScores struct {
	PhysicsICT   int `db:"physics_ict" json:"physics_ict"`
	Russian      int `db:"russian" json:"russian"`
	Math         int `db:"math" json:"math"`
	Achievements int `db:"achievements" json:"achievements"`
}

// Sum returns the composite total. TotalScore is always derived from this,
// never set independently.
func (s ComponentScores) Sum() int {
	return s.PhysicsICT + s.Russian + s.Math + s.Achievements
}

// ApplicantRecord is one scored, consent-flagged applicant row for a cycle
// date. Keyed by (applicant_id, cycle_date).
type ApplicantRecord struct {
	ApplicantID int64  `db:"applicant_id" json:"applicant_id"`
	ComponentScores
	TotalScore int    `db:"total_score" json:"total_score"`
	Consent    bool   `db:"consent" json:"consent"`
	CycleDate  string `db:"cycle_date" json:"cycle_date"`
}

// ApplicantFilter scopes applicant listing queries.
type ApplicantFilter struct {
	ApplicantID int64
	MinScore    int
	CycleDate   string
}

// ApplicantSummary is the distinct applicant row returned by listings.
type ApplicantSummary struct {
	ApplicantID int64  `db:"applicant_id" json:"applicant_id"`
	TotalScore  int    `db:"total_score" json:"total_score"`
	CycleDate   string `db:"cycle_date" json:"cycle_date"`
}

// ApplicantDetail combines the latest record with its ranked priorities.
type ApplicantDetail struct {
	Applicant  ApplicantRecord       `json:"applicant"`
	Priorities []PriorityEntryDetail `json:"priorities"`
}
