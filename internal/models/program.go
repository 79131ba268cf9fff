package models

// Program is a reference catalog entry for an academic program.
// Capacity is the number of seats available in one admission cycle.
type Program struct {
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
}
