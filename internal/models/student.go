package models

// Student is external reference data; the ledger only needs enough to
// decide class membership and eligibility on a lesson date.
type Student struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	ClassID      int64   `db:"class_id" json:"class_id"`
	Active       bool    `db:"active" json:"active"`
	DateJoined   *string `db:"date_joined" json:"date_joined,omitempty"`
	InactiveDate *string `db:"inactive_date" json:"inactive_date,omitempty"`
}

// ActiveOn reports whether the student was a member of the class on the
// given lesson date. Dates are ISO YYYY-MM-DD strings, so plain string
// comparison is chronological.
func (s Student) ActiveOn(lessonDate string) bool {
	if s.DateJoined != nil && *s.DateJoined > lessonDate {
		return false
	}
	if s.InactiveDate != nil && *s.InactiveDate < lessonDate {
		return false
	}
	return true
}
