package models

// ScoreRecord is one boolean evaluation of one student on one lesson date.
// At most one record may exist per (student_id, lesson_date, criteria_id),
// enforced by the scores primary key.
type ScoreRecord struct {
	StudentID  int64  `db:"student_id" json:"student_id"`
	LessonDate string `db:"lesson_date" json:"lesson_date"`
	CriteriaID int64  `db:"criteria_id" json:"criteria_id"`
	Value      bool   `db:"value" json:"value"`
	Notes      string `db:"notes" json:"notes"`
}

// Same marks twice must be a no-op at the storage layer, so equality
// covers everything the submitter can change.
func (r ScoreRecord) SameMarks(value bool, notes string) bool {
	return r.Value == value && r.Notes == notes
}
