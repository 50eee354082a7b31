package models

import (
	"github.com/go-playground/validator/v10"
)

// LessonInfo is lesson-level metadata independent of individual scores,
// unique per (class_id, lesson_date).
type LessonInfo struct {
	ClassID    int64  `db:"class_id" json:"class_id"`
	LessonDate string `db:"lesson_date" json:"lesson_date"`
	Subject    string `db:"subject" json:"subject"`
	Activity   string `db:"activity" json:"activity"`
}

// Mark is one submitted cell: a boolean plus optional notes.
type Mark struct {
	Value bool   `json:"value"`
	Notes string `json:"notes"`
}

// LessonSubmission is a full lesson submission for one class and date.
// Entries maps student id (decimal string, JSON keys) to criterion name
// to mark. Partial entries are accepted; missing criteria for a listed
// student simply produce no record.
type LessonSubmission struct {
	LessonDate string                     `json:"lesson_date" validate:"required,datetime=2006-01-02"`
	Subject    string                     `json:"subject" validate:"max=200"`
	Activity   string                     `json:"activity" validate:"max=200"`
	Entries    map[string]map[string]Mark `json:"entries"`
}

func (s *LessonSubmission) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// LessonBatch is the unit of work the store commits atomically:
// score inserts and updates plus the lesson_info upsert.
type LessonBatch struct {
	ClassID    int64
	LessonDate string
	Inserts    []ScoreRecord
	Updates    []ScoreRecord
	Info       *LessonInfo
}
