package ledger

import (
	"github.com/shrimpsizemoose/lektion/internal/models"
)

// Plan is the minimal set of writes needed to bring stored scores in
// line with a submission. Unchanged counts cells where the stored value
// already matches, so resubmitting an identical lesson produces an
// empty plan.
type Plan struct {
	Inserts   []models.ScoreRecord
	Updates   []models.ScoreRecord
	Unchanged int
}

func (p Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0
}

type cellKey struct {
	studentID  int64
	criteriaID int64
}

// BuildPlan diffs submitted marks against existing records for one
// lesson date. Criterion names missing from the catalog are skipped
// without error. Existing records are expected to come from a single
// batch fetch for all submitted students.
func BuildPlan(
	existing []models.ScoreRecord,
	entries map[int64]map[string]models.Mark,
	byName map[string]models.Criterion,
	lessonDate string,
) Plan {
	current := make(map[cellKey]models.ScoreRecord, len(existing))
	for _, rec := range existing {
		current[cellKey{rec.StudentID, rec.CriteriaID}] = rec
	}

	var plan Plan
	for studentID, marks := range entries {
		for name, mark := range marks {
			criterion, ok := byName[name]
			if !ok {
				continue
			}

			rec, exists := current[cellKey{studentID, criterion.ID}]
			if exists && rec.SameMarks(mark.Value, mark.Notes) {
				plan.Unchanged++
				continue
			}

			next := models.ScoreRecord{
				StudentID:  studentID,
				LessonDate: lessonDate,
				CriteriaID: criterion.ID,
				Value:      mark.Value,
				Notes:      mark.Notes,
			}
			if exists {
				plan.Updates = append(plan.Updates, next)
			} else {
				plan.Inserts = append(plan.Inserts, next)
			}
		}
	}

	return plan
}
