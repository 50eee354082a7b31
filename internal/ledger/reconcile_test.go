package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shrimpsizemoose/lektion/internal/models"
)

var testCriteria = map[string]models.Criterion{
	"attendance": {ID: 1, Name: "attendance", Label: "Attendance"},
	"uniform":    {ID: 2, Name: "uniform", Label: "Uniform"},
}

func TestBuildPlan_FreshLesson(t *testing.T) {
	entries := map[int64]map[string]models.Mark{
		10: {
			"attendance": {Value: true},
			"uniform":    {Value: false, Notes: "forgot tie"},
		},
		11: {
			"attendance": {Value: false},
		},
	}

	plan := BuildPlan(nil, entries, testCriteria, "2024-12-06")

	assert.Len(t, plan.Inserts, 3)
	assert.Empty(t, plan.Updates)
	assert.Zero(t, plan.Unchanged)
	for _, rec := range plan.Inserts {
		assert.Equal(t, "2024-12-06", rec.LessonDate)
	}
}

func TestBuildPlan_Resubmission(t *testing.T) {
	existing := []models.ScoreRecord{
		{StudentID: 10, LessonDate: "2024-12-06", CriteriaID: 1, Value: true},
		{StudentID: 10, LessonDate: "2024-12-06", CriteriaID: 2, Value: false, Notes: "forgot tie"},
	}

	t.Run("identical marks produce empty plan", func(t *testing.T) {
		entries := map[int64]map[string]models.Mark{
			10: {
				"attendance": {Value: true},
				"uniform":    {Value: false, Notes: "forgot tie"},
			},
		}

		plan := BuildPlan(existing, entries, testCriteria, "2024-12-06")

		assert.True(t, plan.Empty())
		assert.Equal(t, 2, plan.Unchanged)
	})

	t.Run("changed value becomes an update", func(t *testing.T) {
		entries := map[int64]map[string]models.Mark{
			10: {
				"attendance": {Value: false},
				"uniform":    {Value: false, Notes: "forgot tie"},
			},
		}

		plan := BuildPlan(existing, entries, testCriteria, "2024-12-06")

		assert.Empty(t, plan.Inserts)
		assert.Len(t, plan.Updates, 1)
		assert.Equal(t, int64(1), plan.Updates[0].CriteriaID)
		assert.False(t, plan.Updates[0].Value)
		assert.Equal(t, 1, plan.Unchanged)
	})

	t.Run("changed notes alone become an update", func(t *testing.T) {
		entries := map[int64]map[string]models.Mark{
			10: {
				"uniform": {Value: false, Notes: "fixed next day"},
			},
		}

		plan := BuildPlan(existing, entries, testCriteria, "2024-12-06")

		assert.Empty(t, plan.Inserts)
		assert.Len(t, plan.Updates, 1)
		assert.Equal(t, "fixed next day", plan.Updates[0].Notes)
	})
}

func TestBuildPlan_UnknownCriterionSkipped(t *testing.T) {
	entries := map[int64]map[string]models.Mark{
		10: {
			"attendance": {Value: true},
			"haircut":    {Value: true},
		},
	}

	plan := BuildPlan(nil, entries, testCriteria, "2024-12-06")

	assert.Len(t, plan.Inserts, 1)
	assert.Equal(t, int64(1), plan.Inserts[0].CriteriaID)
}

func TestBuildPlan_MixedNewAndKnownStudents(t *testing.T) {
	existing := []models.ScoreRecord{
		{StudentID: 10, LessonDate: "2024-12-06", CriteriaID: 1, Value: true},
	}
	entries := map[int64]map[string]models.Mark{
		10: {"attendance": {Value: true}},
		11: {"attendance": {Value: true}},
	}

	plan := BuildPlan(existing, entries, testCriteria, "2024-12-06")

	assert.Len(t, plan.Inserts, 1)
	assert.Equal(t, int64(11), plan.Inserts[0].StudentID)
	assert.Empty(t, plan.Updates)
	assert.Equal(t, 1, plan.Unchanged)
}
