// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/lektion/internal/models"
)

// setupTestDB creates an in-memory SQLite database; migrations run in
// the constructor, translated to SQLite dialect.
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store *SQLiteStore
}

// setupTestData seeds two criteria (ids 1 and 2) and three students of
// class 42 (ids 1..3), the third one having left before November.
func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)

	for _, c := range []models.Criterion{
		{Name: "attendance", Label: "Посещение"},
		{Name: "uniform", Label: "Форма"},
	} {
		require.NoError(t, s.CreateCriterion(c), "Failed to insert criterion")
	}

	left := "2024-10-15"
	for _, st := range []models.Student{
		{Name: "Аня", ClassID: 42, Active: true},
		{Name: "Боря", ClassID: 42, Active: true},
		{Name: "Вера", ClassID: 42, Active: true, InactiveDate: &left},
	} {
		require.NoError(t, s.CreateStudent(st), "Failed to insert student")
	}

	return &testData{store: s}, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestCriteriaOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("list criteria", func(t *testing.T) {
		criteria, err := td.store.ListCriteria()
		require.NoError(t, err)
		require.Len(t, criteria, 2)
		assert.Equal(t, "attendance", criteria[0].Name)
		assert.Equal(t, "uniform", criteria[1].Name)
	})

	t.Run("create is upsert on name", func(t *testing.T) {
		err := td.store.CreateCriterion(models.Criterion{Name: "uniform", Label: "Форма одежды"})
		require.NoError(t, err)

		criteria, err := td.store.ListCriteria()
		require.NoError(t, err)
		require.Len(t, criteria, 2)
		assert.Equal(t, "Форма одежды", criteria[1].Label)
	})
}

func TestListClassStudents(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	students, err := td.store.ListClassStudents(42)
	require.NoError(t, err)
	require.Len(t, students, 3)
	// Ordered by name
	assert.Equal(t, "Аня", students[0].Name)
	assert.Equal(t, "Боря", students[1].Name)
	require.NotNil(t, students[2].InactiveDate)
	assert.Equal(t, "2024-10-15", *students[2].InactiveDate)

	others, err := td.store.ListClassStudents(99)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestSaveLessonBatchAndFetch(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	batch := models.LessonBatch{
		ClassID:    42,
		LessonDate: "2024-11-01",
		Inserts: []models.ScoreRecord{
			{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 1, Value: true},
			{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 2, Value: false, Notes: "без формы"},
			{StudentID: 2, LessonDate: "2024-11-01", CriteriaID: 1, Value: false},
		},
		Info: &models.LessonInfo{
			ClassID:    42,
			LessonDate: "2024-11-01",
			Subject:    "Вальс",
			Activity:   "разминка",
		},
	}

	t.Run("save batch", func(t *testing.T) {
		require.NoError(t, td.store.SaveLessonBatch(batch))
	})

	t.Run("fetch lesson scores", func(t *testing.T) {
		records, err := td.store.FetchLessonScores([]int64{1, 2}, "2024-11-01")
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("fetch with empty id list", func(t *testing.T) {
		records, err := td.store.FetchLessonScores(nil, "2024-11-01")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("lesson info round trip", func(t *testing.T) {
		info, err := td.store.GetLessonInfo(42, "2024-11-01")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "Вальс", info.Subject)
		assert.Equal(t, "разминка", info.Activity)
	})

	t.Run("missing lesson info is nil", func(t *testing.T) {
		info, err := td.store.GetLessonInfo(42, "2024-11-08")
		require.NoError(t, err)
		assert.Nil(t, info)
	})
}

// A concurrent submission can race on the scores primary key; the
// insert path must degrade to an update instead of failing.
func TestSaveLessonBatch_InsertConflictDegradesToUpdate(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	first := models.LessonBatch{
		ClassID:    42,
		LessonDate: "2024-11-01",
		Inserts: []models.ScoreRecord{
			{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 1, Value: false},
		},
	}
	require.NoError(t, td.store.SaveLessonBatch(first))

	second := models.LessonBatch{
		ClassID:    42,
		LessonDate: "2024-11-01",
		Inserts: []models.ScoreRecord{
			{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 1, Value: true, Notes: "опоздала"},
		},
	}
	require.NoError(t, td.store.SaveLessonBatch(second))

	records, err := td.store.FetchLessonScores([]int64{1}, "2024-11-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Value)
	assert.Equal(t, "опоздала", records[0].Notes)
}

func TestSaveLessonBatch_Updates(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
		ClassID:    42,
		LessonDate: "2024-11-01",
		Inserts: []models.ScoreRecord{
			{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 1, Value: true},
		},
	}))

	require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
		ClassID:    42,
		LessonDate: "2024-11-01",
		Updates: []models.ScoreRecord{
			{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 1, Value: false, Notes: "ушла раньше"},
		},
	}))

	records, err := td.store.FetchLessonScores([]int64{1}, "2024-11-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Value)
	assert.Equal(t, "ушла раньше", records[0].Notes)
}

func TestDeleteLesson(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	for _, date := range []string{"2024-11-01", "2024-11-08"} {
		require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
			ClassID:    42,
			LessonDate: date,
			Inserts: []models.ScoreRecord{
				{StudentID: 1, LessonDate: date, CriteriaID: 1, Value: true},
				{StudentID: 2, LessonDate: date, CriteriaID: 1, Value: true},
			},
			Info: &models.LessonInfo{ClassID: 42, LessonDate: date},
		}))
	}

	require.NoError(t, td.store.DeleteLesson(42, "2024-11-01"))

	t.Run("deleted date is gone", func(t *testing.T) {
		records, err := td.store.FetchLessonScores([]int64{1, 2}, "2024-11-01")
		require.NoError(t, err)
		assert.Empty(t, records)

		info, err := td.store.GetLessonInfo(42, "2024-11-01")
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("other dates untouched", func(t *testing.T) {
		records, err := td.store.FetchLessonScores([]int64{1, 2}, "2024-11-08")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("delete is scoped to class", func(t *testing.T) {
		dates, err := td.store.ListLessonDates(42)
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-11-08"}, dates)
	})
}

func TestListLessonDates(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	for _, date := range []string{"2024-11-15", "2024-11-01", "2024-11-08"} {
		require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
			ClassID:    42,
			LessonDate: date,
			Inserts: []models.ScoreRecord{
				{StudentID: 1, LessonDate: date, CriteriaID: 1, Value: true},
			},
		}))
	}

	dates, err := td.store.ListLessonDates(42)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-11-01", "2024-11-08", "2024-11-15"}, dates)

	dates, err = td.store.ListLessonDates(99)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

// Dates whose only records belong to deactivated students must not
// surface as navigation neighbours.
func TestListLessonDates_SkipsInactiveStudents(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	require.NoError(t, td.store.CreateStudent(models.Student{Name: "Гоша", ClassID: 42, Active: false}))

	require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
		ClassID:    42,
		LessonDate: "2024-11-15",
		Inserts: []models.ScoreRecord{
			{StudentID: 1, LessonDate: "2024-11-15", CriteriaID: 1, Value: true},
		},
	}))
	require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
		ClassID:    42,
		LessonDate: "2024-11-22",
		Inserts: []models.ScoreRecord{
			{StudentID: 4, LessonDate: "2024-11-22", CriteriaID: 1, Value: true},
		},
	}))

	dates, err := td.store.ListLessonDates(42)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-11-15"}, dates)
}

func TestListClassIDs(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	require.NoError(t, td.store.CreateStudent(models.Student{Name: "Дима", ClassID: 7, Active: true}))
	require.NoError(t, td.store.CreateStudent(models.Student{Name: "Егор", ClassID: 9, Active: false}))

	ids, err := td.store.ListClassIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 42}, ids)
}

func TestFetchStudentScores(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	for _, rec := range []models.ScoreRecord{
		{StudentID: 1, LessonDate: "2024-10-25", CriteriaID: 1, Value: true},
		{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 1, Value: true},
		{StudentID: 1, LessonDate: "2024-11-29", CriteriaID: 1, Value: false},
		{StudentID: 1, LessonDate: "2024-12-06", CriteriaID: 1, Value: true},
	} {
		require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
			ClassID:    42,
			LessonDate: rec.LessonDate,
			Inserts:    []models.ScoreRecord{rec},
		}))
	}

	// Half-open month window: from inclusive, to exclusive.
	records, err := td.store.FetchStudentScores(1, "2024-11-01", "2024-12-01")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-11-01", records[0].LessonDate)
	assert.Equal(t, "2024-11-29", records[1].LessonDate)
}

func TestFetchCriterionRecords(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	for _, rec := range []models.ScoreRecord{
		{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 1, Value: true},
		{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 2, Value: false},
		{StudentID: 1, LessonDate: "2024-11-08", CriteriaID: 1, Value: false},
		{StudentID: 2, LessonDate: "2024-11-08", CriteriaID: 1, Value: true},
	} {
		require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
			ClassID:    42,
			LessonDate: rec.LessonDate,
			Inserts:    []models.ScoreRecord{rec},
		}))
	}

	t.Run("single criterion, single student", func(t *testing.T) {
		records, err := td.store.FetchCriterionRecords(1, 1, "", "")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.True(t, records[0].Value)
		assert.False(t, records[1].Value)
	})

	t.Run("bounded range is inclusive on both ends", func(t *testing.T) {
		records, err := td.store.FetchCriterionRecords(1, 1, "2024-11-08", "2024-11-08")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "2024-11-08", records[0].LessonDate)
	})

	t.Run("class-wide fetch spans students", func(t *testing.T) {
		records, err := td.store.FetchClassCriterionRecords(42, 1, "", "")
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("class-wide fetch honors range", func(t *testing.T) {
		records, err := td.store.FetchClassCriterionRecords(42, 1, "2024-11-08", "")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}
