package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shrimpsizemoose/lektion/internal/models"
)

// setupTestDB spins up a throwaway Postgres container and initializes schema
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	postgres, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := postgres.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(dsn, "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		postgres.Terminate(ctx)
	}

	return s, cleanup
}

type testData struct {
	store *PostgresStore
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)

	for _, c := range []models.Criterion{
		{Name: "attendance", Label: "Посещение"},
		{Name: "uniform", Label: "Форма"},
	} {
		require.NoError(t, s.CreateCriterion(c), "Failed to insert criterion")
	}

	for _, st := range []models.Student{
		{Name: "Аня", ClassID: 42, Active: true},
		{Name: "Боря", ClassID: 42, Active: true},
	} {
		require.NoError(t, s.CreateStudent(st), "Failed to insert student")
	}

	return &testData{store: s}, cleanup
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestLessonRoundTrip(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	batch := models.LessonBatch{
		ClassID:    42,
		LessonDate: "2024-11-01",
		Inserts: []models.ScoreRecord{
			{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 1, Value: true},
			{StudentID: 2, LessonDate: "2024-11-01", CriteriaID: 1, Value: false, Notes: "болела"},
		},
		Info: &models.LessonInfo{
			ClassID:    42,
			LessonDate: "2024-11-01",
			Subject:    "Танго",
		},
	}

	t.Run("save batch", func(t *testing.T) {
		require.NoError(t, td.store.SaveLessonBatch(batch))
	})

	t.Run("fetch lesson scores", func(t *testing.T) {
		records, err := td.store.FetchLessonScores([]int64{1, 2}, "2024-11-01")
		require.NoError(t, err)
		require.Len(t, records, 2)
	})

	t.Run("lesson info upsert", func(t *testing.T) {
		batch.Info.Subject = "Вальс"
		batch.Inserts = nil
		require.NoError(t, td.store.SaveLessonBatch(batch))

		info, err := td.store.GetLessonInfo(42, "2024-11-01")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "Вальс", info.Subject)
	})

	t.Run("delete lesson", func(t *testing.T) {
		require.NoError(t, td.store.DeleteLesson(42, "2024-11-01"))

		records, err := td.store.FetchLessonScores([]int64{1, 2}, "2024-11-01")
		require.NoError(t, err)
		assert.Empty(t, records)

		info, err := td.store.GetLessonInfo(42, "2024-11-01")
		require.NoError(t, err)
		assert.Nil(t, info)
	})
}

func TestInsertConflictDegradesToUpdate(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	rec := models.ScoreRecord{StudentID: 1, LessonDate: "2024-11-08", CriteriaID: 1, Value: false}
	require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
		ClassID: 42, LessonDate: rec.LessonDate, Inserts: []models.ScoreRecord{rec},
	}))

	rec.Value = true
	rec.Notes = "пришла к середине"
	require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
		ClassID: 42, LessonDate: rec.LessonDate, Inserts: []models.ScoreRecord{rec},
	}))

	records, err := td.store.FetchLessonScores([]int64{1}, "2024-11-08")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Value)
	assert.Equal(t, "пришла к середине", records[0].Notes)
}

func TestRangeFetches(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	for _, rec := range []models.ScoreRecord{
		{StudentID: 1, LessonDate: "2024-10-25", CriteriaID: 1, Value: true},
		{StudentID: 1, LessonDate: "2024-11-01", CriteriaID: 1, Value: true},
		{StudentID: 2, LessonDate: "2024-11-01", CriteriaID: 1, Value: false},
		{StudentID: 1, LessonDate: "2024-12-06", CriteriaID: 1, Value: true},
	} {
		require.NoError(t, td.store.SaveLessonBatch(models.LessonBatch{
			ClassID: 42, LessonDate: rec.LessonDate, Inserts: []models.ScoreRecord{rec},
		}))
	}

	t.Run("student scores half-open window", func(t *testing.T) {
		records, err := td.store.FetchStudentScores(1, "2024-11-01", "2024-12-01")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "2024-11-01", records[0].LessonDate)
	})

	t.Run("criterion records unbounded", func(t *testing.T) {
		records, err := td.store.FetchCriterionRecords(1, 1, "", "")
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("class criterion records with range", func(t *testing.T) {
		records, err := td.store.FetchClassCriterionRecords(42, 1, "2024-11-01", "2024-11-30")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("lesson dates are distinct and ascending", func(t *testing.T) {
		dates, err := td.store.ListLessonDates(42)
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-10-25", "2024-11-01", "2024-12-06"}, dates)
	})
}
