package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/lektion/internal/models"
)

type ScoreStore interface {
	Close() error
	ApplyMigrations(dir string) error

	ListCriteria() ([]models.Criterion, error)
	CreateCriterion(criterion models.Criterion) error

	ListClassStudents(classID int64) ([]models.Student, error)
	CreateStudent(student models.Student) error
	ListClassIDs() ([]int64, error)

	FetchLessonScores(studentIDs []int64, lessonDate string) ([]models.ScoreRecord, error)
	SaveLessonBatch(batch models.LessonBatch) error
	DeleteLesson(classID int64, lessonDate string) error
	ListLessonDates(classID int64) ([]string, error)
	GetLessonInfo(classID int64, lessonDate string) (*models.LessonInfo, error)

	FetchStudentScores(studentID int64, from, to string) ([]models.ScoreRecord, error)
	FetchCriterionRecords(studentID, criteriaID int64, start, end string) ([]models.ScoreRecord, error)
	FetchClassCriterionRecords(classID, criteriaID int64, start, end string) ([]models.ScoreRecord, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) ListCriteria() ([]models.Criterion, error) {
	var criteria []models.Criterion
	err := s.DB.Select(&criteria, `
		SELECT id, name, label
		FROM criteria
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	return criteria, nil
}

func (s *BaseStore) CreateCriterion(criterion models.Criterion) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO criteria (name, label)
		VALUES (:name, :label)
		ON CONFLICT(name) DO UPDATE SET
		label = excluded.label
	`, criterion)
	if err != nil {
		return fmt.Errorf("failed to create criterion: %w", err)
	}
	return nil
}

func (s *BaseStore) ListClassStudents(classID int64) ([]models.Student, error) {
	var students []models.Student
	query := s.Converter(`
		SELECT id, name, class_id, active, date_joined, inactive_date
		FROM students
		WHERE class_id = ?
		AND active = TRUE
		ORDER BY name ASC
	`)

	err := s.DB.Select(&students, query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list class students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) CreateStudent(student models.Student) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO students (name, class_id, active, date_joined, inactive_date)
		VALUES (:name, :class_id, :active, :date_joined, :inactive_date)
	`, student)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// ListClassIDs returns the distinct class ids with active students,
// ascending. There is no separate classes table; active membership
// defines which classes exist.
func (s *BaseStore) ListClassIDs() ([]int64, error) {
	var ids []int64
	err := s.DB.Select(&ids, `
		SELECT DISTINCT class_id
		FROM students
		WHERE active = TRUE
		ORDER BY class_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list class ids: %w", err)
	}
	return ids, nil
}

// FetchLessonScores grabs every existing record for the submitted
// students on one date in a single round trip, so reconciliation never
// does per-cell lookups.
func (s *BaseStore) FetchLessonScores(studentIDs []int64, lessonDate string) ([]models.ScoreRecord, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT student_id, lesson_date, criteria_id, value, notes
		FROM scores
		WHERE lesson_date = ?
		AND student_id IN (?)
	`, lessonDate, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build lesson scores query: %w", err)
	}

	var records []models.ScoreRecord
	err = s.DB.Select(&records, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lesson scores: %w", err)
	}
	return records, nil
}

// SaveLessonBatch commits a reconciliation plan and the lesson_info
// upsert as one transaction: either the whole submission lands or none
// of it does. Inserts go through ON CONFLICT DO UPDATE so a concurrent
// submission racing on the same key degrades to an update instead of
// violating the scores primary key.
func (s *BaseStore) SaveLessonBatch(batch models.LessonBatch) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin lesson batch: %w", err)
	}
	defer tx.Rollback()

	for _, record := range batch.Inserts {
		_, err := tx.NamedExec(`
			INSERT INTO scores (student_id, lesson_date, criteria_id, value, notes)
			VALUES (:student_id, :lesson_date, :criteria_id, :value, :notes)
			ON CONFLICT(student_id, lesson_date, criteria_id) DO UPDATE SET
			value = excluded.value,
			notes = excluded.notes
		`, record)
		if err != nil {
			return fmt.Errorf("failed to insert score: %w", err)
		}
	}

	for _, record := range batch.Updates {
		_, err := tx.NamedExec(`
			UPDATE scores
			SET value = :value, notes = :notes
			WHERE student_id = :student_id
			AND lesson_date = :lesson_date
			AND criteria_id = :criteria_id
		`, record)
		if err != nil {
			return fmt.Errorf("failed to update score: %w", err)
		}
	}

	if batch.Info != nil {
		_, err := tx.NamedExec(`
			INSERT INTO lesson_info (class_id, lesson_date, subject, activity)
			VALUES (:class_id, :lesson_date, :subject, :activity)
			ON CONFLICT(class_id, lesson_date) DO UPDATE SET
			subject = excluded.subject,
			activity = excluded.activity
		`, batch.Info)
		if err != nil {
			return fmt.Errorf("failed to upsert lesson info: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lesson batch: %w", err)
	}
	return nil
}

// DeleteLesson removes every score for the class's students on that
// date plus the lesson_info row, in one transaction. There is no
// per-record deletion.
func (s *BaseStore) DeleteLesson(classID int64, lessonDate string) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin lesson delete: %w", err)
	}
	defer tx.Rollback()

	scoresQuery := s.Converter(`
		DELETE FROM scores
		WHERE lesson_date = ?
		AND student_id IN (SELECT id FROM students WHERE class_id = ?)
	`)
	if _, err := tx.Exec(scoresQuery, lessonDate, classID); err != nil {
		return fmt.Errorf("failed to delete lesson scores: %w", err)
	}

	infoQuery := s.Converter(`
		DELETE FROM lesson_info
		WHERE class_id = ?
		AND lesson_date = ?
	`)
	if _, err := tx.Exec(infoQuery, classID, lessonDate); err != nil {
		return fmt.Errorf("failed to delete lesson info: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lesson delete: %w", err)
	}
	return nil
}

// ListLessonDates returns the distinct lesson dates for a class, as
// defined by its active students' score records, ascending. Dates
// whose only records belong to deactivated students do not count.
func (s *BaseStore) ListLessonDates(classID int64) ([]string, error) {
	var dates []string
	query := s.Converter(`
		SELECT DISTINCT sc.lesson_date
		FROM scores sc
		JOIN students st ON st.id = sc.student_id
		WHERE st.class_id = ?
		AND st.active = TRUE
		ORDER BY sc.lesson_date ASC
	`)

	err := s.DB.Select(&dates, query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lesson dates: %w", err)
	}
	return dates, nil
}

func (s *BaseStore) GetLessonInfo(classID int64, lessonDate string) (*models.LessonInfo, error) {
	var info models.LessonInfo
	query := s.Converter(`
		SELECT class_id, lesson_date, subject, activity
		FROM lesson_info
		WHERE class_id = ?
		AND lesson_date = ?
	`)

	err := s.DB.Get(&info, query, classID, lessonDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson info: %w", err)
	}
	return &info, nil
}

// FetchStudentScores returns a student's records with from <= lesson_date < to.
func (s *BaseStore) FetchStudentScores(studentID int64, from, to string) ([]models.ScoreRecord, error) {
	var records []models.ScoreRecord
	query := s.Converter(`
		SELECT student_id, lesson_date, criteria_id, value, notes
		FROM scores
		WHERE student_id = ?
		AND lesson_date >= ?
		AND lesson_date < ?
		ORDER BY lesson_date ASC
	`)

	err := s.DB.Select(&records, query, studentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student scores: %w", err)
	}
	return records, nil
}

// FetchCriterionRecords returns one student's records for a single
// criterion in ascending date order. Empty bounds mean unbounded.
func (s *BaseStore) FetchCriterionRecords(studentID, criteriaID int64, start, end string) ([]models.ScoreRecord, error) {
	query := `
		SELECT student_id, lesson_date, criteria_id, value, notes
		FROM scores
		WHERE student_id = ?
		AND criteria_id = ?
	`
	args := []interface{}{studentID, criteriaID}

	if start != "" {
		query += ` AND lesson_date >= ?`
		args = append(args, start)
	}
	if end != "" {
		query += ` AND lesson_date <= ?`
		args = append(args, end)
	}
	query += ` ORDER BY lesson_date ASC`

	var records []models.ScoreRecord
	err := s.DB.Select(&records, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch criterion records: %w", err)
	}
	return records, nil
}

// FetchClassCriterionRecords is the class-wide variant, joining through
// students to cover every member of the class.
func (s *BaseStore) FetchClassCriterionRecords(classID, criteriaID int64, start, end string) ([]models.ScoreRecord, error) {
	query := `
		SELECT sc.student_id, sc.lesson_date, sc.criteria_id, sc.value, sc.notes
		FROM scores sc
		JOIN students st ON st.id = sc.student_id
		WHERE st.class_id = ?
		AND sc.criteria_id = ?
	`
	args := []interface{}{classID, criteriaID}

	if start != "" {
		query += ` AND sc.lesson_date >= ?`
		args = append(args, start)
	}
	if end != "" {
		query += ` AND sc.lesson_date <= ?`
		args = append(args, end)
	}
	query += ` ORDER BY sc.lesson_date ASC, sc.student_id ASC`

	var records []models.ScoreRecord
	err := s.DB.Select(&records, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch class criterion records: %w", err)
	}
	return records, nil
}
