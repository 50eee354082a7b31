package ledger

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lektion/internal/catalog"
	"github.com/shrimpsizemoose/lektion/internal/metrics"
	"github.com/shrimpsizemoose/lektion/internal/models"
	"github.com/shrimpsizemoose/lektion/internal/store"
)

// Ledger is the score ledger and analytics engine. It holds no state
// of its own: every call is a function of current store contents plus
// its arguments.
type Ledger struct {
	store          store.ScoreStore
	catalog        *catalog.Catalog
	attendanceName string
	lessonWeekday  time.Weekday
}

func New(st store.ScoreStore, cat *catalog.Catalog, attendanceName string, lessonWeekday time.Weekday) *Ledger {
	return &Ledger{
		store:          st,
		catalog:        cat,
		attendanceName: attendanceName,
		lessonWeekday:  lessonWeekday,
	}
}

// StudentScores is one student's row for a lesson date, criterion
// values keyed by criterion name.
type StudentScores struct {
	StudentID   int64             `json:"student_id"`
	StudentName string            `json:"student_name"`
	LessonDate  string            `json:"lesson_date"`
	Scores      map[string]bool   `json:"scores"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// LessonScores is the getLessonScores response shape.
type LessonScores struct {
	Scores       []StudentScores `json:"scores"`
	PreviousDate *string         `json:"previous_date,omitempty"`
	NextDate     *string         `json:"next_date,omitempty"`
	Subject      string          `json:"subject,omitempty"`
	Activity     string          `json:"activity,omitempty"`
}

// AttendanceStats mirrors the per-student attendance analysis.
type AttendanceStats struct {
	StudentID     int64   `json:"student_id"`
	ClassID       int64   `json:"class_id"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	Attended      int     `json:"attended_lessons"`
	TotalLessons  int     `json:"total_lessons"`
	Percentage    float64 `json:"attendance_percentage"`
	LongestStreak int     `json:"longest_attendance_streak"`
	CurrentStreak int     `json:"current_attendance_streak"`
}

// ClassAttendanceStats aggregates attendance records across a class.
type ClassAttendanceStats struct {
	ClassID          int64   `json:"class_id"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	LessonDatesCount int     `json:"lesson_dates_count"`
	PresentRecords   int     `json:"total_present_attendance_records"`
	TotalRecords     int     `json:"total_attendance_records"`
	Percentage       float64 `json:"class_attendance_percentage"`
}

// SubmitLesson reconciles a full lesson submission against existing
// records. Resubmitting identical marks writes nothing; the lesson
// info upsert and any score writes commit as one transaction.
func (l *Ledger) SubmitLesson(classID int64, sub *models.LessonSubmission) error {
	if classID <= 0 {
		return fmt.Errorf("%w: class id must be positive", ErrInvalidInput)
	}
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	entries := make(map[int64]map[string]models.Mark, len(sub.Entries))
	studentIDs := make([]int64, 0, len(sub.Entries))
	for rawID, marks := range sub.Entries {
		studentID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || studentID <= 0 {
			return fmt.Errorf("%w: bad student id %q", ErrInvalidInput, rawID)
		}
		entries[studentID] = marks
		studentIDs = append(studentIDs, studentID)
	}

	byName, err := l.catalog.ByName()
	if err != nil {
		return err
	}

	existing, err := l.store.FetchLessonScores(studentIDs, sub.LessonDate)
	if err != nil {
		return err
	}

	plan := BuildPlan(existing, entries, byName, sub.LessonDate)

	batch := models.LessonBatch{
		ClassID:    classID,
		LessonDate: sub.LessonDate,
		Inserts:    plan.Inserts,
		Updates:    plan.Updates,
		Info: &models.LessonInfo{
			ClassID:    classID,
			LessonDate: sub.LessonDate,
			Subject:    sub.Subject,
			Activity:   sub.Activity,
		},
	}

	if err := l.store.SaveLessonBatch(batch); err != nil {
		return err
	}

	metrics.ScoreWritesTotal.WithLabelValues("insert").Add(float64(len(plan.Inserts)))
	metrics.ScoreWritesTotal.WithLabelValues("update").Add(float64(len(plan.Updates)))
	metrics.ScoreWritesTotal.WithLabelValues("noop").Add(float64(plan.Unchanged))

	logger.Debug.Printf(
		"Lesson %s class %d reconciled: %d inserts, %d updates, %d unchanged",
		sub.LessonDate, classID, len(plan.Inserts), len(plan.Updates), plan.Unchanged,
	)

	return nil
}

// GetLessonScores returns per-student scores for one class and date,
// optionally with the chronologically adjacent lesson dates for
// navigation. Students who joined later or left earlier than the date
// are filtered out.
func (l *Ledger) GetLessonScores(classID int64, lessonDate string, includeAdjacent bool) (*LessonScores, error) {
	if classID <= 0 {
		return nil, fmt.Errorf("%w: class id must be positive", ErrInvalidInput)
	}
	if _, err := ParseDate(lessonDate); err != nil {
		return nil, err
	}

	students, err := l.store.ListClassStudents(classID)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(students))
	studentIDs := make([]int64, 0, len(students))
	for _, student := range students {
		if !student.ActiveOn(lessonDate) {
			continue
		}
		names[student.ID] = student.Name
		studentIDs = append(studentIDs, student.ID)
	}

	records, err := l.store.FetchLessonScores(studentIDs, lessonDate)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[int64]*StudentScores)
	for _, rec := range records {
		name, ok, err := l.catalog.NameByID(rec.CriteriaID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		row, exists := byStudent[rec.StudentID]
		if !exists {
			row = &StudentScores{
				StudentID:   rec.StudentID,
				StudentName: names[rec.StudentID],
				LessonDate:  lessonDate,
				Scores:      make(map[string]bool),
			}
			byStudent[rec.StudentID] = row
		}
		row.Scores[name] = rec.Value
		if rec.Notes != "" {
			if row.Notes == nil {
				row.Notes = make(map[string]string)
			}
			row.Notes[name] = rec.Notes
		}
	}

	result := &LessonScores{Scores: make([]StudentScores, 0, len(byStudent))}
	for _, row := range byStudent {
		result.Scores = append(result.Scores, *row)
	}
	sort.Slice(result.Scores, func(i, j int) bool {
		return result.Scores[i].StudentID < result.Scores[j].StudentID
	})

	info, err := l.store.GetLessonInfo(classID, lessonDate)
	if err != nil {
		return nil, err
	}
	if info != nil {
		result.Subject = info.Subject
		result.Activity = info.Activity
	}

	if includeAdjacent {
		dates, err := l.store.ListLessonDates(classID)
		if err != nil {
			return nil, err
		}
		result.PreviousDate, result.NextDate = AdjacentDates(dates, lessonDate)
	}

	return result, nil
}

// DeleteLesson removes every score record and the lesson info for one
// class and date.
func (l *Ledger) DeleteLesson(classID int64, lessonDate string) error {
	if classID <= 0 {
		return fmt.Errorf("%w: class id must be positive", ErrInvalidInput)
	}
	if _, err := ParseDate(lessonDate); err != nil {
		return err
	}

	return l.store.DeleteLesson(classID, lessonDate)
}

// MonthlyReport computes per-criterion percentages for one student and
// month, normalized by the expected-lesson count. A month with no
// records at all yields nil, not a zero-filled report.
func (l *Ledger) MonthlyReport(studentID int64, month, year int) (map[string]float64, error) {
	if studentID <= 0 {
		return nil, fmt.Errorf("%w: student id must be positive", ErrInvalidInput)
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be 1..12, got %d", ErrInvalidInput, month)
	}
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: year %d out of range", ErrInvalidInput, year)
	}

	from, to := monthBounds(year, month)
	records, err := l.store.FetchStudentScores(studentID, from, to)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	expected := CountWeekday(year, time.Month(month), l.lessonWeekday)
	if expected == 0 {
		return nil, fmt.Errorf("%w: %04d-%02d has no %s", ErrNoExpectedLessons, year, month, l.lessonWeekday)
	}

	trueCounts := make(map[int64]int)
	for _, rec := range records {
		if rec.Value {
			trueCounts[rec.CriteriaID]++
		}
	}

	criteria, err := l.catalog.All()
	if err != nil {
		return nil, err
	}

	report := make(map[string]float64, len(criteria))
	for _, criterion := range criteria {
		report[criterion.Name] = round2(float64(trueCounts[criterion.ID]) / float64(expected) * 100)
	}

	return report, nil
}

// StudentAttendance computes totals, percentage and streaks over the
// lessons where this student has an attendance record, true or false.
// Unbounded range ends are passed as empty strings.
func (l *Ledger) StudentAttendance(studentID, classID int64, start, end string) (*AttendanceStats, error) {
	if studentID <= 0 || classID <= 0 {
		return nil, fmt.Errorf("%w: student id and class id must be positive", ErrInvalidInput)
	}
	if err := validateOptionalRange(start, end); err != nil {
		return nil, err
	}

	criterion, ok, err := l.catalog.Lookup(l.attendanceName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAttendanceCriterionMissing, l.attendanceName)
	}

	records, err := l.store.FetchCriterionRecords(studentID, criterion.ID, start, end)
	if err != nil {
		return nil, err
	}

	lessonDates := make([]string, 0, len(records))
	presentDates := make(map[string]bool, len(records))
	attended := 0
	for _, rec := range records {
		lessonDates = append(lessonDates, rec.LessonDate)
		if rec.Value {
			presentDates[rec.LessonDate] = true
			attended++
		}
	}

	stats := &AttendanceStats{
		StudentID:    studentID,
		ClassID:      classID,
		StartDate:    optionalDate(start),
		EndDate:      optionalDate(end),
		Attended:     attended,
		TotalLessons: len(lessonDates),
	}
	if stats.TotalLessons > 0 {
		stats.Percentage = round2(float64(attended) / float64(stats.TotalLessons) * 100)
	}
	stats.LongestStreak, stats.CurrentStreak = ComputeStreaks(lessonDates, presentDates)

	return stats, nil
}

// ClassAttendance aggregates attendance records across every student
// in the class. Percentage is present records over total records, 0.0
// when there are none.
func (l *Ledger) ClassAttendance(classID int64, start, end string) (*ClassAttendanceStats, error) {
	if classID <= 0 {
		return nil, fmt.Errorf("%w: class id must be positive", ErrInvalidInput)
	}
	if err := validateOptionalRange(start, end); err != nil {
		return nil, err
	}

	criterion, ok, err := l.catalog.Lookup(l.attendanceName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAttendanceCriterionMissing, l.attendanceName)
	}

	records, err := l.store.FetchClassCriterionRecords(classID, criterion.ID, start, end)
	if err != nil {
		return nil, err
	}

	present := 0
	dates := make(map[string]bool)
	for _, rec := range records {
		dates[rec.LessonDate] = true
		if rec.Value {
			present++
		}
	}

	stats := &ClassAttendanceStats{
		ClassID:          classID,
		StartDate:        optionalDate(start),
		EndDate:          optionalDate(end),
		LessonDatesCount: len(dates),
		PresentRecords:   present,
		TotalRecords:     len(records),
	}
	if stats.TotalRecords > 0 {
		stats.Percentage = round2(float64(present) / float64(stats.TotalRecords) * 100)
	}

	return stats, nil
}

// SchoolAttendanceStats is the school-wide rollup: one class
// attendance entry per class with active students.
type SchoolAttendanceStats struct {
	StartDate *string                `json:"start_date"`
	EndDate   *string                `json:"end_date"`
	Classes   []ClassAttendanceStats `json:"classes"`
}

// SchoolAttendance computes class attendance for every class in the
// school over one optional date range.
func (l *Ledger) SchoolAttendance(start, end string) (*SchoolAttendanceStats, error) {
	if err := validateOptionalRange(start, end); err != nil {
		return nil, err
	}

	classIDs, err := l.store.ListClassIDs()
	if err != nil {
		return nil, err
	}

	stats := &SchoolAttendanceStats{
		StartDate: optionalDate(start),
		EndDate:   optionalDate(end),
		Classes:   make([]ClassAttendanceStats, 0, len(classIDs)),
	}
	for _, classID := range classIDs {
		classStats, err := l.ClassAttendance(classID, start, end)
		if err != nil {
			return nil, err
		}
		stats.Classes = append(stats.Classes, *classStats)
	}

	return stats, nil
}

func validateOptionalRange(start, end string) error {
	if start != "" {
		if _, err := ParseDate(start); err != nil {
			return err
		}
	}
	if end != "" {
		if _, err := ParseDate(end); err != nil {
			return err
		}
	}
	return nil
}

func optionalDate(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
