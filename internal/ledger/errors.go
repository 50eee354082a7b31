package ledger

import "errors"

var (
	// ErrInvalidInput marks requests rejected before touching storage.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAttendanceCriterionMissing means the catalog has no attendance
	// criterion, which is a configuration problem, not an empty result.
	ErrAttendanceCriterionMissing = errors.New("attendance criterion not found in catalog")

	// ErrNoExpectedLessons guards the monthly denominator: a month with
	// zero occurrences of the lesson weekday is treated as bad input,
	// never as a silent zero.
	ErrNoExpectedLessons = errors.New("no expected lesson days in month")
)
