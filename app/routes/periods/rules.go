package periods

import (
	"errors"

	"amani-schools/app/models"
)

var (
	// ErrPeriodOrderViolation is returned when semester 2 is opened
	// while semester 1 is still open for the same scope.
	ErrPeriodOrderViolation = errors.New("semester 1 must be closed before semester 2 can open")
	// ErrAlreadyOpen signals an open targeting an open semester.
	// Handlers treat it as a no-op, not a failure.
	ErrAlreadyOpen = errors.New("semester is already open")
	// ErrAlreadyClosed signals a close targeting a closed semester.
	// The loser of a concurrent close race observes this and no-ops.
	ErrAlreadyClosed = errors.New("semester is already closed")
	// ErrInvalidSemester is returned for semester values outside 1..2.
	ErrInvalidSemester = errors.New("semester must be 1 or 2")
	// ErrOperationAborted wraps a lock-cascade failure; the whole
	// transaction rolled back and no rows changed.
	ErrOperationAborted = errors.New("operation aborted, no changes applied")
)

// ResolveStatus determines the effective period status for a grade.
// A grade-level row overrides the year-wide row; a missing record
// counts as closed.
func ResolveStatus(yearStatus, gradeStatus *models.PeriodStatus) models.PeriodStatus {
	if gradeStatus != nil {
		return *gradeStatus
	}
	if yearStatus != nil {
		return *yearStatus
	}
	return models.PeriodClosed
}

// CanOpen checks the sequential-open rule: semester 2 may only open
// once semester 1 has been closed. A semester that never opened counts
// as closed, so a school that skips declaring semester 1 is not blocked.
func CanOpen(semester int, current, previous models.PeriodStatus) error {
	if semester < 1 || semester > 2 {
		return ErrInvalidSemester
	}
	if current == models.PeriodOpen {
		return ErrAlreadyOpen
	}
	if semester == 2 && previous == models.PeriodOpen {
		return ErrPeriodOrderViolation
	}
	return nil
}

// CanOpenYearWide applies CanOpen across the whole year: a year-wide
// semester 2 open is also blocked while any grade still holds an open
// semester 1 override row.
func CanOpenYearWide(semester int, current, previous models.PeriodStatus, openPreviousOverride bool) error {
	if err := CanOpen(semester, current, previous); err != nil {
		return err
	}
	if semester == 2 && openPreviousOverride {
		return ErrPeriodOrderViolation
	}
	return nil
}

// CanClose checks that a close targets an open semester.
func CanClose(semester int, current models.PeriodStatus) error {
	if semester < 1 || semester > 2 {
		return ErrInvalidSemester
	}
	if current == models.PeriodClosed {
		return ErrAlreadyClosed
	}
	return nil
}

// OpenState summarises which semesters are open across grades.
type OpenState string

const (
	OpenNone   OpenState = "none"
	OpenSingle OpenState = "single"
	OpenMixed  OpenState = "mixed"
)

// GradeSemester pairs a grade with its currently open semester.
// Semester 0 means no semester is open for the grade.
type GradeSemester struct {
	Grade    int `json:"grade"`
	Semester int `json:"open_semester"`
}

// SummariseOpenState classifies the school-wide period state. When
// every grade has the same open semester (or none) the state is single
// (or none); grades pointing at different semesters make it mixed.
func SummariseOpenState(grades []GradeSemester) (OpenState, int) {
	if len(grades) == 0 {
		return OpenNone, 0
	}

	first := grades[0].Semester
	for _, g := range grades[1:] {
		if g.Semester != first {
			return OpenMixed, 0
		}
	}
	if first == 0 {
		return OpenNone, 0
	}
	return OpenSingle, first
}
