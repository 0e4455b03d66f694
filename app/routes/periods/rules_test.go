package periods

import (
	"testing"

	"amani-schools/app/models"

	"github.com/stretchr/testify/assert"
)

func statusPtr(s models.PeriodStatus) *models.PeriodStatus {
	return &s
}

func TestResolveStatus(t *testing.T) {
	t.Run("grade row overrides year row", func(t *testing.T) {
		got := ResolveStatus(statusPtr(models.PeriodOpen), statusPtr(models.PeriodClosed))
		assert.Equal(t, models.PeriodClosed, got)

		got = ResolveStatus(statusPtr(models.PeriodClosed), statusPtr(models.PeriodOpen))
		assert.Equal(t, models.PeriodOpen, got)
	})

	t.Run("year row applies without grade row", func(t *testing.T) {
		got := ResolveStatus(statusPtr(models.PeriodOpen), nil)
		assert.Equal(t, models.PeriodOpen, got)
	})

	t.Run("missing records default to closed", func(t *testing.T) {
		got := ResolveStatus(nil, nil)
		assert.Equal(t, models.PeriodClosed, got)
	})
}

func TestCanOpen(t *testing.T) {
	t.Run("semester 1 opens when closed", func(t *testing.T) {
		err := CanOpen(1, models.PeriodClosed, models.PeriodClosed)
		assert.NoError(t, err)
	})

	t.Run("reopening an open semester fails", func(t *testing.T) {
		err := CanOpen(1, models.PeriodOpen, models.PeriodClosed)
		assert.ErrorIs(t, err, ErrAlreadyOpen)
	})

	t.Run("semester 2 blocked while semester 1 open", func(t *testing.T) {
		err := CanOpen(2, models.PeriodClosed, models.PeriodOpen)
		assert.ErrorIs(t, err, ErrPeriodOrderViolation)
	})

	t.Run("semester 2 opens once semester 1 closed", func(t *testing.T) {
		err := CanOpen(2, models.PeriodClosed, models.PeriodClosed)
		assert.NoError(t, err)
	})

	t.Run("rejects invalid semester", func(t *testing.T) {
		assert.ErrorIs(t, CanOpen(0, models.PeriodClosed, models.PeriodClosed), ErrInvalidSemester)
		assert.ErrorIs(t, CanOpen(3, models.PeriodClosed, models.PeriodClosed), ErrInvalidSemester)
	})
}

func TestCanOpenYearWide(t *testing.T) {
	t.Run("semester 2 blocked while a grade override keeps semester 1 open", func(t *testing.T) {
		// Semester 1 opened for one grade only: the year row reads
		// closed, but the override must still block the year-wide open.
		err := CanOpenYearWide(2, models.PeriodClosed, models.PeriodClosed, true)
		assert.ErrorIs(t, err, ErrPeriodOrderViolation)
	})

	t.Run("semester 2 opens once every grade closed semester 1", func(t *testing.T) {
		assert.NoError(t, CanOpenYearWide(2, models.PeriodClosed, models.PeriodClosed, false))
	})

	t.Run("semester 1 ignores semester 1 overrides", func(t *testing.T) {
		assert.NoError(t, CanOpenYearWide(1, models.PeriodClosed, models.PeriodClosed, true))
	})

	t.Run("year-row rules still apply", func(t *testing.T) {
		assert.ErrorIs(t, CanOpenYearWide(2, models.PeriodClosed, models.PeriodOpen, false), ErrPeriodOrderViolation)
		assert.ErrorIs(t, CanOpenYearWide(1, models.PeriodOpen, models.PeriodClosed, false), ErrAlreadyOpen)
	})
}

func TestCanClose(t *testing.T) {
	t.Run("closes an open semester", func(t *testing.T) {
		assert.NoError(t, CanClose(1, models.PeriodOpen))
	})

	t.Run("closing a closed semester fails", func(t *testing.T) {
		assert.ErrorIs(t, CanClose(1, models.PeriodClosed), ErrAlreadyClosed)
	})

	t.Run("rejects invalid semester", func(t *testing.T) {
		assert.ErrorIs(t, CanClose(5, models.PeriodOpen), ErrInvalidSemester)
	})
}

func TestSummariseOpenState(t *testing.T) {
	t.Run("no grades means none", func(t *testing.T) {
		state, semester := SummariseOpenState(nil)
		assert.Equal(t, OpenNone, state)
		assert.Equal(t, 0, semester)
	})

	t.Run("all grades closed means none", func(t *testing.T) {
		state, _ := SummariseOpenState([]GradeSemester{
			{Grade: 1, Semester: 0},
			{Grade: 2, Semester: 0},
		})
		assert.Equal(t, OpenNone, state)
	})

	t.Run("all grades on the same semester means single", func(t *testing.T) {
		state, semester := SummariseOpenState([]GradeSemester{
			{Grade: 1, Semester: 2},
			{Grade: 2, Semester: 2},
			{Grade: 3, Semester: 2},
		})
		assert.Equal(t, OpenSingle, state)
		assert.Equal(t, 2, semester)
	})

	t.Run("grades on different semesters means mixed", func(t *testing.T) {
		state, _ := SummariseOpenState([]GradeSemester{
			{Grade: 1, Semester: 1},
			{Grade: 2, Semester: 2},
		})
		assert.Equal(t, OpenMixed, state)
	})

	t.Run("one open grade among closed grades means mixed", func(t *testing.T) {
		state, _ := SummariseOpenState([]GradeSemester{
			{Grade: 1, Semester: 1},
			{Grade: 2, Semester: 0},
		})
		assert.Equal(t, OpenMixed, state)
	})
}
