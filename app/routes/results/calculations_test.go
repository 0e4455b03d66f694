package results

import (
	"testing"

	"amani-schools/app/models"

	"github.com/stretchr/testify/assert"
)

func TestSubjectScore(t *testing.T) {
	t.Run("weights full marks to the full weight", func(t *testing.T) {
		score := SubjectScore([]SubjectComponent{
			{Obtained: 40, MaxMarks: 40, Weight: 40},
			{Obtained: 60, MaxMarks: 60, Weight: 60},
		})
		assert.Equal(t, 100.0, score)
	})

	t.Run("scales partial marks by component weight", func(t *testing.T) {
		// 30/40 of a 40% component plus 45/60 of a 60% component
		score := SubjectScore([]SubjectComponent{
			{Obtained: 30, MaxMarks: 40, Weight: 40},
			{Obtained: 45, MaxMarks: 60, Weight: 60},
		})
		assert.Equal(t, 75.0, score)
	})

	t.Run("no components scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, SubjectScore(nil))
	})

	t.Run("ignores components with non-positive max", func(t *testing.T) {
		score := SubjectScore([]SubjectComponent{
			{Obtained: 10, MaxMarks: 0, Weight: 50},
			{Obtained: 50, MaxMarks: 100, Weight: 50},
		})
		assert.Equal(t, 25.0, score)
	})

	t.Run("same input yields the same score", func(t *testing.T) {
		components := []SubjectComponent{
			{Obtained: 33, MaxMarks: 50, Weight: 70},
			{Obtained: 12, MaxMarks: 30, Weight: 30},
		}
		first := SubjectScore(components)
		second := SubjectScore(components)
		assert.Equal(t, first, second)
	})
}

func TestSemesterAverage(t *testing.T) {
	t.Run("averages only the subjects present", func(t *testing.T) {
		// A student missing a subject is averaged over fewer
		// subjects, not padded with a zero.
		assert.Equal(t, 80.0, SemesterAverage([]float64{70, 90}))
		assert.Equal(t, 70.0, SemesterAverage([]float64{70}))
	})

	t.Run("empty input averages to zero", func(t *testing.T) {
		assert.Equal(t, 0.0, SemesterAverage(nil))
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		assert.Equal(t, 66.67, SemesterAverage([]float64{60, 70, 70.01}))
	})
}

func TestAssignCompetitionRanks(t *testing.T) {
	t.Run("ties share a rank and the next rank skips", func(t *testing.T) {
		ranked := AssignCompetitionRanks([]RankedStudent{
			{StudentID: "a", Score: 90},
			{StudentID: "b", Score: 90},
			{StudentID: "c", Score: 85},
			{StudentID: "d", Score: 70},
		})

		ranks := make([]int, len(ranked))
		for i, r := range ranked {
			ranks[i] = r.Rank
		}
		assert.Equal(t, []int{1, 1, 3, 4}, ranks)
	})

	t.Run("orders by score descending", func(t *testing.T) {
		ranked := AssignCompetitionRanks([]RankedStudent{
			{StudentID: "low", Score: 40},
			{StudentID: "high", Score: 95},
			{StudentID: "mid", Score: 60},
		})
		assert.Equal(t, "high", ranked[0].StudentID)
		assert.Equal(t, "mid", ranked[1].StudentID)
		assert.Equal(t, "low", ranked[2].StudentID)
		assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		input := []RankedStudent{
			{StudentID: "a", Score: 10},
			{StudentID: "b", Score: 20},
		}
		AssignCompetitionRanks(input)
		assert.Equal(t, "a", input[0].StudentID)
		assert.Equal(t, 0, input[0].Rank)
	})

	t.Run("empty cohort ranks nobody", func(t *testing.T) {
		assert.Empty(t, AssignCompetitionRanks(nil))
	})
}

func TestPromotionFor(t *testing.T) {
	t.Run("threshold is inclusive", func(t *testing.T) {
		assert.Equal(t, models.Promoted, PromotionFor(50.0))
	})

	t.Run("just below the threshold retains", func(t *testing.T) {
		assert.Equal(t, models.Retained, PromotionFor(49.99))
	})

	t.Run("well above promotes", func(t *testing.T) {
		assert.Equal(t, models.Promoted, PromotionFor(88.5))
	})
}

func TestLetterFor(t *testing.T) {
	boundaries := []*models.Grade{
		{Name: "A", MinMarks: 80, MaxMarks: 100},
		{Name: "B", MinMarks: 70, MaxMarks: 79.99},
		{Name: "F", MinMarks: 0, MaxMarks: 49.99},
	}

	assert.Equal(t, "A", LetterFor(boundaries, 80))
	assert.Equal(t, "B", LetterFor(boundaries, 75.5))
	assert.Equal(t, "F", LetterFor(boundaries, 0))
	assert.Equal(t, "", LetterFor(boundaries, 60)) // gap in the table
	assert.Equal(t, "", LetterFor(nil, 60))
}
