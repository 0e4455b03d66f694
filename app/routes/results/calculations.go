package results

import (
	"math"
	"sort"

	"amani-schools/app/models"
)

// SubjectComponent is one locked mark's contribution to a subject
// score.
type SubjectComponent struct {
	Obtained float64
	MaxMarks float64
	Weight   int
}

// SubjectScore computes the weighted subject score:
// sum of (obtained/max × weight) over the subject's components.
// With weights summing to 100 the score lands on a 0..100 scale.
func SubjectScore(components []SubjectComponent) float64 {
	var score float64
	for _, c := range components {
		if c.MaxMarks <= 0 {
			continue
		}
		score += (c.Obtained / c.MaxMarks) * float64(c.Weight)
	}
	return math.Round(score*100) / 100
}

// SemesterAverage is the mean over the subjects the student actually
// has scores in. Absent subjects are excluded, not counted as zero.
func SemesterAverage(subjectScores []float64) float64 {
	if len(subjectScores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range subjectScores {
		sum += s
	}
	return math.Round(sum/float64(len(subjectScores))*100) / 100
}

// RankedStudent is one cohort member entering the ranking.
type RankedStudent struct {
	StudentID string
	Score     float64
	Rank      int
}

// AssignCompetitionRanks sorts by score descending and assigns
// competition ranks: equal scores share a rank and the next distinct
// score skips the tied positions, so 90,90,85,70 ranks as 1,1,3,4.
func AssignCompetitionRanks(students []RankedStudent) []RankedStudent {
	ranked := make([]RankedStudent, len(students))
	copy(ranked, students)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	for i := range ranked {
		if i > 0 && ranked[i].Score == ranked[i-1].Score {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
	}
	return ranked
}

// promotionThreshold is inclusive: a combined average of exactly 50.0
// promotes.
const promotionThreshold = 50.0

// PromotionFor decides the year-end outcome from the combined average.
func PromotionFor(combinedAverage float64) models.PromotionStatus {
	if combinedAverage >= promotionThreshold {
		return models.Promoted
	}
	return models.Retained
}

// LetterFor maps a score onto the school's grade boundary table.
// Returns an empty string when no boundary matches.
func LetterFor(boundaries []*models.Grade, score float64) string {
	for _, b := range boundaries {
		if score >= b.MinMarks && score <= b.MaxMarks {
			return b.Name
		}
	}
	return ""
}
