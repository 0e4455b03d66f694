package rankings

import "amani-schools/app/models"

// TrendFor compares a freshly built rank against the student's rank in
// the most recently published ranking for the same scope. A lower
// position is an improvement. No previous rank, or the same rank,
// reads as flat.
func TrendFor(newRank int, prevRank *int) models.Trend {
	switch {
	case prevRank == nil:
		return models.TrendFlat
	case newRank < *prevRank:
		return models.TrendUp
	case newRank > *prevRank:
		return models.TrendDown
	}
	return models.TrendFlat
}
