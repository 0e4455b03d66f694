package rankings

import (
	"testing"

	"amani-schools/app/models"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestTrendFor(t *testing.T) {
	t.Run("no previous published rank is flat", func(t *testing.T) {
		assert.Equal(t, models.TrendFlat, TrendFor(1, nil))
		assert.Equal(t, models.TrendFlat, TrendFor(30, nil))
	})

	t.Run("moving to a lower position is up", func(t *testing.T) {
		assert.Equal(t, models.TrendUp, TrendFor(2, intPtr(5)))
		assert.Equal(t, models.TrendUp, TrendFor(1, intPtr(2)))
	})

	t.Run("moving to a higher position is down", func(t *testing.T) {
		assert.Equal(t, models.TrendDown, TrendFor(5, intPtr(2)))
	})

	t.Run("same position is flat", func(t *testing.T) {
		assert.Equal(t, models.TrendFlat, TrendFor(3, intPtr(3)))
	})
}
