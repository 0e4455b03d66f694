package marks

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForMarkError(t *testing.T) {
	t.Run("locked writes conflict", func(t *testing.T) {
		assert.Equal(t, fiber.StatusConflict, statusForMarkError(ErrSemesterClosed))
		assert.Equal(t, fiber.StatusConflict, statusForMarkError(ErrEditAfterLock))
		assert.Equal(t, fiber.StatusConflict, statusForMarkError(ErrAssessmentLocked))
	})

	t.Run("over max marks is a bad request", func(t *testing.T) {
		assert.Equal(t, fiber.StatusBadRequest, statusForMarkError(ErrExceedsMaxMarks))
	})

	t.Run("missing mark is not found", func(t *testing.T) {
		assert.Equal(t, fiber.StatusNotFound, statusForMarkError(ErrMarkNotFound))
	})

	t.Run("anything else is a server error", func(t *testing.T) {
		assert.Equal(t, fiber.StatusInternalServerError, statusForMarkError(assert.AnError))
	})
}
