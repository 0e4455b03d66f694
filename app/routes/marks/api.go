package marks

import (
	"database/sql"

	"amani-schools/app/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func auditFromCtx(c *fiber.Ctx) AuditContext {
	return AuditContext{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

func statusForMarkError(err error) int {
	switch err {
	case ErrSemesterClosed, ErrEditAfterLock, ErrAssessmentLocked:
		return fiber.StatusConflict
	case ErrExceedsMaxMarks:
		return fiber.StatusBadRequest
	case ErrMarkNotFound:
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// BatchUpsertMarksHandler writes marks for a whole class in one call
func BatchUpsertMarksHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		type batchRequest struct {
			AssessmentID string       `json:"assessment_id" validate:"required,uuid"`
			Entries      []BatchEntry `json:"entries" validate:"required,min=1,dive"`
		}

		var req batchRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		teacherID := c.Locals("user_id").(string)
		result, err := BatchUpsertMarks(db, req.AssessmentID, teacherID, req.Entries, auditFromCtx(c))
		if err != nil {
			status := statusForMarkError(err)
			if status == fiber.StatusInternalServerError {
				return c.Status(status).JSON(fiber.Map{"error": "Failed to save marks"})
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{
			"message": "Marks saved",
			"result":  result,
		})
	}
}

// UpdateMarkHandler rewrites one mark's value
func UpdateMarkHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		type updateRequest struct {
			MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
		}

		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		markID := c.Params("id")
		actorID := c.Locals("user_id").(string)
		if err := UpdateMark(db, markID, actorID, req.MarksObtained, auditFromCtx(c)); err != nil {
			status := statusForMarkError(err)
			if status == fiber.StatusInternalServerError {
				return c.Status(status).JSON(fiber.Map{"error": "Failed to update mark"})
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		mark, err := GetMarkByID(db, markID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load mark"})
		}
		return c.JSON(mark)
	}
}

// DeleteMarkHandler soft-deletes one mark
func DeleteMarkHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		markID := c.Params("id")
		actorID := c.Locals("user_id").(string)

		if err := DeleteMark(db, markID, actorID, auditFromCtx(c)); err != nil {
			status := statusForMarkError(err)
			if status == fiber.StatusInternalServerError {
				return c.Status(status).JSON(fiber.Map{"error": "Failed to delete mark"})
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SubmitMarkHandler flags a mark as submitted
func SubmitMarkHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		markID := c.Params("id")
		actorID := c.Locals("user_id").(string)

		if err := SubmitMark(db, markID, actorID, auditFromCtx(c)); err != nil {
			status := statusForMarkError(err)
			if status == fiber.StatusInternalServerError {
				return c.Status(status).JSON(fiber.Map{"error": "Failed to submit mark"})
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{"message": "Mark submitted"})
	}
}

// GetMarkHandler returns one mark
func GetMarkHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mark, err := GetMarkByID(db, c.Params("id"))
		if err != nil {
			if err == ErrMarkNotFound {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mark not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load mark"})
		}
		return c.JSON(mark)
	}
}

// GetMarksByAssessmentHandler lists marks for an assessment
func GetMarksByAssessmentHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := GetMarksByAssessment(db, c.Params("assessmentId"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load marks"})
		}
		if result == nil {
			result = []*models.Mark{}
		}
		return c.JSON(result)
	}
}

// GetMarkHistoryHandler returns the audit trail for one mark
func GetMarkHistoryHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logs, err := GetMarkHistory(db, c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load mark history"})
		}
		if logs == nil {
			logs = []*models.MarkChangeLog{}
		}
		return c.JSON(logs)
	}
}

// GetActivityHandler returns the school-wide recent mark activity feed
func GetActivityHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		actorID := c.Query("actor_id")

		entries, err := GetRecentActivity(db, actorID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load activity"})
		}
		if entries == nil {
			entries = []*ActivityEntry{}
		}
		return c.JSON(entries)
	}
}
