package periods

import (
	"database/sql"
	"errors"

	"amani-schools/app/database"
	"amani-schools/app/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type periodRequest struct {
	AcademicYearID string `json:"academic_year_id" validate:"omitempty,uuid"`
	Semester       int    `json:"semester" validate:"required,min=1,max=2"`
	Grade          *int   `json:"grade,omitempty" validate:"omitempty,min=1,max=13"`
}

type unlockRequest struct {
	AcademicYearID string `json:"academic_year_id" validate:"omitempty,uuid"`
	Semester       int    `json:"semester" validate:"required,min=1,max=2"`
	Grade          *int   `json:"grade,omitempty" validate:"omitempty,min=1,max=13"`
	Reason         string `json:"reason" validate:"required,min=5"`
}

// resolveYearID falls back to the current academic year when the
// request does not name one.
func resolveYearID(db *sql.DB, yearID string) (string, error) {
	if yearID != "" {
		return yearID, nil
	}
	year, err := database.GetCurrentAcademicYear(db)
	if err != nil {
		return "", err
	}
	return year.ID, nil
}

func statusForRuleError(err error) int {
	switch {
	case errors.Is(err, ErrPeriodOrderViolation):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidSemester):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// OpenSemesterHandler opens a semester for the year or a single grade
func OpenSemesterHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req periodRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		yearID, err := resolveYearID(db, req.AcademicYearID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}

		actorID := c.Locals("user_id").(string)
		if err := OpenSemester(db, yearID, req.Grade, req.Semester, actorID); err != nil {
			// Reopening an open semester is a no-op, not a failure.
			if errors.Is(err, ErrAlreadyOpen) {
				return c.JSON(fiber.Map{"message": "Semester already open"})
			}
			status := statusForRuleError(err)
			if status == fiber.StatusInternalServerError {
				return c.Status(status).JSON(fiber.Map{"error": "Failed to open semester"})
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{
			"message":          "Semester opened",
			"academic_year_id": yearID,
			"semester":         req.Semester,
			"grade":            req.Grade,
		})
	}
}

// CloseSemesterHandler closes a semester and locks its marks
func CloseSemesterHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req periodRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		yearID, err := resolveYearID(db, req.AcademicYearID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}

		actorID := c.Locals("user_id").(string)
		summary, err := CloseSemester(db, yearID, req.Grade, req.Semester, actorID)
		if err != nil {
			// A close that lost the race, or targets a closed
			// semester, changes nothing and succeeds.
			if errors.Is(err, ErrAlreadyClosed) {
				return c.JSON(fiber.Map{"message": "Semester already closed"})
			}
			status := statusForRuleError(err)
			if status == fiber.StatusInternalServerError {
				return c.Status(status).JSON(fiber.Map{"error": "Failed to close semester"})
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{
			"message":          "Semester closed",
			"academic_year_id": yearID,
			"semester":         req.Semester,
			"grade":            req.Grade,
			"locked":           summary,
		})
	}
}

// UnlockSemesterHandler reopens a closed semester with an audit trail
func UnlockSemesterHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req unlockRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		yearID, err := resolveYearID(db, req.AcademicYearID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}

		actorID := c.Locals("user_id").(string)
		summary, err := UnlockSemester(db, yearID, req.Grade, req.Semester, actorID, req.Reason)
		if err != nil {
			if errors.Is(err, ErrAlreadyOpen) {
				return c.JSON(fiber.Map{"message": "Semester already open"})
			}
			status := statusForRuleError(err)
			if status == fiber.StatusInternalServerError {
				return c.Status(status).JSON(fiber.Map{"error": "Failed to unlock semester"})
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{
			"message":          "Semester unlocked",
			"academic_year_id": yearID,
			"semester":         req.Semester,
			"grade":            req.Grade,
			"unlocked":         summary,
		})
	}
}

// GetCurrentPeriodsHandler reports the effective open semester for
// every active grade plus the school-wide state
func GetCurrentPeriodsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		yearID, err := resolveYearID(db, c.Query("academic_year_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}

		// Single-grade view when a grade is named.
		if grade := c.QueryInt("grade", 0); grade > 0 {
			gradeSemesters, err := GetGradeSemesters(db, yearID, []int{grade})
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve period status"})
			}
			return c.JSON(fiber.Map{
				"academic_year_id": yearID,
				"grade":            grade,
				"open_semester":    gradeSemesters[0].Semester,
			})
		}

		grades, err := database.GetActiveGrades(db)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load grades"})
		}

		gradeSemesters, err := GetGradeSemesters(db, yearID, grades)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve period status"})
		}

		state, openSemester := SummariseOpenState(gradeSemesters)

		periodRows, err := GetSemesterPeriods(db, yearID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load semester periods"})
		}

		response := fiber.Map{
			"academic_year_id": yearID,
			"state":            state,
			"grades":           gradeSemesters,
			"periods":          periodRows,
		}
		if state == OpenSingle {
			response["open_semester"] = openSemester
		}
		return c.JSON(response)
	}
}

// GetUnlockLogsHandler returns the unlock audit trail
func GetUnlockLogsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		yearID, err := resolveYearID(db, c.Query("academic_year_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}

		logs, err := GetUnlockLogs(db, yearID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load unlock logs"})
		}
		if logs == nil {
			logs = []*models.UnlockLog{}
		}

		return c.JSON(logs)
	}
}
