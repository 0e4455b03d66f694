package results

import (
	"database/sql"

	"amani-schools/app/database"
	"amani-schools/app/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type computeRequest struct {
	AcademicYearID string `json:"academic_year_id" validate:"omitempty,uuid"`
	Grade          int    `json:"grade" validate:"required,min=1,max=13"`
	Semester       int    `json:"semester" validate:"required,min=1,max=2"`
}

type finalRequest struct {
	AcademicYearID string `json:"academic_year_id" validate:"omitempty,uuid"`
	Grade          int    `json:"grade" validate:"required,min=1,max=13"`
}

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

// ComputeSemesterResultsHandler runs the cohort aggregation
func ComputeSemesterResultsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req computeRequest
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

		summary, err := ComputeSemesterResults(db, yearID, req.Grade, req.Semester)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute results"})
		}

		return c.JSON(fiber.Map{
			"message": "Semester results computed",
			"summary": summary,
		})
	}
}

// ComputeFinalResultsHandler runs the year-end aggregation
func ComputeFinalResultsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req finalRequest
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

		summary, err := ComputeFinalResults(db, yearID, req.Grade)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute final results"})
		}

		return c.JSON(fiber.Map{
			"message": "Final results computed",
			"summary": summary,
		})
	}
}

// GetStudentResultsHandler returns a student's semester and final rows
func GetStudentResultsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		studentID := c.Params("id")

		yearID, err := resolveYearID(db, c.Query("academic_year_id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}

		student, err := database.GetStudentByID(db, studentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load student"})
		}

		semester := c.QueryInt("semester", 0)
		semesterResults, err := GetSemesterResultsByStudent(db, studentID, yearID, semester)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load results"})
		}
		if semesterResults == nil {
			semesterResults = []*models.SemesterResult{}
		}

		finalResult, err := GetFinalResultByStudent(db, studentID, yearID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load final result"})
		}

		return c.JSON(fiber.Map{
			"student":          student,
			"academic_year_id": yearID,
			"semester_results": semesterResults,
			"final_result":     finalResult,
		})
	}
}
