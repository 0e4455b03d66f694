package academic

import (
	"database/sql"
	"log"
	"time"

	"amani-schools/app/database"
	"amani-schools/app/models"
	"amani-schools/app/routes/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type academicYearRequest struct {
	Name      string `json:"name" validate:"required,min=4,max=20"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	IsCurrent bool   `json:"is_current"`
	IsActive  bool   `json:"is_active"`
}

// RegisterRoutes registers the academic year registry routes
func RegisterRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/academic-years", auth.AuthMiddleware)

	api.Get("/", GetAcademicYearsHandler(db))
	api.Get("/current", GetCurrentAcademicYearHandler(db))
	api.Get("/:id", GetAcademicYearHandler(db))

	staff := auth.RoleMiddleware("admin", "head_teacher")
	api.Post("/", staff, CreateAcademicYearHandler(db))
	api.Put("/:id", staff, UpdateAcademicYearHandler(db))
	api.Delete("/:id", auth.RoleMiddleware("admin"), DeleteAcademicYearHandler(db))
	api.Put("/:id/set-current", staff, SetCurrentAcademicYearHandler(db))
	api.Post("/auto-set-current", staff, AutoSetCurrentHandler(db))
}

// GetAcademicYearsHandler lists all academic years with their semester
// periods
func GetAcademicYearsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		years, err := getAcademicYearsWithSemesters(db)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch academic years"})
		}
		return c.JSON(years)
	}
}

func GetCurrentAcademicYearHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := database.GetCurrentAcademicYear(db)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No current academic year set"})
		}
		semesters, _ := getSemesterPeriodsByYearID(db, year.ID)
		if semesters == nil {
			semesters = []*models.SemesterPeriod{}
		}
		year.Semesters = semesters
		return c.JSON(year)
	}
}

func GetAcademicYearHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, err := database.GetAcademicYearByID(db, c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Academic year not found"})
		}
		semesters, _ := getSemesterPeriodsByYearID(db, year.ID)
		if semesters == nil {
			semesters = []*models.SemesterPeriod{}
		}
		year.Semesters = semesters
		return c.JSON(year)
	}
}

func CreateAcademicYearHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req academicYearRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		year, err := yearFromRequest(req)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		if err := createAcademicYear(db, year, req.IsCurrent); err != nil {
			log.Printf("Error creating academic year: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create academic year"})
		}

		return c.Status(fiber.StatusCreated).JSON(year)
	}
}

func UpdateAcademicYearHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req academicYearRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		year, err := yearFromRequest(req)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		year.ID = c.Params("id")

		if err := updateAcademicYear(db, year, req.IsCurrent); err != nil {
			log.Printf("Error updating academic year: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update academic year"})
		}

		return c.JSON(fiber.Map{"message": "Academic year updated successfully"})
	}
}

func DeleteAcademicYearHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deleteAcademicYear(db, c.Params("id")); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete academic year"})
		}
		return c.JSON(fiber.Map{"message": "Academic year deleted successfully"})
	}
}

func SetCurrentAcademicYearHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := database.GetAcademicYearByID(db, id); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Academic year not found"})
		}
		if err := setCurrentAcademicYear(db, id); err != nil {
			log.Printf("Error setting current academic year: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to set current academic year"})
		}
		return c.JSON(fiber.Map{"message": "Current academic year updated"})
	}
}

// AutoSetCurrentHandler recomputes the current flag from today's date,
// same as the scheduler does on its own
func AutoSetCurrentHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := AutoSetCurrentAcademicYear(db); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update current academic year"})
		}
		year, err := database.GetCurrentAcademicYear(db)
		if err != nil {
			return c.JSON(fiber.Map{"message": "No academic year covers today's date"})
		}
		return c.JSON(fiber.Map{
			"message":      "Current academic year updated",
			"current_year": year.Name,
		})
	}
}

func yearFromRequest(req academicYearRequest) (*models.AcademicYear, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, err
	}

	// is_current is not copied from the payload; the handlers route it
	// through the atomic clear-then-set instead.
	year := &models.AcademicYear{
		Name:     req.Name,
		IsActive: req.IsActive,
	}
	year.StartDate.Time = start
	year.EndDate.Time = end
	return year, nil
}
