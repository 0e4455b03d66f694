package rankings

import (
	"database/sql"

	"amani-schools/app/database"
	"amani-schools/app/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type scopeRequest struct {
	AcademicYearID string  `json:"academic_year_id" validate:"omitempty,uuid"`
	Semester       *int    `json:"semester,omitempty" validate:"omitempty,min=1,max=2"`
	Grade          int     `json:"grade" validate:"required,min=1,max=13"`
	SubjectID      *string `json:"subject_id,omitempty" validate:"omitempty,uuid"`
}

func scopeFromRequest(db *sql.DB, req scopeRequest) (Scope, error) {
	yearID := req.AcademicYearID
	if yearID == "" {
		year, err := database.GetCurrentAcademicYear(db)
		if err != nil {
			return Scope{}, err
		}
		yearID = year.ID
	}
	return Scope{
		AcademicYearID: yearID,
		Semester:       req.Semester,
		Grade:          req.Grade,
		SubjectID:      req.SubjectID,
	}, nil
}

func scopeFromQuery(db *sql.DB, c *fiber.Ctx) (Scope, error) {
	req := scopeRequest{
		AcademicYearID: c.Query("academic_year_id"),
		Grade:          c.QueryInt("grade", 0),
	}
	if s := c.QueryInt("semester", 0); s > 0 {
		req.Semester = &s
	}
	if subject := c.Query("subject_id"); subject != "" {
		req.SubjectID = &subject
	}
	return scopeFromRequest(db, req)
}

// BuildRankingsHandler packages computed results into a draft
// leaderboard
func BuildRankingsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req scopeRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		scope, err := scopeFromRequest(db, req)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}

		count, err := BuildRankings(db, scope)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build rankings"})
		}

		return c.JSON(fiber.Map{
			"message": "Rankings built",
			"entries": count,
		})
	}
}

// PublishRankingsHandler makes a built scope visible on the
// leaderboard
func PublishRankingsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req scopeRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		scope, err := scopeFromRequest(db, req)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}

		published, err := PublishRankings(db, scope)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to publish rankings"})
		}

		return c.JSON(fiber.Map{
			"message":   "Rankings published",
			"published": published,
		})
	}
}

// GetLeaderboardHandler is the student/parent surface: published
// entries only
func GetLeaderboardHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromQuery(db, c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}
		if scope.Grade == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "grade is required"})
		}

		entries, err := GetRankings(db, scope, c.QueryInt("limit", 100), true)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load leaderboard"})
		}
		if entries == nil {
			entries = []*models.Ranking{}
		}
		return c.JSON(entries)
	}
}

// PreviewRankingsHandler is the staff surface: unpublished drafts
// included
func PreviewRankingsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromQuery(db, c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No current academic year set"})
		}
		if scope.Grade == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "grade is required"})
		}

		entries, err := GetRankings(db, scope, c.QueryInt("limit", 100), false)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load rankings"})
		}
		if entries == nil {
			entries = []*models.Ranking{}
		}
		return c.JSON(entries)
	}
}
