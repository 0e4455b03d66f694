package results

import (
	"database/sql"

	"amani-schools/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupResultsRoutes sets up all results-related routes
func SetupResultsRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/results")
	api.Use(auth.AuthMiddleware)

	api.Get("/student/:id", GetStudentResultsHandler(db))

	staff := auth.RoleMiddleware("admin", "head_teacher")
	api.Post("/compute", staff, ComputeSemesterResultsHandler(db))
	api.Post("/final", staff, ComputeFinalResultsHandler(db))
}
