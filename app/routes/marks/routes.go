package marks

import (
	"database/sql"

	"amani-schools/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the mark entry and audit routes
func RegisterRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/marks", auth.AuthMiddleware)

	api.Get("/activity", auth.RoleMiddleware("admin", "head_teacher"), GetActivityHandler(db))
	api.Get("/assessment/:assessmentId", GetMarksByAssessmentHandler(db))
	api.Get("/:id", GetMarkHandler(db))
	api.Get("/:id/history", GetMarkHistoryHandler(db))

	teachers := auth.RoleMiddleware("admin", "head_teacher", "class_teacher", "subject_teacher")
	api.Post("/batch", teachers, BatchUpsertMarksHandler(db))
	api.Put("/:id", teachers, UpdateMarkHandler(db))
	api.Delete("/:id", teachers, DeleteMarkHandler(db))
	api.Post("/:id/submit", teachers, SubmitMarkHandler(db))

	assessments := app.Group("/api/assessments", auth.AuthMiddleware)
	assessments.Get("/", GetAssessmentsHandler(db))
	assessments.Post("/", teachers, CreateAssessmentHandler(db))
	assessments.Put("/:id", teachers, UpdateAssessmentHandler(db))
	assessments.Delete("/:id", auth.RoleMiddleware("admin", "head_teacher"), DeleteAssessmentHandler(db))

	app.Get("/api/subjects", auth.AuthMiddleware, GetSubjectsHandler(db))
}
