package periods

import (
	"database/sql"

	"amani-schools/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the semester period lifecycle routes
func RegisterRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/periods", auth.AuthMiddleware)

	api.Get("/current", GetCurrentPeriodsHandler(db))
	api.Get("/unlock-logs", auth.RoleMiddleware("admin", "head_teacher"), GetUnlockLogsHandler(db))

	api.Post("/open", auth.RoleMiddleware("admin", "head_teacher"), OpenSemesterHandler(db))
	api.Post("/close", auth.RoleMiddleware("admin", "head_teacher"), CloseSemesterHandler(db))
	api.Post("/unlock", auth.RoleMiddleware("admin"), UnlockSemesterHandler(db))
}
