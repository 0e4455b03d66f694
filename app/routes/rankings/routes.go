package rankings

import (
	"database/sql"

	"amani-schools/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the ranking build/publish and leaderboard
// routes
func RegisterRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/rankings", auth.AuthMiddleware)

	staff := auth.RoleMiddleware("admin", "head_teacher")
	api.Post("/build", staff, BuildRankingsHandler(db))
	api.Post("/publish", staff, PublishRankingsHandler(db))
	api.Get("/preview", staff, PreviewRankingsHandler(db))

	// Published entries only; safe for student and parent consumers.
	app.Get("/api/leaderboard", auth.AuthMiddleware, GetLeaderboardHandler(db))
}
