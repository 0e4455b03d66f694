package main

import (
	"log"

	"amani-schools/app/config"
	"amani-schools/app/database"
)

// Runs the schema migrations without starting the server. Useful for
// deploy pipelines where the app boots after the schema is in place.
func main() {
	log.Println("Running database migrations...")

	config.InitDB()
	db := config.GetDB()
	if db == nil {
		log.Fatal("Failed to get database instance")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("Migrations completed successfully")
}
