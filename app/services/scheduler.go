package services

import (
	"database/sql"
	"log"
	"time"

	"amani-schools/app/routes/academic"
)

// StartScheduler starts the background task scheduler
func StartScheduler(db *sql.DB) {
	go func() {
		log.Println("Scheduler started...")
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()

			// Trigger just after midnight (00:05)
			if now.Hour() == 0 && now.Minute() == 5 {
				log.Println("Triggering scheduled tasks [00:05]...")

				// Roll the current academic year flag forward by date.
				// Semester open/closed state is left alone; only the
				// period endpoints change it.
				if err := academic.AutoSetCurrentAcademicYear(db); err != nil {
					log.Printf("Error updating current academic year: %v", err)
				}
			}
		}
	}()
}
