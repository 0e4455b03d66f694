package database

import (
	"database/sql"
	"log"
)

// RunMigrations creates missing tables and applies schema updates.
// Every statement is idempotent so the server can run it on each boot.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	if err := createCoreTables(db); err != nil {
		return err
	}
	if err := createGradingTables(db); err != nil {
		return err
	}
	if err := createResultTables(db); err != nil {
		return err
	}
	if err := addMarkSectionColumn(db); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createCoreTables(db *sql.DB) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			phone VARCHAR(20),
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(50) UNIQUE NOT NULL,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		)`,
		`INSERT INTO roles (name)
		 VALUES ('admin'), ('head_teacher'), ('class_teacher'), ('subject_teacher'), ('teacher')
		 ON CONFLICT (name) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, role_id)
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS academic_years (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(50) UNIQUE NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			is_current BOOLEAN DEFAULT false,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS students (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id VARCHAR(50) UNIQUE NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			gender VARCHAR(10),
			grade INTEGER NOT NULL,
			section VARCHAR(10),
			date_of_birth DATE,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_students_grade ON students(grade) WHERE deleted_at IS NULL`,
		`CREATE TABLE IF NOT EXISTS subjects (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) UNIQUE NOT NULL,
			code VARCHAR(20) UNIQUE NOT NULL,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS grades (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(10) UNIQUE NOT NULL,
			min_marks DECIMAL(5,2) NOT NULL,
			max_marks DECIMAL(5,2) NOT NULL,
			grade_value DECIMAL(5,2) DEFAULT 0,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		)`,
		`INSERT INTO grades (name, min_marks, max_marks, grade_value)
		 VALUES ('A', 80, 100, 5), ('B', 70, 79.99, 4), ('C', 60, 69.99, 3),
				('D', 50, 59.99, 2), ('F', 0, 49.99, 0)
		 ON CONFLICT (name) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS teacher_subjects (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			subject_id UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, subject_id)
		)`,
	}
	return execAll(db, queries, "core tables")
}

func createGradingTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS semester_periods (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			academic_year_id UUID NOT NULL REFERENCES academic_years(id),
			semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
			status VARCHAR(10) NOT NULL DEFAULT 'closed' CHECK (status IN ('open', 'closed')),
			opened_at TIMESTAMP,
			opened_by UUID REFERENCES users(id),
			closed_at TIMESTAMP,
			closed_by UUID REFERENCES users(id),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (academic_year_id, semester)
		)`,
		`CREATE TABLE IF NOT EXISTS semester_statuses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			academic_year_id UUID NOT NULL REFERENCES academic_years(id),
			grade INTEGER NOT NULL,
			semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
			status VARCHAR(10) NOT NULL DEFAULT 'closed' CHECK (status IN ('open', 'closed')),
			declared BOOLEAN DEFAULT false,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (academic_year_id, grade, semester)
		)`,
		`CREATE TABLE IF NOT EXISTS assessments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			subject_id UUID NOT NULL REFERENCES subjects(id),
			teacher_id UUID REFERENCES users(id),
			academic_year_id UUID NOT NULL REFERENCES academic_years(id),
			grade INTEGER NOT NULL,
			semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
			name VARCHAR(100) NOT NULL,
			type VARCHAR(20) NOT NULL DEFAULT 'exam',
			max_marks DECIMAL(5,2) NOT NULL CHECK (max_marks > 0),
			weight INTEGER NOT NULL CHECK (weight >= 0 AND weight <= 100),
			is_editable BOOLEAN DEFAULT true,
			locked_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_scope ON assessments(academic_year_id, grade, semester) WHERE deleted_at IS NULL`,
		`CREATE TABLE IF NOT EXISTS marks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id UUID NOT NULL REFERENCES students(id),
			subject_id UUID NOT NULL REFERENCES subjects(id),
			assessment_id UUID NOT NULL REFERENCES assessments(id),
			teacher_id UUID REFERENCES users(id),
			academic_year_id UUID NOT NULL REFERENCES academic_years(id),
			grade INTEGER NOT NULL,
			section VARCHAR(10),
			semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
			marks_obtained DECIMAL(5,2) NOT NULL CHECK (marks_obtained >= 0),
			is_submitted BOOLEAN DEFAULT false,
			submitted_at TIMESTAMP,
			is_locked BOOLEAN DEFAULT false,
			locked_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP,
			UNIQUE (student_id, assessment_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_marks_scope ON marks(academic_year_id, grade, semester) WHERE deleted_at IS NULL`,
		`CREATE TABLE IF NOT EXISTS mark_change_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			mark_id UUID NOT NULL REFERENCES marks(id),
			actor_id UUID NOT NULL REFERENCES users(id),
			action VARCHAR(20) NOT NULL,
			old_value DECIMAL(5,2),
			new_value DECIMAL(5,2),
			ip_address VARCHAR(45),
			user_agent TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mark_change_logs_mark ON mark_change_logs(mark_id)`,
		`CREATE TABLE IF NOT EXISTS unlock_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			academic_year_id UUID NOT NULL REFERENCES academic_years(id),
			semester INTEGER NOT NULL,
			grade INTEGER,
			actor_id UUID NOT NULL REFERENCES users(id),
			reason TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	return execAll(db, queries, "grading tables")
}

func createResultTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS semester_results (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id UUID NOT NULL REFERENCES students(id),
			academic_year_id UUID NOT NULL REFERENCES academic_years(id),
			grade INTEGER NOT NULL,
			semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
			average DECIMAL(5,2) NOT NULL,
			rank INTEGER,
			is_incomplete BOOLEAN DEFAULT false,
			remarks TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (student_id, academic_year_id, semester)
		)`,
		`CREATE TABLE IF NOT EXISTS final_results (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id UUID NOT NULL REFERENCES students(id),
			academic_year_id UUID NOT NULL REFERENCES academic_years(id),
			grade INTEGER NOT NULL,
			combined_average DECIMAL(5,2) NOT NULL,
			final_rank INTEGER,
			promotion_status VARCHAR(10) NOT NULL CHECK (promotion_status IN ('promoted', 'retained')),
			remarks TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (student_id, academic_year_id)
		)`,
		`CREATE TABLE IF NOT EXISTS rankings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id UUID NOT NULL REFERENCES students(id),
			academic_year_id UUID NOT NULL REFERENCES academic_years(id),
			semester INTEGER CHECK (semester IN (1, 2)),
			grade INTEGER NOT NULL,
			subject_id UUID REFERENCES subjects(id),
			rank_position INTEGER NOT NULL,
			average_score DECIMAL(5,2) NOT NULL,
			trend VARCHAR(5) NOT NULL DEFAULT 'flat' CHECK (trend IN ('up', 'down', 'flat')),
			published_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_scope ON rankings(academic_year_id, grade, semester)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_published ON rankings(published_at) WHERE published_at IS NOT NULL`,
	}
	return execAll(db, queries, "result tables")
}

// addMarkSectionColumn backfills the section column on installations
// created before sections were tracked on marks.
func addMarkSectionColumn(db *sql.DB) error {
	query := `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1
				FROM information_schema.columns
				WHERE table_name = 'marks'
				AND column_name = 'section'
			) THEN
				ALTER TABLE marks ADD COLUMN section VARCHAR(10);
				RAISE NOTICE 'Added section column to marks';
			END IF;
		END $$;
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to run migration for marks section column: %v", err)
		return err
	}
	return nil
}

func execAll(db *sql.DB, queries []string, label string) error {
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			log.Printf("Failed to run migration for %s: %v", label, err)
			return err
		}
	}
	return nil
}
