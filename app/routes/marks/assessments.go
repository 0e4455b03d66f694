package marks

import (
	"database/sql"

	"amani-schools/app/database"
	"amani-schools/app/models"

	"github.com/gofiber/fiber/v2"
)

// CreateAssessment inserts an assessment for a (year, grade, semester)
// scope. Weight is the component's percentage of the subject score.
func CreateAssessment(db *sql.DB, a *models.Assessment) error {
	query := `INSERT INTO assessments
			  (subject_id, teacher_id, academic_year_id, grade, semester, name, type, max_marks, weight)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id, is_editable, created_at, updated_at`

	return db.QueryRow(query,
		a.SubjectID, a.TeacherID, a.AcademicYearID, a.Grade, a.Semester,
		a.Name, a.Type, a.MaxMarks, a.Weight,
	).Scan(&a.ID, &a.IsEditable, &a.CreatedAt, &a.UpdatedAt)
}

// UpdateAssessment rewrites an assessment's definition. Locked
// assessments reject the write.
func UpdateAssessment(db *sql.DB, a *models.Assessment) error {
	var isEditable bool
	err := db.QueryRow(`SELECT is_editable FROM assessments WHERE id = $1 AND deleted_at IS NULL`, a.ID).Scan(&isEditable)
	if err == sql.ErrNoRows {
		return ErrMarkNotFound
	}
	if err != nil {
		return err
	}
	if !isEditable {
		return ErrAssessmentLocked
	}

	query := `UPDATE assessments
			  SET name = $1, type = $2, max_marks = $3, weight = $4, teacher_id = $5, updated_at = NOW()
			  WHERE id = $6 AND deleted_at IS NULL`
	_, err = db.Exec(query, a.Name, a.Type, a.MaxMarks, a.Weight, a.TeacherID, a.ID)
	return err
}

// DeleteAssessment soft-deletes an assessment that has no marks yet.
func DeleteAssessment(db *sql.DB, assessmentID string) error {
	var markCount int
	err := db.QueryRow(`SELECT COUNT(*) FROM marks WHERE assessment_id = $1 AND deleted_at IS NULL`, assessmentID).Scan(&markCount)
	if err != nil {
		return err
	}
	if markCount > 0 {
		return ErrAssessmentHasMarks
	}

	_, err = db.Exec(`UPDATE assessments SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, assessmentID)
	return err
}

// GetAssessmentsByScope lists the assessments for a scope with their
// subject names.
func GetAssessmentsByScope(db *sql.DB, yearID string, grade, semester int) ([]*models.Assessment, error) {
	query := `SELECT a.id, a.subject_id, a.teacher_id, a.academic_year_id, a.grade, a.semester,
					 a.name, a.type, a.max_marks, a.weight, a.is_editable, a.locked_at,
					 a.created_at, a.updated_at,
					 s.name, s.code
			  FROM assessments a
			  JOIN subjects s ON s.id = a.subject_id
			  WHERE a.academic_year_id = $1 AND a.grade = $2 AND a.semester = $3
			  AND a.deleted_at IS NULL
			  ORDER BY s.name, a.name`

	rows, err := db.Query(query, yearID, grade, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []*models.Assessment
	for rows.Next() {
		a := &models.Assessment{Subject: &models.Subject{}}
		err := rows.Scan(
			&a.ID, &a.SubjectID, &a.TeacherID, &a.AcademicYearID, &a.Grade, &a.Semester,
			&a.Name, &a.Type, &a.MaxMarks, &a.Weight, &a.IsEditable, &a.LockedAt,
			&a.CreatedAt, &a.UpdatedAt,
			&a.Subject.Name, &a.Subject.Code,
		)
		if err != nil {
			return nil, err
		}
		a.Subject.ID = a.SubjectID
		assessments = append(assessments, a)
	}
	return assessments, nil
}

// CreateAssessmentHandler defines a new graded component
func CreateAssessmentHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var assessment models.Assessment
		if err := c.BodyParser(&assessment); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		if assessment.Type == "" {
			assessment.Type = string(models.AssessmentExam)
		}
		if err := validate.StructExcept(&assessment, "ID"); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		if _, err := database.GetSubjectByID(db, assessment.SubjectID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown subject"})
		}

		if err := CreateAssessment(db, &assessment); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create assessment: " + err.Error()})
		}

		return c.Status(fiber.StatusCreated).JSON(assessment)
	}
}

// UpdateAssessmentHandler rewrites an assessment definition
func UpdateAssessmentHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var assessment models.Assessment
		if err := c.BodyParser(&assessment); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
		}
		assessment.ID = c.Params("id")

		if err := UpdateAssessment(db, &assessment); err != nil {
			switch err {
			case ErrMarkNotFound:
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
			case ErrAssessmentLocked:
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update assessment"})
		}

		return c.JSON(assessment)
	}
}

// DeleteAssessmentHandler removes an assessment without marks
func DeleteAssessmentHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := DeleteAssessment(db, c.Params("id")); err != nil {
			if err == ErrAssessmentHasMarks {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete assessment"})
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetSubjectsHandler lists the subjects assessments can be created for
func GetSubjectsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjects, err := database.GetAllSubjects(db)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load subjects"})
		}
		if subjects == nil {
			subjects = []*models.Subject{}
		}
		return c.JSON(subjects)
	}
}

// GetAssessmentsHandler lists assessments for a scope
func GetAssessmentsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		yearID := c.Query("academic_year_id")
		grade := c.QueryInt("grade", 0)
		semester := c.QueryInt("semester", 0)
		if yearID == "" || grade == 0 || semester == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "academic_year_id, grade and semester are required"})
		}

		assessments, err := GetAssessmentsByScope(db, yearID, grade, semester)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load assessments"})
		}
		if assessments == nil {
			assessments = []*models.Assessment{}
		}
		return c.JSON(assessments)
	}
}
