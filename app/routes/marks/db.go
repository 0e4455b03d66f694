package marks

import (
	"database/sql"
	"errors"
	"time"

	"amani-schools/app/models"
	"amani-schools/app/routes/periods"
)

var (
	// ErrSemesterClosed is returned when a mark write targets a scope
	// whose semester is not open.
	ErrSemesterClosed = errors.New("semester is closed for this grade")
	// ErrEditAfterLock is returned when a write targets a locked mark;
	// the value stays unchanged.
	ErrEditAfterLock = errors.New("mark is locked")
	// ErrAssessmentLocked is returned when the assessment is no longer
	// editable.
	ErrAssessmentLocked = errors.New("assessment is locked")
	// ErrExceedsMaxMarks is returned when marks_obtained is above the
	// assessment's maximum.
	ErrExceedsMaxMarks = errors.New("marks exceed assessment maximum")
	// ErrMarkNotFound is returned for a missing or deleted mark.
	ErrMarkNotFound = errors.New("mark not found")
	// ErrAssessmentHasMarks blocks deleting an assessment that
	// already has marks recorded against it.
	ErrAssessmentHasMarks = errors.New("assessment has recorded marks")
)

// assessmentScope is the slice of an assessment a mark write validates
// against.
type assessmentScope struct {
	ID             string
	SubjectID      string
	AcademicYearID string
	Grade          int
	Semester       int
	MaxMarks       float64
	IsEditable     bool
}

// getAssessmentScope loads and share-locks the assessment row so a
// concurrent lock cascade cannot slip between the check and the write.
func getAssessmentScope(tx *sql.Tx, assessmentID string) (*assessmentScope, error) {
	scope := &assessmentScope{}
	query := `SELECT id, subject_id, academic_year_id, grade, semester, max_marks, is_editable
			  FROM assessments
			  WHERE id = $1 AND deleted_at IS NULL
			  FOR SHARE`

	err := tx.QueryRow(query, assessmentID).Scan(
		&scope.ID, &scope.SubjectID, &scope.AcademicYearID,
		&scope.Grade, &scope.Semester, &scope.MaxMarks, &scope.IsEditable,
	)
	if err != nil {
		return nil, err
	}
	return scope, nil
}

// checkScopeOpen verifies inside the transaction that the semester is
// open for the mark's grade, share-locking the status rows so a close
// running concurrently serialises against this write.
func checkScopeOpen(tx *sql.Tx, yearID string, grade, semester int) error {
	var yearStatus, gradeStatus *models.PeriodStatus

	var s models.PeriodStatus
	err := tx.QueryRow(
		`SELECT status FROM semester_periods
		 WHERE academic_year_id = $1 AND semester = $2
		 FOR SHARE`,
		yearID, semester,
	).Scan(&s)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if err == nil {
		yearStatus = &s
	}

	var g models.PeriodStatus
	err = tx.QueryRow(
		`SELECT status FROM semester_statuses
		 WHERE academic_year_id = $1 AND grade = $2 AND semester = $3
		 FOR SHARE`,
		yearID, grade, semester,
	).Scan(&g)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if err == nil {
		gradeStatus = &g
	}

	if periods.ResolveStatus(yearStatus, gradeStatus) != models.PeriodOpen {
		return ErrSemesterClosed
	}
	return nil
}

// BatchEntry is one student's marks in a batch write.
type BatchEntry struct {
	StudentID     string  `json:"student_id" validate:"required,uuid"`
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
}

// BatchResult reports the outcome of a batch write.
type BatchResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

// BatchUpsertMarks creates or updates marks for one assessment in a
// single transaction, writing one audit row per mutation. The whole
// batch rolls back if the scope is closed or the assessment is locked.
func BatchUpsertMarks(db *sql.DB, assessmentID, teacherID string, entries []BatchEntry, audit AuditContext) (*BatchResult, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	scope, err := getAssessmentScope(tx, assessmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMarkNotFound
		}
		return nil, err
	}
	if !scope.IsEditable {
		return nil, ErrAssessmentLocked
	}
	if err := checkScopeOpen(tx, scope.AcademicYearID, scope.Grade, scope.Semester); err != nil {
		return nil, err
	}

	selectStmt, err := tx.Prepare(`SELECT id, marks_obtained, is_locked FROM marks
								   WHERE student_id = $1 AND assessment_id = $2 AND deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer selectStmt.Close()

	// Section is copied from the student row so per-section reports can
	// filter marks without a join.
	insertStmt, err := tx.Prepare(`INSERT INTO marks
		(student_id, subject_id, assessment_id, teacher_id, academic_year_id, grade, section, semester, marks_obtained)
		SELECT $1, $2, $3, $4, $5, $6, s.section, $7, $8
		FROM students s WHERE s.id = $1
		RETURNING id`)
	if err != nil {
		return nil, err
	}
	defer insertStmt.Close()

	updateStmt, err := tx.Prepare(`UPDATE marks SET marks_obtained = $1, teacher_id = $2, updated_at = NOW()
								   WHERE id = $3`)
	if err != nil {
		return nil, err
	}
	defer updateStmt.Close()

	result := &BatchResult{}
	for _, entry := range entries {
		if entry.MarksObtained > scope.MaxMarks {
			return nil, ErrExceedsMaxMarks
		}

		var markID string
		var oldValue float64
		var isLocked bool
		err := selectStmt.QueryRow(entry.StudentID, assessmentID).Scan(&markID, &oldValue, &isLocked)
		switch {
		case err == sql.ErrNoRows:
			err = insertStmt.QueryRow(
				entry.StudentID, scope.SubjectID, assessmentID, teacherID,
				scope.AcademicYearID, scope.Grade, scope.Semester, entry.MarksObtained,
			).Scan(&markID)
			if err != nil {
				return nil, err
			}
			if err := appendChangeLog(tx, markID, teacherID, models.MarkCreated, nil, &entry.MarksObtained, audit); err != nil {
				return nil, err
			}
			result.Created++
		case err != nil:
			return nil, err
		default:
			if isLocked {
				return nil, ErrEditAfterLock
			}
			if oldValue == entry.MarksObtained {
				continue
			}
			if _, err := updateStmt.Exec(entry.MarksObtained, teacherID, markID); err != nil {
				return nil, err
			}
			old := oldValue
			if err := appendChangeLog(tx, markID, teacherID, models.MarkUpdated, &old, &entry.MarksObtained, audit); err != nil {
				return nil, err
			}
			result.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateMark rewrites a single mark's value with the same guards as a
// batch write.
func UpdateMark(db *sql.DB, markID, actorID string, marksObtained float64, audit AuditContext) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var assessmentID string
	var oldValue float64
	var isLocked bool
	query := `SELECT assessment_id, marks_obtained, is_locked FROM marks
			  WHERE id = $1 AND deleted_at IS NULL
			  FOR UPDATE`
	err = tx.QueryRow(query, markID).Scan(&assessmentID, &oldValue, &isLocked)
	if err == sql.ErrNoRows {
		return ErrMarkNotFound
	}
	if err != nil {
		return err
	}
	if isLocked {
		return ErrEditAfterLock
	}

	scope, err := getAssessmentScope(tx, assessmentID)
	if err != nil {
		return err
	}
	if !scope.IsEditable {
		return ErrAssessmentLocked
	}
	if marksObtained > scope.MaxMarks {
		return ErrExceedsMaxMarks
	}
	if err := checkScopeOpen(tx, scope.AcademicYearID, scope.Grade, scope.Semester); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE marks SET marks_obtained = $1, updated_at = NOW() WHERE id = $2`,
		marksObtained, markID); err != nil {
		return err
	}
	if err := appendChangeLog(tx, markID, actorID, models.MarkUpdated, &oldValue, &marksObtained, audit); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteMark soft-deletes a mark and records the deletion.
func DeleteMark(db *sql.DB, markID, actorID string, audit AuditContext) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var assessmentID string
	var oldValue float64
	var isLocked bool
	query := `SELECT assessment_id, marks_obtained, is_locked FROM marks
			  WHERE id = $1 AND deleted_at IS NULL
			  FOR UPDATE`
	err = tx.QueryRow(query, markID).Scan(&assessmentID, &oldValue, &isLocked)
	if err == sql.ErrNoRows {
		return ErrMarkNotFound
	}
	if err != nil {
		return err
	}
	if isLocked {
		return ErrEditAfterLock
	}

	scope, err := getAssessmentScope(tx, assessmentID)
	if err != nil {
		return err
	}
	if err := checkScopeOpen(tx, scope.AcademicYearID, scope.Grade, scope.Semester); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE marks SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1`, markID); err != nil {
		return err
	}
	if err := appendChangeLog(tx, markID, actorID, models.MarkDeleted, &oldValue, nil, audit); err != nil {
		return err
	}

	return tx.Commit()
}

// SubmitMark flags a mark as submitted. Submission is one-way.
func SubmitMark(db *sql.DB, markID, actorID string, audit AuditContext) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var value float64
	var isSubmitted, isLocked bool
	query := `SELECT marks_obtained, is_submitted, is_locked FROM marks
			  WHERE id = $1 AND deleted_at IS NULL
			  FOR UPDATE`
	err = tx.QueryRow(query, markID).Scan(&value, &isSubmitted, &isLocked)
	if err == sql.ErrNoRows {
		return ErrMarkNotFound
	}
	if err != nil {
		return err
	}
	if isLocked {
		return ErrEditAfterLock
	}
	if isSubmitted {
		return tx.Commit()
	}

	now := time.Now()
	if _, err := tx.Exec(`UPDATE marks SET is_submitted = true, submitted_at = $1, updated_at = NOW() WHERE id = $2`,
		now, markID); err != nil {
		return err
	}
	if err := appendChangeLog(tx, markID, actorID, models.MarkSubmitted, &value, &value, audit); err != nil {
		return err
	}

	return tx.Commit()
}

// GetMarkByID loads one mark with student and assessment context.
func GetMarkByID(db *sql.DB, markID string) (*models.Mark, error) {
	mark := &models.Mark{}
	query := `SELECT m.id, m.student_id, m.subject_id, m.assessment_id, m.teacher_id,
					 m.academic_year_id, m.grade, m.section, m.semester, m.marks_obtained,
					 m.is_submitted, m.submitted_at, m.is_locked, m.locked_at,
					 m.created_at, m.updated_at
			  FROM marks m
			  WHERE m.id = $1 AND m.deleted_at IS NULL`

	err := db.QueryRow(query, markID).Scan(
		&mark.ID, &mark.StudentID, &mark.SubjectID, &mark.AssessmentID, &mark.TeacherID,
		&mark.AcademicYearID, &mark.Grade, &mark.Section, &mark.Semester, &mark.MarksObtained,
		&mark.IsSubmitted, &mark.SubmittedAt, &mark.IsLocked, &mark.LockedAt,
		&mark.CreatedAt, &mark.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMarkNotFound
	}
	if err != nil {
		return nil, err
	}
	return mark, nil
}

// GetMarksByAssessment lists the marks recorded for an assessment.
func GetMarksByAssessment(db *sql.DB, assessmentID string) ([]*models.Mark, error) {
	query := `SELECT m.id, m.student_id, m.subject_id, m.assessment_id, m.teacher_id,
					 m.academic_year_id, m.grade, m.section, m.semester, m.marks_obtained,
					 m.is_submitted, m.submitted_at, m.is_locked, m.locked_at,
					 m.created_at, m.updated_at
			  FROM marks m
			  JOIN students s ON s.id = m.student_id
			  WHERE m.assessment_id = $1 AND m.deleted_at IS NULL
			  ORDER BY s.first_name, s.last_name`

	rows, err := db.Query(query, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Mark
	for rows.Next() {
		mark := &models.Mark{}
		err := rows.Scan(
			&mark.ID, &mark.StudentID, &mark.SubjectID, &mark.AssessmentID, &mark.TeacherID,
			&mark.AcademicYearID, &mark.Grade, &mark.Section, &mark.Semester, &mark.MarksObtained,
			&mark.IsSubmitted, &mark.SubmittedAt, &mark.IsLocked, &mark.LockedAt,
			&mark.CreatedAt, &mark.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, mark)
	}
	return result, nil
}
