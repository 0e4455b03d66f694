package periods

import (
	"database/sql"
	"time"
)

// LockSummary reports how many rows a lock cascade touched.
type LockSummary struct {
	AssessmentsLocked int64 `json:"assessments_locked"`
	MarksLocked       int64 `json:"marks_locked"`
}

// lockScope freezes every assessment and mark in a (year, grade,
// semester) scope. Runs inside the close transaction so the status
// flip and the cascade commit or roll back together.
func lockScope(tx *sql.Tx, yearID string, grade *int, semester int, lockedAt time.Time) (*LockSummary, error) {
	assessmentQuery := `UPDATE assessments
						SET is_editable = false, locked_at = $1, updated_at = NOW()
						WHERE academic_year_id = $2 AND semester = $3
						AND ($4::int IS NULL OR grade = $4)
						AND deleted_at IS NULL`

	res, err := tx.Exec(assessmentQuery, lockedAt, yearID, semester, grade)
	if err != nil {
		return nil, err
	}
	assessments, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	markQuery := `UPDATE marks
				  SET is_locked = true, locked_at = $1, updated_at = NOW()
				  WHERE academic_year_id = $2 AND semester = $3
				  AND ($4::int IS NULL OR grade = $4)
				  AND deleted_at IS NULL`

	res, err = tx.Exec(markQuery, lockedAt, yearID, semester, grade)
	if err != nil {
		return nil, err
	}
	marks, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	return &LockSummary{AssessmentsLocked: assessments, MarksLocked: marks}, nil
}

// unlockScope reverses a lock cascade for a privileged unlock.
func unlockScope(tx *sql.Tx, yearID string, grade *int, semester int) (*LockSummary, error) {
	assessmentQuery := `UPDATE assessments
						SET is_editable = true, locked_at = NULL, updated_at = NOW()
						WHERE academic_year_id = $1 AND semester = $2
						AND ($3::int IS NULL OR grade = $3)
						AND deleted_at IS NULL`

	res, err := tx.Exec(assessmentQuery, yearID, semester, grade)
	if err != nil {
		return nil, err
	}
	assessments, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	markQuery := `UPDATE marks
				  SET is_locked = false, locked_at = NULL, updated_at = NOW()
				  WHERE academic_year_id = $1 AND semester = $2
				  AND ($3::int IS NULL OR grade = $3)
				  AND deleted_at IS NULL`

	res, err = tx.Exec(markQuery, yearID, semester, grade)
	if err != nil {
		return nil, err
	}
	marks, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	return &LockSummary{AssessmentsLocked: assessments, MarksLocked: marks}, nil
}
