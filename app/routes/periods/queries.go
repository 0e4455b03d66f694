package periods

import (
	"database/sql"
	"fmt"
	"time"

	"amani-schools/app/models"
)

// getYearStatus reads the year-wide status row inside a transaction,
// locking it so concurrent open/close calls serialise on it.
func getYearStatusForUpdate(tx *sql.Tx, yearID string, semester int) (*models.PeriodStatus, error) {
	var status models.PeriodStatus
	query := `SELECT status FROM semester_periods
			  WHERE academic_year_id = $1 AND semester = $2
			  FOR UPDATE`

	err := tx.QueryRow(query, yearID, semester).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func getGradeStatusForUpdate(tx *sql.Tx, yearID string, grade, semester int) (*models.PeriodStatus, error) {
	var status models.PeriodStatus
	query := `SELECT status FROM semester_statuses
			  WHERE academic_year_id = $1 AND grade = $2 AND semester = $3
			  FOR UPDATE`

	err := tx.QueryRow(query, yearID, grade, semester).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// effectiveStatusForUpdate resolves the status a scope currently has,
// taking row locks on whatever records exist for it.
func effectiveStatusForUpdate(tx *sql.Tx, yearID string, grade *int, semester int) (models.PeriodStatus, error) {
	yearStatus, err := getYearStatusForUpdate(tx, yearID, semester)
	if err != nil {
		return "", err
	}

	var gradeStatus *models.PeriodStatus
	if grade != nil {
		gradeStatus, err = getGradeStatusForUpdate(tx, yearID, *grade, semester)
		if err != nil {
			return "", err
		}
	}

	return ResolveStatus(yearStatus, gradeStatus), nil
}

// hasOpenGradeOverride reports whether any grade still holds an open
// override row for the semester, locking the row it finds.
func hasOpenGradeOverride(tx *sql.Tx, yearID string, semester int) (bool, error) {
	var id string
	query := `SELECT id FROM semester_statuses
			  WHERE academic_year_id = $1 AND semester = $2 AND status = 'open'
			  LIMIT 1
			  FOR UPDATE`

	err := tx.QueryRow(query, yearID, semester).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// OpenSemester opens a semester for the whole year or a single grade.
// Semester 2 may only open after semester 1 closed for the same scope;
// a year-wide open additionally requires semester 1 closed for every
// grade, since a grade-level override can hold it open while the year
// row reads closed.
func OpenSemester(db *sql.DB, yearID string, grade *int, semester int, actorID string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := effectiveStatusForUpdate(tx, yearID, grade, semester)
	if err != nil {
		return err
	}

	previous := models.PeriodClosed
	openOverride := false
	if semester == 2 {
		previous, err = effectiveStatusForUpdate(tx, yearID, grade, 1)
		if err != nil {
			return err
		}
		if grade == nil {
			openOverride, err = hasOpenGradeOverride(tx, yearID, 1)
			if err != nil {
				return err
			}
		}
	}

	if grade == nil {
		err = CanOpenYearWide(semester, current, previous, openOverride)
	} else {
		err = CanOpen(semester, current, previous)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	if grade == nil {
		query := `INSERT INTO semester_periods (academic_year_id, semester, status, opened_at, opened_by)
				  VALUES ($1, $2, 'open', $3, $4)
				  ON CONFLICT (academic_year_id, semester)
				  DO UPDATE SET status = 'open', opened_at = $3, opened_by = $4,
								closed_at = NULL, closed_by = NULL, updated_at = NOW()`
		if _, err := tx.Exec(query, yearID, semester, now, actorID); err != nil {
			return err
		}

		// A year-wide open supersedes stale grade overrides.
		clearQuery := `DELETE FROM semester_statuses
					   WHERE academic_year_id = $1 AND semester = $2`
		if _, err := tx.Exec(clearQuery, yearID, semester); err != nil {
			return err
		}
	} else {
		query := `INSERT INTO semester_statuses (academic_year_id, grade, semester, status, declared)
				  VALUES ($1, $2, $3, 'open', true)
				  ON CONFLICT (academic_year_id, grade, semester)
				  DO UPDATE SET status = 'open', declared = true, updated_at = NOW()`
		if _, err := tx.Exec(query, yearID, *grade, semester); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CloseSemester closes a semester and locks every assessment and mark
// in its scope in the same transaction. A concurrent close loses the
// row lock race and observes ErrAlreadyClosed.
func CloseSemester(db *sql.DB, yearID string, grade *int, semester int, actorID string) (*LockSummary, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := effectiveStatusForUpdate(tx, yearID, grade, semester)
	if err != nil {
		return nil, err
	}
	if err := CanClose(semester, current); err != nil {
		return nil, err
	}

	now := time.Now()
	if grade == nil {
		query := `INSERT INTO semester_periods (academic_year_id, semester, status, closed_at, closed_by)
				  VALUES ($1, $2, 'closed', $3, $4)
				  ON CONFLICT (academic_year_id, semester)
				  DO UPDATE SET status = 'closed', closed_at = $3, closed_by = $4, updated_at = NOW()`
		if _, err := tx.Exec(query, yearID, semester, now, actorID); err != nil {
			return nil, err
		}

		clearQuery := `UPDATE semester_statuses SET status = 'closed', updated_at = NOW()
					   WHERE academic_year_id = $1 AND semester = $2`
		if _, err := tx.Exec(clearQuery, yearID, semester); err != nil {
			return nil, err
		}
	} else {
		query := `INSERT INTO semester_statuses (academic_year_id, grade, semester, status, declared)
				  VALUES ($1, $2, $3, 'closed', true)
				  ON CONFLICT (academic_year_id, grade, semester)
				  DO UPDATE SET status = 'closed', declared = true, updated_at = NOW()`
		if _, err := tx.Exec(query, yearID, *grade, semester); err != nil {
			return nil, err
		}
	}

	summary, err := lockScope(tx, yearID, grade, semester, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOperationAborted, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

// UnlockSemester reopens a closed semester, unlocks its assessments
// and marks, and records who did it and why.
func UnlockSemester(db *sql.DB, yearID string, grade *int, semester int, actorID, reason string) (*LockSummary, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := effectiveStatusForUpdate(tx, yearID, grade, semester)
	if err != nil {
		return nil, err
	}
	if current == models.PeriodOpen {
		return nil, ErrAlreadyOpen
	}

	now := time.Now()
	if grade == nil {
		query := `INSERT INTO semester_periods (academic_year_id, semester, status, opened_at, opened_by)
				  VALUES ($1, $2, 'open', $3, $4)
				  ON CONFLICT (academic_year_id, semester)
				  DO UPDATE SET status = 'open', opened_at = $3, opened_by = $4,
								closed_at = NULL, closed_by = NULL, updated_at = NOW()`
		if _, err := tx.Exec(query, yearID, semester, now, actorID); err != nil {
			return nil, err
		}

		clearQuery := `UPDATE semester_statuses SET status = 'open', updated_at = NOW()
					   WHERE academic_year_id = $1 AND semester = $2`
		if _, err := tx.Exec(clearQuery, yearID, semester); err != nil {
			return nil, err
		}
	} else {
		query := `INSERT INTO semester_statuses (academic_year_id, grade, semester, status, declared)
				  VALUES ($1, $2, $3, 'open', true)
				  ON CONFLICT (academic_year_id, grade, semester)
				  DO UPDATE SET status = 'open', declared = true, updated_at = NOW()`
		if _, err := tx.Exec(query, yearID, *grade, semester); err != nil {
			return nil, err
		}
	}

	summary, err := unlockScope(tx, yearID, grade, semester)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOperationAborted, err)
	}

	logQuery := `INSERT INTO unlock_logs (academic_year_id, semester, grade, actor_id, reason)
				 VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(logQuery, yearID, semester, grade, actorID, reason); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

// GetEffectiveStatus resolves the period status of a scope outside a
// transaction. Mark write paths use their own in-transaction check.
func GetEffectiveStatus(db *sql.DB, yearID string, grade, semester int) (models.PeriodStatus, error) {
	var yearStatus, gradeStatus *models.PeriodStatus

	var s models.PeriodStatus
	err := db.QueryRow(
		`SELECT status FROM semester_periods WHERE academic_year_id = $1 AND semester = $2`,
		yearID, semester,
	).Scan(&s)
	if err != nil && err != sql.ErrNoRows {
		return "", err
	}
	if err == nil {
		yearStatus = &s
	}

	var g models.PeriodStatus
	err = db.QueryRow(
		`SELECT status FROM semester_statuses WHERE academic_year_id = $1 AND grade = $2 AND semester = $3`,
		yearID, grade, semester,
	).Scan(&g)
	if err != nil && err != sql.ErrNoRows {
		return "", err
	}
	if err == nil {
		gradeStatus = &g
	}

	return ResolveStatus(yearStatus, gradeStatus), nil
}

// GetGradeSemesters resolves the open semester for every active grade.
func GetGradeSemesters(db *sql.DB, yearID string, grades []int) ([]GradeSemester, error) {
	result := make([]GradeSemester, 0, len(grades))
	for _, grade := range grades {
		open := 0
		for semester := 1; semester <= 2; semester++ {
			status, err := GetEffectiveStatus(db, yearID, grade, semester)
			if err != nil {
				return nil, err
			}
			if status == models.PeriodOpen {
				open = semester
			}
		}
		result = append(result, GradeSemester{Grade: grade, Semester: open})
	}
	return result, nil
}

// GetSemesterPeriods returns the year-wide period rows for a year.
func GetSemesterPeriods(db *sql.DB, yearID string) ([]*models.SemesterPeriod, error) {
	query := `SELECT id, academic_year_id, semester, status, opened_at, opened_by, closed_at, closed_by, created_at, updated_at
			  FROM semester_periods
			  WHERE academic_year_id = $1
			  ORDER BY semester`

	rows, err := db.Query(query, yearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []*models.SemesterPeriod
	for rows.Next() {
		p := &models.SemesterPeriod{}
		err := rows.Scan(
			&p.ID, &p.AcademicYearID, &p.Semester, &p.Status,
			&p.OpenedAt, &p.OpenedBy, &p.ClosedAt, &p.ClosedBy,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// GetUnlockLogs returns the unlock audit trail for a year.
func GetUnlockLogs(db *sql.DB, yearID string) ([]*models.UnlockLog, error) {
	query := `SELECT id, academic_year_id, semester, grade, actor_id, reason, created_at
			  FROM unlock_logs
			  WHERE academic_year_id = $1
			  ORDER BY created_at DESC`

	rows, err := db.Query(query, yearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.UnlockLog
	for rows.Next() {
		l := &models.UnlockLog{}
		err := rows.Scan(&l.ID, &l.AcademicYearID, &l.Semester, &l.Grade, &l.ActorID, &l.Reason, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}
