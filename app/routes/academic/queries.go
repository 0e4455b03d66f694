package academic

import (
	"database/sql"

	"amani-schools/app/models"
)

// Data Access Functions

func getAcademicYearsWithSemesters(db *sql.DB) ([]*models.AcademicYear, error) {
	query := `SELECT id, name, start_date, end_date, is_current, is_active, created_at, updated_at
			  FROM academic_years
			  WHERE deleted_at IS NULL
			  ORDER BY start_date DESC`

	rows, err := db.Query(query)
	if err != nil {
		return []*models.AcademicYear{}, nil
	}
	defer rows.Close()

	var years []*models.AcademicYear
	for rows.Next() {
		year := &models.AcademicYear{}
		err := rows.Scan(&year.ID, &year.Name, &year.StartDate.Time, &year.EndDate.Time,
			&year.IsCurrent, &year.IsActive, &year.CreatedAt, &year.UpdatedAt)
		if err != nil {
			continue
		}

		semesters, _ := getSemesterPeriodsByYearID(db, year.ID)
		if semesters == nil {
			semesters = []*models.SemesterPeriod{}
		}
		year.Semesters = semesters

		years = append(years, year)
	}
	if years == nil {
		years = []*models.AcademicYear{}
	}
	return years, nil
}

func getSemesterPeriodsByYearID(db *sql.DB, yearID string) ([]*models.SemesterPeriod, error) {
	query := `SELECT id, academic_year_id, semester, status, opened_at, opened_by, closed_at, closed_by, created_at, updated_at
			  FROM semester_periods WHERE academic_year_id = $1 ORDER BY semester`

	rows, err := db.Query(query, yearID)
	if err != nil {
		return []*models.SemesterPeriod{}, err
	}
	defer rows.Close()

	var periods []*models.SemesterPeriod
	for rows.Next() {
		p := &models.SemesterPeriod{}
		err := rows.Scan(&p.ID, &p.AcademicYearID, &p.Semester, &p.Status,
			&p.OpenedAt, &p.OpenedBy, &p.ClosedAt, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			continue
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// createAcademicYear inserts a year. The current flag is never taken
// from the payload: when makeCurrent is set the clear-then-set runs in
// the same transaction, so the exactly-one-current invariant holds
// whether or not the commit succeeds.
func createAcademicYear(db *sql.DB, year *models.AcademicYear, makeCurrent bool) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if year.IsActive {
		deactivateQuery := `UPDATE academic_years SET is_active = false`
		_, err = tx.Exec(deactivateQuery)
		if err != nil {
			return err
		}
	}

	insertQuery := `INSERT INTO academic_years (name, start_date, end_date, is_current, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, false, $4, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	err = tx.QueryRow(insertQuery, year.Name, year.StartDate.Time, year.EndDate.Time,
		year.IsActive).Scan(&year.ID, &year.CreatedAt, &year.UpdatedAt)
	if err != nil {
		return err
	}

	if makeCurrent {
		if err := setCurrentTx(tx, year.ID); err != nil {
			return err
		}
	}
	year.IsCurrent = makeCurrent

	return tx.Commit()
}

// updateAcademicYear rewrites a year's fields except the current flag.
// Asking to make the year current routes through the clear-then-set in
// the same transaction; not asking leaves the flag alone, so an update
// can never strand the registry with zero current years.
func updateAcademicYear(db *sql.DB, year *models.AcademicYear, makeCurrent bool) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if year.IsActive {
		deactivateQuery := `UPDATE academic_years SET is_active = false WHERE id != $1`
		_, err = tx.Exec(deactivateQuery, year.ID)
		if err != nil {
			return err
		}
	}

	updateQuery := `UPDATE academic_years
			  SET name = $1, start_date = $2, end_date = $3, is_active = $4, updated_at = NOW()
			  WHERE id = $5 AND deleted_at IS NULL`

	_, err = tx.Exec(updateQuery, year.Name, year.StartDate.Time, year.EndDate.Time,
		year.IsActive, year.ID)
	if err != nil {
		return err
	}

	if makeCurrent {
		if err := setCurrentTx(tx, year.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func deleteAcademicYear(db *sql.DB, id string) error {
	query := `UPDATE academic_years SET deleted_at = NOW() WHERE id = $1`
	_, err := db.Exec(query, id)
	return err
}

// setCurrentTx clears every current flag then sets one inside the
// caller's transaction. Every code path that changes the flag goes
// through here, so exactly one year is current at any time.
func setCurrentTx(tx *sql.Tx, yearID string) error {
	deactivateQuery := `UPDATE academic_years SET is_current = false WHERE is_current = true`
	if _, err := tx.Exec(deactivateQuery); err != nil {
		return err
	}

	setCurrentQuery := `UPDATE academic_years SET is_current = true, updated_at = NOW() WHERE id = $1`
	_, err := tx.Exec(setCurrentQuery, yearID)
	return err
}

func setCurrentAcademicYear(db *sql.DB, yearID string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := setCurrentTx(tx, yearID); err != nil {
		return err
	}

	return tx.Commit()
}

// AutoSetCurrentAcademicYear flags the year whose date range contains
// today. Overlapping ranges clamp to the latest start date so at most
// one year is ever current; an empty subselect clears every flag.
// Semester open/closed state is untouched; only period operations
// change it.
func AutoSetCurrentAcademicYear(db *sql.DB) error {
	query := `UPDATE academic_years
			  SET is_current = (id IN (
				  SELECT id FROM academic_years
				  WHERE deleted_at IS NULL
				  AND start_date <= CURRENT_DATE AND end_date >= CURRENT_DATE
				  ORDER BY start_date DESC
				  LIMIT 1))
			  WHERE deleted_at IS NULL`
	_, err := db.Exec(query)
	return err
}
