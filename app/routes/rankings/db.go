package rankings

import (
	"database/sql"

	"amani-schools/app/models"
	"amani-schools/app/routes/results"
)

// Scope identifies one leaderboard: a grade cohort within a year and
// semester, overall or per subject. A nil semester means year scope.
type Scope struct {
	AcademicYearID string
	Semester       *int
	Grade          int
	SubjectID      *string
}

// previousPublishedRanks returns each student's rank in the most
// recently published ranking for the scope.
func previousPublishedRanks(tx *sql.Tx, scope Scope) (map[string]int, error) {
	query := `SELECT DISTINCT ON (student_id) student_id, rank_position
			  FROM rankings
			  WHERE academic_year_id = $1 AND grade = $2
			  AND semester IS NOT DISTINCT FROM $3
			  AND subject_id IS NOT DISTINCT FROM $4
			  AND published_at IS NOT NULL
			  ORDER BY student_id, published_at DESC`

	rows, err := tx.Query(query, scope.AcademicYearID, scope.Grade, scope.Semester, scope.SubjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prev := make(map[string]int)
	for rows.Next() {
		var studentID string
		var rank int
		if err := rows.Scan(&studentID, &rank); err != nil {
			return nil, err
		}
		prev[studentID] = rank
	}
	return prev, rows.Err()
}

// scopeCohort produces the ranked cohort for a scope. Overall
// rankings read computed semester results; subject rankings score the
// subject's locked marks directly.
func scopeCohort(db *sql.DB, scope Scope) ([]results.RankedStudent, error) {
	if scope.SubjectID == nil {
		var query string
		var args []interface{}
		if scope.Semester != nil {
			query = `SELECT student_id, average FROM semester_results
					 WHERE academic_year_id = $1 AND grade = $2 AND semester = $3 AND is_incomplete = false`
			args = []interface{}{scope.AcademicYearID, scope.Grade, *scope.Semester}
		} else {
			query = `SELECT student_id, combined_average FROM final_results
					 WHERE academic_year_id = $1 AND grade = $2`
			args = []interface{}{scope.AcademicYearID, scope.Grade}
		}

		rows, err := db.Query(query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var cohort []results.RankedStudent
		for rows.Next() {
			var r results.RankedStudent
			if err := rows.Scan(&r.StudentID, &r.Score); err != nil {
				return nil, err
			}
			cohort = append(cohort, r)
		}
		return results.AssignCompetitionRanks(cohort), rows.Err()
	}

	// Year-scope subject rankings (nil semester) cover both semesters.
	query := `SELECT m.student_id, m.marks_obtained, a.max_marks, a.weight
			  FROM marks m
			  JOIN assessments a ON a.id = m.assessment_id
			  WHERE m.academic_year_id = $1 AND m.grade = $2
			  AND ($3 = 0 OR m.semester = $3)
			  AND a.subject_id = $4
			  AND m.is_locked = true
			  AND m.deleted_at IS NULL AND a.deleted_at IS NULL`

	semester := 0
	if scope.Semester != nil {
		semester = *scope.Semester
	}
	rows, err := db.Query(query, scope.AcademicYearID, scope.Grade, semester, *scope.SubjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	components := make(map[string][]results.SubjectComponent)
	for rows.Next() {
		var studentID string
		var c results.SubjectComponent
		if err := rows.Scan(&studentID, &c.Obtained, &c.MaxMarks, &c.Weight); err != nil {
			return nil, err
		}
		components[studentID] = append(components[studentID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var cohort []results.RankedStudent
	for studentID, cs := range components {
		cohort = append(cohort, results.RankedStudent{
			StudentID: studentID,
			Score:     results.SubjectScore(cs),
		})
	}
	return results.AssignCompetitionRanks(cohort), nil
}

// BuildRankings packages the aggregator's output into unpublished
// ranking rows for a scope, replacing any previous unpublished build.
// Trend compares against the latest published ranking only.
func BuildRankings(db *sql.DB, scope Scope) (int, error) {
	cohort, err := scopeCohort(db, scope)
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	prev, err := previousPublishedRanks(tx, scope)
	if err != nil {
		return 0, err
	}

	// Rebuild replaces the scope's draft, never its published history.
	clearQuery := `DELETE FROM rankings
				   WHERE academic_year_id = $1 AND grade = $2
				   AND semester IS NOT DISTINCT FROM $3
				   AND subject_id IS NOT DISTINCT FROM $4
				   AND published_at IS NULL`
	if _, err := tx.Exec(clearQuery, scope.AcademicYearID, scope.Grade, scope.Semester, scope.SubjectID); err != nil {
		return 0, err
	}

	insert, err := tx.Prepare(`INSERT INTO rankings
		(student_id, academic_year_id, semester, grade, subject_id, rank_position, average_score, trend)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return 0, err
	}
	defer insert.Close()

	for _, r := range cohort {
		var prevRank *int
		if p, ok := prev[r.StudentID]; ok {
			prevRank = &p
		}
		trend := TrendFor(r.Rank, prevRank)

		if _, err := insert.Exec(
			r.StudentID, scope.AcademicYearID, scope.Semester, scope.Grade, scope.SubjectID,
			r.Rank, r.Score, trend,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(cohort), nil
}

// PublishRankings stamps the scope's unpublished rows. This is the
// only code path that sets published_at. A scope with nothing built
// publishes zero rows, which is not an error.
func PublishRankings(db *sql.DB, scope Scope) (int64, error) {
	query := `UPDATE rankings SET published_at = NOW()
			  WHERE academic_year_id = $1 AND grade = $2
			  AND semester IS NOT DISTINCT FROM $3
			  AND subject_id IS NOT DISTINCT FROM $4
			  AND published_at IS NULL`

	res, err := db.Exec(query, scope.AcademicYearID, scope.Grade, scope.Semester, scope.SubjectID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetRankings lists a scope's entries with student names, newest
// build first within rank order. publishedOnly gates the student and
// parent surface and pins the read to the scope's most recently
// published generation, so republishing never duplicates students on
// the leaderboard.
func GetRankings(db *sql.DB, scope Scope, limit int, publishedOnly bool) ([]*models.Ranking, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `SELECT r.id, r.student_id, r.academic_year_id, r.semester, r.grade, r.subject_id,
					 r.rank_position, r.average_score, r.trend, r.published_at, r.created_at,
					 s.student_id, s.first_name, s.last_name
			  FROM rankings r
			  JOIN students s ON s.id = r.student_id
			  WHERE r.academic_year_id = $1 AND r.grade = $2
			  AND r.semester IS NOT DISTINCT FROM $3
			  AND r.subject_id IS NOT DISTINCT FROM $4
			  AND ($5 = false OR r.published_at = (
					SELECT MAX(published_at) FROM rankings
					WHERE academic_year_id = $1 AND grade = $2
					AND semester IS NOT DISTINCT FROM $3
					AND subject_id IS NOT DISTINCT FROM $4))
			  ORDER BY r.published_at DESC NULLS FIRST, r.rank_position
			  LIMIT $6`

	rows, err := db.Query(query, scope.AcademicYearID, scope.Grade, scope.Semester, scope.SubjectID, publishedOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Ranking
	for rows.Next() {
		r := &models.Ranking{Student: &models.Student{}}
		err := rows.Scan(
			&r.ID, &r.StudentID, &r.AcademicYearID, &r.Semester, &r.Grade, &r.SubjectID,
			&r.RankPosition, &r.AverageScore, &r.Trend, &r.PublishedAt, &r.CreatedAt,
			&r.Student.StudentID, &r.Student.FirstName, &r.Student.LastName,
		)
		if err != nil {
			return nil, err
		}
		r.Student.ID = r.StudentID
		result = append(result, r)
	}
	return result, nil
}
