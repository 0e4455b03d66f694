package results

import (
	"database/sql"
	"errors"
	"fmt"

	"amani-schools/app/database"
	"amani-schools/app/models"
)

// ErrNoLockedMarks flags a student with no locked marks in the scope.
// The student is excluded from ranking but the batch keeps going.
var ErrNoLockedMarks = errors.New("student has no locked marks in scope")

// ComputeSummary reports a cohort computation run.
type ComputeSummary struct {
	StudentsRanked     int      `json:"students_ranked"`
	StudentsIncomplete int      `json:"students_incomplete"`
	Failures           []string `json:"failures,omitempty"`
}

// cohortScores loads every locked mark in the scope grouped by
// student and subject. Unlocked and deleted marks never feed results.
func cohortScores(db *sql.DB, yearID string, grade, semester int) (map[string]map[string][]SubjectComponent, error) {
	query := `SELECT m.student_id, a.subject_id, m.marks_obtained, a.max_marks, a.weight
			  FROM marks m
			  JOIN assessments a ON a.id = m.assessment_id
			  WHERE m.academic_year_id = $1 AND m.grade = $2 AND m.semester = $3
			  AND m.is_locked = true
			  AND m.deleted_at IS NULL AND a.deleted_at IS NULL`

	rows, err := db.Query(query, yearID, grade, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[string]map[string][]SubjectComponent)
	for rows.Next() {
		var studentID, subjectID string
		var c SubjectComponent
		if err := rows.Scan(&studentID, &subjectID, &c.Obtained, &c.MaxMarks, &c.Weight); err != nil {
			return nil, err
		}
		if scores[studentID] == nil {
			scores[studentID] = make(map[string][]SubjectComponent)
		}
		scores[studentID][subjectID] = append(scores[studentID][subjectID], c)
	}
	return scores, rows.Err()
}

func getGradeBoundaries(db *sql.DB) ([]*models.Grade, error) {
	query := `SELECT id, name, min_marks, max_marks, grade_value
			  FROM grades
			  WHERE is_active = true AND deleted_at IS NULL
			  ORDER BY min_marks DESC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boundaries []*models.Grade
	for rows.Next() {
		g := &models.Grade{}
		if err := rows.Scan(&g.ID, &g.Name, &g.MinMarks, &g.MaxMarks, &g.GradeValue); err != nil {
			return nil, err
		}
		boundaries = append(boundaries, g)
	}
	return boundaries, nil
}

// ComputeSemesterResults derives averages and ranks for a cohort and
// upserts semester_results. Recomputing over the same locked marks
// yields the same rows. Students with no locked marks get an
// is_incomplete row and stay out of the ranking.
func ComputeSemesterResults(db *sql.DB, yearID string, grade, semester int) (*ComputeSummary, error) {
	students, err := database.GetActiveStudentsByGrade(db, grade)
	if err != nil {
		return nil, err
	}

	scores, err := cohortScores(db, yearID, grade, semester)
	if err != nil {
		return nil, err
	}

	boundaries, err := getGradeBoundaries(db)
	if err != nil {
		return nil, err
	}

	summary := &ComputeSummary{}
	var cohort []RankedStudent
	var incomplete []string

	for _, student := range students {
		subjects, ok := scores[student.ID]
		if !ok || len(subjects) == 0 {
			incomplete = append(incomplete, student.ID)
			summary.StudentsIncomplete++
			summary.Failures = append(summary.Failures,
				fmt.Sprintf("student %s: %v", student.StudentID, ErrNoLockedMarks))
			continue
		}

		subjectScores := make([]float64, 0, len(subjects))
		for _, components := range subjects {
			subjectScores = append(subjectScores, SubjectScore(components))
		}
		average := SemesterAverage(subjectScores)
		cohort = append(cohort, RankedStudent{StudentID: student.ID, Score: average})
	}

	ranked := AssignCompetitionRanks(cohort)

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	upsert, err := tx.Prepare(`INSERT INTO semester_results
		(student_id, academic_year_id, grade, semester, average, rank, is_incomplete, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (student_id, academic_year_id, semester)
		DO UPDATE SET grade = $3, average = $5, rank = $6, is_incomplete = $7, remarks = $8, updated_at = NOW()`)
	if err != nil {
		return nil, err
	}
	defer upsert.Close()

	for _, r := range ranked {
		remark := LetterFor(boundaries, r.Score)
		if _, err := upsert.Exec(r.StudentID, yearID, grade, semester, r.Score, r.Rank, false, nullable(remark)); err != nil {
			return nil, err
		}
		summary.StudentsRanked++
	}

	for _, studentID := range incomplete {
		if _, err := upsert.Exec(studentID, yearID, grade, semester, 0.0, nil, true, nil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

// ComputeFinalResults combines a student's semester averages into the
// year-end result with promotion decision and final rank.
func ComputeFinalResults(db *sql.DB, yearID string, grade int) (*ComputeSummary, error) {
	query := `SELECT student_id, average
			  FROM semester_results
			  WHERE academic_year_id = $1 AND grade = $2 AND is_incomplete = false
			  ORDER BY student_id, semester`

	rows, err := db.Query(query, yearID, grade)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	averages := make(map[string][]float64)
	for rows.Next() {
		var studentID string
		var average float64
		if err := rows.Scan(&studentID, &average); err != nil {
			return nil, err
		}
		averages[studentID] = append(averages[studentID], average)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	boundaries, err := getGradeBoundaries(db)
	if err != nil {
		return nil, err
	}

	var cohort []RankedStudent
	for studentID, semesterAverages := range averages {
		cohort = append(cohort, RankedStudent{
			StudentID: studentID,
			Score:     SemesterAverage(semesterAverages),
		})
	}
	ranked := AssignCompetitionRanks(cohort)

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	upsert, err := tx.Prepare(`INSERT INTO final_results
		(student_id, academic_year_id, grade, combined_average, final_rank, promotion_status, remarks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (student_id, academic_year_id)
		DO UPDATE SET grade = $3, combined_average = $4, final_rank = $5, promotion_status = $6,
					  remarks = $7, updated_at = NOW()`)
	if err != nil {
		return nil, err
	}
	defer upsert.Close()

	summary := &ComputeSummary{}
	for _, r := range ranked {
		promotion := PromotionFor(r.Score)
		remark := LetterFor(boundaries, r.Score)
		if _, err := upsert.Exec(r.StudentID, yearID, grade, r.Score, r.Rank, promotion, nullable(remark)); err != nil {
			return nil, err
		}
		summary.StudentsRanked++
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// GetSemesterResultsByStudent returns a student's semester rows for a
// year, optionally narrowed to one semester (0 means all).
func GetSemesterResultsByStudent(db *sql.DB, studentID, yearID string, semester int) ([]*models.SemesterResult, error) {
	query := `SELECT id, student_id, academic_year_id, grade, semester, average, rank, is_incomplete, remarks, created_at, updated_at
			  FROM semester_results
			  WHERE student_id = $1 AND academic_year_id = $2
			  AND ($3 = 0 OR semester = $3)
			  ORDER BY semester`

	rows, err := db.Query(query, studentID, yearID, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.SemesterResult
	for rows.Next() {
		r := &models.SemesterResult{}
		err := rows.Scan(
			&r.ID, &r.StudentID, &r.AcademicYearID, &r.Grade, &r.Semester,
			&r.Average, &r.Rank, &r.IsIncomplete, &r.Remarks, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// GetFinalResultByStudent returns a student's year-end row, or nil
// when none has been computed yet.
func GetFinalResultByStudent(db *sql.DB, studentID, yearID string) (*models.FinalResult, error) {
	r := &models.FinalResult{}
	query := `SELECT id, student_id, academic_year_id, grade, combined_average, final_rank, promotion_status, remarks, created_at, updated_at
			  FROM final_results
			  WHERE student_id = $1 AND academic_year_id = $2`

	err := db.QueryRow(query, studentID, yearID).Scan(
		&r.ID, &r.StudentID, &r.AcademicYearID, &r.Grade, &r.CombinedAverage,
		&r.FinalRank, &r.PromotionStatus, &r.Remarks, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
