package database

import (
	"database/sql"
	"time"

	"amani-schools/app/models"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// ToPostgresArray wraps a string slice for use as an ANY($n) argument.
func ToPostgresArray(values []string) interface{} {
	return pq.Array(values)
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password, first_name, last_name, is_active, created_at, updated_at
			  FROM users WHERE email = $1 AND is_active = true`

	err := db.QueryRow(query, email).Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName,
		&user.LastName, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByID(db *sql.DB, userID string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password, first_name, last_name, is_active, created_at, updated_at
			  FROM users WHERE id = $1 AND is_active = true`

	err := db.QueryRow(query, userID).Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName,
		&user.LastName, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserRoles(db *sql.DB, userID string) ([]*models.Role, error) {
	query := `
		SELECT r.id, r.name
		FROM roles r
		JOIN user_roles ur ON r.id = ur.role_id
		WHERE ur.user_id = $1
	`
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}
	return roles, nil
}

// CreateUser creates a user account and assigns the named roles.
func CreateUser(db *sql.DB, user *models.User, roleNames []string) error {
	hashedPassword, err := HashPassword(user.Password)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO users (email, password, first_name, last_name, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, true, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	err = tx.QueryRow(query, user.Email, hashedPassword, user.FirstName, user.LastName).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if len(roleNames) > 0 {
		roleQuery := `INSERT INTO user_roles (user_id, role_id)
					  SELECT $1, id FROM roles WHERE name = ANY($2)
					  ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(roleQuery, user.ID, ToPostgresArray(roleNames)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	user.IsActive = true
	return nil
}

func UpdateUserPassword(db *sql.DB, userID string, hashedPassword string) error {
	query := `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.Exec(query, hashedPassword, userID)
	return err
}

func CreateSession(db *sql.DB, sessionID string, userID string, expiresAt time.Time) error {
	query := `INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`
	_, err := db.Exec(query, sessionID, userID, expiresAt, time.Now())
	return err
}

func GetSessionByID(db *sql.DB, sessionID string) (*models.Session, error) {
	session := &models.Session{}
	query := `SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1 AND expires_at > NOW()`

	err := db.QueryRow(query, sessionID).Scan(
		&session.ID, &session.UserID, &session.ExpiresAt, &session.CreatedAt,
	)

	if err != nil {
		return nil, err
	}
	return session, nil
}

func DeleteSession(db *sql.DB, sessionID string) error {
	query := `DELETE FROM sessions WHERE id = $1`
	_, err := db.Exec(query, sessionID)
	return err
}

// GetCurrentAcademicYear returns the academic year flagged as current.
func GetCurrentAcademicYear(db *sql.DB) (*models.AcademicYear, error) {
	year := &models.AcademicYear{}
	query := `SELECT id, name, start_date, end_date, is_current, is_active, created_at, updated_at
			  FROM academic_years
			  WHERE is_current = true AND deleted_at IS NULL
			  LIMIT 1`

	err := db.QueryRow(query).Scan(
		&year.ID, &year.Name, &year.StartDate, &year.EndDate,
		&year.IsCurrent, &year.IsActive, &year.CreatedAt, &year.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return year, nil
}

func GetAcademicYearByID(db *sql.DB, yearID string) (*models.AcademicYear, error) {
	year := &models.AcademicYear{}
	query := `SELECT id, name, start_date, end_date, is_current, is_active, created_at, updated_at
			  FROM academic_years
			  WHERE id = $1 AND deleted_at IS NULL`

	err := db.QueryRow(query, yearID).Scan(
		&year.ID, &year.Name, &year.StartDate, &year.EndDate,
		&year.IsCurrent, &year.IsActive, &year.CreatedAt, &year.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return year, nil
}

func GetStudentByID(db *sql.DB, studentID string) (*models.Student, error) {
	student := &models.Student{}
	query := `SELECT id, student_id, first_name, last_name, gender, grade, section, is_active, created_at, updated_at
			  FROM students
			  WHERE id = $1 AND deleted_at IS NULL`

	err := db.QueryRow(query, studentID).Scan(
		&student.ID, &student.StudentID, &student.FirstName, &student.LastName,
		&student.Gender, &student.Grade, &student.Section, &student.IsActive,
		&student.CreatedAt, &student.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return student, nil
}

// GetActiveStudentsByGrade returns active students in a grade ordered by name.
func GetActiveStudentsByGrade(db *sql.DB, grade int) ([]*models.Student, error) {
	query := `SELECT id, student_id, first_name, last_name, gender, grade, section, is_active, created_at, updated_at
			  FROM students
			  WHERE grade = $1 AND is_active = true AND deleted_at IS NULL
			  ORDER BY first_name, last_name`

	rows, err := db.Query(query, grade)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student := &models.Student{}
		err := rows.Scan(
			&student.ID, &student.StudentID, &student.FirstName, &student.LastName,
			&student.Gender, &student.Grade, &student.Section, &student.IsActive,
			&student.CreatedAt, &student.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, nil
}

// GetActiveGrades returns the distinct grades that have active students.
func GetActiveGrades(db *sql.DB) ([]int, error) {
	query := `SELECT DISTINCT grade FROM students
			  WHERE is_active = true AND deleted_at IS NULL
			  ORDER BY grade`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []int
	for rows.Next() {
		var grade int
		if err := rows.Scan(&grade); err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	return grades, nil
}

func GetAllSubjects(db *sql.DB) ([]*models.Subject, error) {
	query := `SELECT id, name, code, is_active, created_at, updated_at
			  FROM subjects
			  WHERE deleted_at IS NULL
			  ORDER BY name`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []*models.Subject
	for rows.Next() {
		subject := &models.Subject{}
		err := rows.Scan(
			&subject.ID, &subject.Name, &subject.Code, &subject.IsActive,
			&subject.CreatedAt, &subject.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	return subjects, nil
}

func GetSubjectByID(db *sql.DB, subjectID string) (*models.Subject, error) {
	subject := &models.Subject{}
	query := `SELECT id, name, code, is_active, created_at, updated_at
			  FROM subjects
			  WHERE id = $1 AND deleted_at IS NULL`

	err := db.QueryRow(query, subjectID).Scan(
		&subject.ID, &subject.Name, &subject.Code, &subject.IsActive,
		&subject.CreatedAt, &subject.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return subject, nil
}
