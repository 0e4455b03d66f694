package models

import "time"

// Assessment represents one graded component of a subject for a
// (year, grade, semester) scope, e.g. "Mid-semester exam" weighted 40%.
type Assessment struct {
	ID             string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	SubjectID      string        `json:"subject_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	TeacherID      *string       `json:"teacher_id,omitempty" gorm:"index;type:uuid" validate:"omitempty,uuid"`
	AcademicYearID string        `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Grade          int           `json:"grade" gorm:"not null;index" validate:"required,min=1,max=13"`
	Semester       int           `json:"semester" gorm:"not null" validate:"required,min=1,max=2"`
	Name           string        `json:"name" gorm:"not null" validate:"required"`
	Type           string        `json:"type" gorm:"not null;default:'exam'" validate:"required"`
	MaxMarks       float64       `json:"max_marks" gorm:"not null;type:decimal(5,2)" validate:"required,gt=0"`
	Weight         int           `json:"weight" gorm:"not null" validate:"required,min=0,max=100"` // Percentage, e.g., 40
	IsEditable     bool          `json:"is_editable" gorm:"default:true"`
	LockedAt       *time.Time    `json:"locked_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt      *time.Time    `json:"deleted_at,omitempty" gorm:"index"`
	Subject        *Subject      `json:"subject,omitempty" gorm:"foreignKey:SubjectID;references:ID"`
	Teacher        *User         `json:"teacher,omitempty" gorm:"foreignKey:TeacherID;references:ID"`
	AcademicYear   *AcademicYear `json:"academic_year,omitempty" gorm:"foreignKey:AcademicYearID;references:ID"`
}
