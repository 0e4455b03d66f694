package models

import "time"

// Mark stores a student's marks for one assessment.
type Mark struct {
	ID             string      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentID      string      `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	SubjectID      string      `json:"subject_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AssessmentID   string      `json:"assessment_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	TeacherID      *string     `json:"teacher_id,omitempty" gorm:"index;type:uuid" validate:"omitempty,uuid"`
	AcademicYearID string      `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Grade          int         `json:"grade" gorm:"not null;index" validate:"required,min=1,max=13"`
	Section        *string     `json:"section,omitempty" gorm:"type:varchar(10)"`
	Semester       int         `json:"semester" gorm:"not null" validate:"required,min=1,max=2"`
	MarksObtained  float64     `json:"marks_obtained" gorm:"not null;type:decimal(5,2)" validate:"gte=0"`
	IsSubmitted    bool        `json:"is_submitted" gorm:"default:false"`
	SubmittedAt    *time.Time  `json:"submitted_at,omitempty"`
	IsLocked       bool        `json:"is_locked" gorm:"default:false"`
	LockedAt       *time.Time  `json:"locked_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt      *time.Time  `json:"deleted_at,omitempty" gorm:"index"`
	Student        *Student    `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	Subject        *Subject    `json:"subject,omitempty" gorm:"foreignKey:SubjectID;references:ID"`
	Assessment     *Assessment `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID;references:ID"`
}
