package models

import "time"

// PeriodStatus defines the lifecycle state of a grading period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "open"
	PeriodClosed PeriodStatus = "closed"
)

// SemesterPeriod is the year-wide period record for a semester.
// It acts as the default status for every grade that has no
// grade-level SemesterStatus override.
type SemesterPeriod struct {
	ID             string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	AcademicYearID string        `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Semester       int           `json:"semester" gorm:"not null" validate:"required,min=1,max=2"`
	Status         PeriodStatus  `json:"status" gorm:"not null;default:'closed'"`
	OpenedAt       *time.Time    `json:"opened_at,omitempty"`
	OpenedBy       *string       `json:"opened_by,omitempty" gorm:"type:uuid"`
	ClosedAt       *time.Time    `json:"closed_at,omitempty"`
	ClosedBy       *string       `json:"closed_by,omitempty" gorm:"type:uuid"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	AcademicYear   *AcademicYear `json:"academic_year,omitempty" gorm:"foreignKey:AcademicYearID;references:ID"`
}

// SemesterStatus is the grade-level period record. When a row exists
// for a (year, grade, semester) it overrides the year-wide
// SemesterPeriod for that grade.
type SemesterStatus struct {
	ID             string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	AcademicYearID string        `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Grade          int           `json:"grade" gorm:"not null;index" validate:"required,min=1,max=13"`
	Semester       int           `json:"semester" gorm:"not null" validate:"required,min=1,max=2"`
	Status         PeriodStatus  `json:"status" gorm:"not null;default:'closed'"`
	Declared       bool          `json:"declared" gorm:"default:false"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	AcademicYear   *AcademicYear `json:"academic_year,omitempty" gorm:"foreignKey:AcademicYearID;references:ID"`
}

// UnlockLog records a privileged unlock of a finalized scope.
type UnlockLog struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	AcademicYearID string    `json:"academic_year_id" gorm:"not null;index;type:uuid"`
	Semester       int       `json:"semester" gorm:"not null"`
	Grade          *int      `json:"grade,omitempty"`
	ActorID        string    `json:"actor_id" gorm:"not null;index;type:uuid"`
	Reason         string    `json:"reason" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}
