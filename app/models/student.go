package models

import "time"

// Student is directory reference data consumed by the grading core.
type Student struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentID   string     `json:"student_id" gorm:"uniqueIndex;not null" validate:"required"` // human-readable admission number
	FirstName   string     `json:"first_name" gorm:"not null" validate:"required"`
	LastName    string     `json:"last_name" gorm:"not null" validate:"required"`
	Gender      *Gender    `json:"gender,omitempty"`
	Grade       int        `json:"grade" gorm:"not null;index" validate:"required,min=1,max=13"`
	Section     *string    `json:"section,omitempty" gorm:"type:varchar(10)"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}
