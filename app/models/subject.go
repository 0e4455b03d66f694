package models

import "time"

// Subject is directory reference data consumed by the grading core.
type Subject struct {
	ID          string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	Name        string        `json:"name" gorm:"uniqueIndex;not null" validate:"required"`
	Code        string        `json:"code" gorm:"uniqueIndex;not null" validate:"required"`
	IsActive    bool          `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   *time.Time    `json:"deleted_at,omitempty" gorm:"index"`
	Assessments []*Assessment `json:"assessments,omitempty" gorm:"foreignKey:SubjectID;references:ID"`
}
