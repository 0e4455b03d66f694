package models

import "time"

// PromotionStatus defines the year-end promotion decision.
type PromotionStatus string

const (
	Promoted PromotionStatus = "promoted"
	Retained PromotionStatus = "retained"
)

// SemesterResult stores a student's derived average and rank for a
// semester. Rows are upserted; recomputation over the same locked
// marks produces the same values.
type SemesterResult struct {
	ID             string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StudentID      string        `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYearID string        `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Grade          int           `json:"grade" gorm:"not null;index"`
	Semester       int           `json:"semester" gorm:"not null" validate:"required,min=1,max=2"`
	Average        float64       `json:"average" gorm:"not null;type:decimal(5,2)"`
	Rank           *int          `json:"rank,omitempty"` // nil while incomplete
	IsIncomplete   bool          `json:"is_incomplete" gorm:"default:false"`
	Remarks        *string       `json:"remarks,omitempty" gorm:"type:text"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	Student        *Student      `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	AcademicYear   *AcademicYear `json:"academic_year,omitempty" gorm:"foreignKey:AcademicYearID;references:ID"`
}

// FinalResult stores the year-end combined average, final rank and
// promotion decision derived from a student's semester results.
type FinalResult struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StudentID       string          `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYearID  string          `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Grade           int             `json:"grade" gorm:"not null;index"`
	CombinedAverage float64         `json:"combined_average" gorm:"not null;type:decimal(5,2)"`
	FinalRank       *int            `json:"final_rank,omitempty"`
	PromotionStatus PromotionStatus `json:"promotion_status" gorm:"not null"`
	Remarks         *string         `json:"remarks,omitempty" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	Student         *Student        `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
}
