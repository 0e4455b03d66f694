package models

import "time"

// Trend describes how a student's rank moved relative to the most
// recently published ranking for the same scope.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Ranking is one leaderboard entry. Entries stay invisible to
// student/parent consumers until published_at is set.
type Ranking struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StudentID      string     `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYearID string     `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Semester       *int       `json:"semester,omitempty" validate:"omitempty,min=1,max=2"` // nil for year scope
	Grade          int        `json:"grade" gorm:"not null;index"`
	SubjectID      *string    `json:"subject_id,omitempty" gorm:"index;type:uuid" validate:"omitempty,uuid"` // nil for overall
	RankPosition   int        `json:"rank_position" gorm:"not null"`
	AverageScore   float64    `json:"average_score" gorm:"not null;type:decimal(5,2)"`
	Trend          Trend      `json:"trend" gorm:"not null;default:'flat'"`
	PublishedAt    *time.Time `json:"published_at,omitempty" gorm:"index"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	Student        *Student   `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	Subject        *Subject   `json:"subject,omitempty" gorm:"foreignKey:SubjectID;references:ID"`
}
