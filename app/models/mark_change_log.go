package models

import "time"

// MarkAction defines the kinds of mark mutations the audit log records.
type MarkAction string

const (
	MarkCreated   MarkAction = "created"
	MarkUpdated   MarkAction = "updated"
	MarkDeleted   MarkAction = "deleted"
	MarkSubmitted MarkAction = "submitted"
)

// MarkChangeLog is one append-only audit row for a mark mutation.
// Rows are written in the same transaction as the mutation they
// describe and are never updated or deleted.
type MarkChangeLog struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MarkID    string     `json:"mark_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	ActorID   string     `json:"actor_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Action    MarkAction `json:"action" gorm:"not null" validate:"required"`
	OldValue  *float64   `json:"old_value,omitempty" gorm:"type:decimal(5,2)"`
	NewValue  *float64   `json:"new_value,omitempty" gorm:"type:decimal(5,2)"`
	IPAddress *string    `json:"ip_address,omitempty" gorm:"type:varchar(45)"`
	UserAgent *string    `json:"user_agent,omitempty" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	Actor     *User      `json:"actor,omitempty" gorm:"foreignKey:ActorID;references:ID"`
}
