package model

import "time"

// DateLayout is the wire and storage format of a task due date.
const DateLayout = "2006-01-02"

type Task struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	AssignedBy  uint64     `gorm:"not null;index" json:"assigned_by"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	HasReminder bool       `gorm:"not null;default:false" json:"has_reminder"`
	IsUrgent    bool       `gorm:"not null;default:false" json:"is_urgent"`
	Completed   bool       `gorm:"not null;default:false;index" json:"completed"`
	CompletedBy *uint64    `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
