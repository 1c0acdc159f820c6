package model

import "time"

// TaskAssignment is append-only. The composite key keeps one row per
// (task, user) pair.
type TaskAssignment struct {
	TaskID     uint64    `gorm:"primaryKey;autoIncrement:false" json:"task_id"`
	UserID     uint64    `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`
}
