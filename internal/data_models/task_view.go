package dto

import (
	"time"

	model "task-assign.com/task-assign/internal/models"
)

// TaskView is the projection row returned to clients. Names are nil when the
// referenced user cannot be resolved.
type TaskView struct {
	ID              uint64     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	AssignedBy      uint64     `json:"assigned_by"`
	AssignedByName  *string    `json:"assigned_by_name"`
	AssignedTo      []uint64   `json:"assigned_to,omitempty"`
	DueDate         *string    `json:"due_date"`
	HasReminder     bool       `json:"has_reminder"`
	IsUrgent        bool       `json:"is_urgent"`
	Completed       bool       `json:"completed"`
	CompletedBy     *uint64    `json:"completed_by,omitempty"`
	CompletedByName *string    `json:"completed_by_name,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func NewTaskView(t model.Task, names map[uint64]string) TaskView {
	v := TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AssignedBy:  t.AssignedBy,
		HasReminder: t.HasReminder,
		IsUrgent:    t.IsUrgent,
		Completed:   t.Completed,
		CompletedBy: t.CompletedBy,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
	if name, ok := names[t.AssignedBy]; ok {
		v.AssignedByName = &name
	}
	if t.CompletedBy != nil {
		if name, ok := names[*t.CompletedBy]; ok {
			v.CompletedByName = &name
		}
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(model.DateLayout)
		v.DueDate = &due
	}
	return v
}
