package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TaskCreated     Type = "task_created"
	TaskCompleted   Type = "task_completed"
	ReminderStopped Type = "reminder_stopped"
	ReminderDue     Type = "reminder_due"
)

type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	TaskID     uint64    `json:"task_id"`
	UserID     uint64    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(t Type, taskID, userID uint64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		TaskID:     taskID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
