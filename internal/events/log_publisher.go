package events

import (
	"context"
	"log"
)

// LogPublisher is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	log.Printf("event %s: task=%d user=%d id=%s", e.Type, e.TaskID, e.UserID, e.ID)
	return nil
}
