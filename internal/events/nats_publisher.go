package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NatsPublisher sends every event as JSON to "<prefix>.<type>".
type NatsPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNatsPublisher(conn *nats.Conn, prefix string) *NatsPublisher {
	return &NatsPublisher{
		conn:   conn,
		prefix: prefix,
	}
}

func (p *NatsPublisher) Subject(t Type) string {
	return fmt.Sprintf("%s.%s", p.prefix, t)
}

func (p *NatsPublisher) Publish(ctx context.Context, e Event) error {
	// nats Publish does not take a context.
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.conn.Publish(p.Subject(e.Type), data)
}
