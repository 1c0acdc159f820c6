package config

import (
	"time"

	"github.com/nats-io/nats.go"
)

// NewNatsConn returns nil when no URL is configured.
func NewNatsConn(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}

	return nats.Connect(url,
		nats.Name("task-assign"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
}
