// Package messaging carries author-delete commands over a durable NATS
// JetStream work queue. The consumer invokes the same delete path as the
// synchronous API, so both paths converge to the same state; redelivery and
// retry pacing are delegated to the JetStream consumer configuration.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// QueueConfig describes the author-delete queue.
type QueueConfig struct {
	Stream     string
	Subject    string
	Durable    string
	MaxDeliver int           // total delivery attempts per message
	RetryDelay time.Duration // fixed delay before each redelivery
}

// Connect opens the NATS connection and returns a JetStream handle.
// Caller should close the connection on shutdown.
func Connect(url, clientName string) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return nc, js, nil
}

// EnsureStream creates or updates the durable work-queue stream the delete
// commands are published to.
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg QueueConfig) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
}

// backoff returns the fixed redelivery schedule: one entry per retry.
func (cfg QueueConfig) backoff() []time.Duration {
	if cfg.MaxDeliver <= 1 {
		return nil
	}
	out := make([]time.Duration, cfg.MaxDeliver-1)
	for i := range out {
		out[i] = cfg.RetryDelay
	}
	return out
}
