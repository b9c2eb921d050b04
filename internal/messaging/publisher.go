package messaging

import (
	"context"
	"strconv"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/patrick-ksn/dms/pkg/logger"
)

// Publisher enqueues author-delete commands. Fire-and-forget: the publish is
// acknowledged by the stream, not by the consumer having processed it.
type Publisher struct {
	js      jetstream.JetStream
	subject string
}

func NewPublisher(js jetstream.JetStream, subject string) *Publisher {
	return &Publisher{js: js, subject: subject}
}

// SendDeleteCommand serializes the author identifier as a decimal string and
// publishes it to the queue.
func (p *Publisher) SendDeleteCommand(ctx context.Context, authorID int) error {
	if _, err := p.js.Publish(ctx, p.subject, []byte(strconv.Itoa(authorID))); err != nil {
		return err
	}
	logger.Debugf("Sent command: for author with ID: %d to queue: %s", authorID, p.subject)
	return nil
}
