package messaging

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/patrick-ksn/dms/internal/models"
	"github.com/patrick-ksn/dms/pkg/logger"
	"github.com/patrick-ksn/dms/pkg/metrics"
)

// AuthorDeleter is the slice of the author service the consumer needs.
type AuthorDeleter interface {
	Delete(ctx context.Context, id int) error
}

// delivery is the subset of jetstream.Msg the handler touches; tests fake it.
type delivery interface {
	Data() []byte
	Ack() error
	NakWithDelay(delay time.Duration) error
	Term() error
}

// Consumer drains the author-delete queue and applies each command through
// the same service path as the synchronous API.
type Consumer struct {
	deleter AuthorDeleter
	cfg     QueueConfig
	consume jetstream.ConsumeContext
	cancel  context.CancelFunc
}

func NewConsumer(deleter AuthorDeleter, cfg QueueConfig) *Consumer {
	return &Consumer{deleter: deleter, cfg: cfg}
}

// Start creates (or updates) the durable consumer and begins consuming.
// MaxDeliver bounds the attempts per message; pacing between attempts rides
// on the NAK delay in process, with the BackOff schedule covering ack-wait
// expirations.
func (c *Consumer) Start(ctx context.Context, stream jetstream.Stream) error {
	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:    c.cfg.Durable,
		AckPolicy:  jetstream.AckExplicitPolicy,
		MaxDeliver: c.cfg.MaxDeliver,
		BackOff:    c.cfg.backoff(),
	})
	if err != nil {
		return err
	}
	msgCtx, cancel := context.WithCancel(ctx)
	cc, err := cons.Consume(func(msg jetstream.Msg) {
		c.process(msgCtx, msg)
	})
	if err != nil {
		cancel()
		return err
	}
	c.consume = cc
	c.cancel = cancel
	logger.Infof("consuming author delete commands from %s (max %d attempts, %s between)",
		c.cfg.Subject, c.cfg.MaxDeliver, c.cfg.RetryDelay)
	return nil
}

// Stop halts consumption and cancels the context of in-flight deletes.
func (c *Consumer) Stop() {
	if c.consume != nil {
		c.consume.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Consumer) process(ctx context.Context, msg delivery) {
	raw := strings.TrimSpace(string(msg.Data()))
	id, err := strconv.Atoi(raw)
	if err != nil {
		// malformed payload: redelivery cannot fix a producer bug, drop it
		logger.Errorf("author delete: malformed payload %q: %v", raw, err)
		metrics.QueueDeletes.WithLabelValues("invalid").Inc()
		_ = msg.Term()
		return
	}
	logger.Debugf("Received authorID: %d from queue: %s", id, c.cfg.Subject)

	err = c.deleter.Delete(ctx, id)
	var nf *models.NotFoundError
	switch {
	case err == nil:
		metrics.QueueDeletes.WithLabelValues("deleted").Inc()
		_ = msg.Ack()
	case errors.As(err, &nf):
		// already gone, via the API or an earlier delivery: that is the
		// desired end state, not a failure
		logger.Debugf("author not found. %d", id)
		metrics.QueueDeletes.WithLabelValues("already_deleted").Inc()
		_ = msg.Ack()
	default:
		// NakWithDelay, not Nak: a plain NAK requests immediate redelivery and
		// skips the consumer BackOff schedule, so the fixed pacing between
		// attempts has to ride on the NAK itself
		logger.Warnf("author delete %d failed, retrying in %s: %v", id, c.cfg.RetryDelay, err)
		metrics.QueueDeletes.WithLabelValues("retry").Inc()
		_ = msg.NakWithDelay(c.cfg.RetryDelay)
	}
}
