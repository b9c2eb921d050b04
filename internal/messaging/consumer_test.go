package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrick-ksn/dms/internal/author"
	"github.com/patrick-ksn/dms/internal/cache"
	"github.com/patrick-ksn/dms/internal/models"
	"github.com/patrick-ksn/dms/internal/store"
)

type fakeMsg struct {
	data     []byte
	acked    bool
	naked    bool
	nakDelay time.Duration
	termed   bool
}

func (m *fakeMsg) Data() []byte { return m.data }
func (m *fakeMsg) Ack() error   { m.acked = true; return nil }
func (m *fakeMsg) NakWithDelay(delay time.Duration) error {
	m.naked = true
	m.nakDelay = delay
	return nil
}
func (m *fakeMsg) Term() error { m.termed = true; return nil }

type fakeDeleter struct {
	err   error
	calls []int
}

func (f *fakeDeleter) Delete(_ context.Context, id int) error {
	f.calls = append(f.calls, id)
	return f.err
}

func testQueueConfig() QueueConfig {
	return QueueConfig{
		Stream:     "AUTHOR_DELETE",
		Subject:    "authors.delete",
		Durable:    "author-delete-worker",
		MaxDeliver: 3,
		RetryDelay: 5 * time.Second,
	}
}

func TestProcessDeletesAndAcks(t *testing.T) {
	d := &fakeDeleter{}
	c := NewConsumer(d, testQueueConfig())

	msg := &fakeMsg{data: []byte("7")}
	c.process(context.Background(), msg)

	assert.Equal(t, []int{7}, d.calls)
	assert.True(t, msg.acked)
	assert.False(t, msg.naked)
	assert.False(t, msg.termed)
}

func TestProcessSwallowsNotFound(t *testing.T) {
	d := &fakeDeleter{err: models.NewAuthorNotFound(7)}
	c := NewConsumer(d, testQueueConfig())

	msg := &fakeMsg{data: []byte("7")}
	c.process(context.Background(), msg)

	assert.True(t, msg.acked, "an already-deleted author is the desired end state")
	assert.False(t, msg.naked)
}

func TestProcessNaksOnTransientFailure(t *testing.T) {
	d := &fakeDeleter{err: errors.New("store unavailable")}
	c := NewConsumer(d, testQueueConfig())

	msg := &fakeMsg{data: []byte("7")}
	c.process(context.Background(), msg)

	assert.True(t, msg.naked, "transient failures must leave the message for redelivery")
	assert.Equal(t, 5*time.Second, msg.nakDelay,
		"the NAK must carry the retry delay: a plain NAK would be redelivered immediately")
	assert.False(t, msg.acked)
	assert.False(t, msg.termed)
}

func TestProcessTerminatesMalformedPayload(t *testing.T) {
	d := &fakeDeleter{}
	c := NewConsumer(d, testQueueConfig())

	msg := &fakeMsg{data: []byte("not-a-number")}
	c.process(context.Background(), msg)

	assert.True(t, msg.termed, "malformed payloads are dropped, never retried")
	assert.Empty(t, d.calls)
}

func TestProcessTrimsWhitespace(t *testing.T) {
	d := &fakeDeleter{}
	c := NewConsumer(d, testQueueConfig())

	msg := &fakeMsg{data: []byte(" 12\n")}
	c.process(context.Background(), msg)

	assert.Equal(t, []int{12}, d.calls)
	assert.True(t, msg.acked)
}

type ctxRecordingDeleter struct {
	ctx context.Context
}

func (d *ctxRecordingDeleter) Delete(ctx context.Context, _ int) error {
	d.ctx = ctx
	return nil
}

func TestProcessForwardsCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &ctxRecordingDeleter{}
	c := NewConsumer(d, testQueueConfig())
	c.process(ctx, &fakeMsg{data: []byte("3")})

	require.NotNil(t, d.ctx)
	assert.ErrorIs(t, d.ctx.Err(), context.Canceled,
		"shutdown must be able to cancel in-flight deletes through the context")
}

func TestDoubleDeliveryIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	authors := cache.NewMemoryCache("authors")
	documents := cache.NewMemoryCache("documents")
	svc := author.NewService(st, authors, documents)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.Author{FirstName: "Mary", LastName: "Muller"})
	require.NoError(t, err)

	c := NewConsumer(svc, testQueueConfig())
	payload := []byte("1")

	first := &fakeMsg{data: payload}
	c.process(ctx, first)
	assert.True(t, first.acked)

	second := &fakeMsg{data: payload}
	c.process(ctx, second)
	assert.True(t, second.acked, "redelivery of a completed delete must succeed as a no-op")

	exists, err := st.AuthorExists(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBackoffSchedule(t *testing.T) {
	cfg := testQueueConfig()
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, cfg.backoff(),
		"three attempts total means two redeliveries")

	cfg.MaxDeliver = 1
	assert.Nil(t, cfg.backoff())
}
