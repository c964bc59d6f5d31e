package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

type capturedMessage struct {
	routingKey string
	msg        amqp.Publishing
	deadline   bool
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []capturedMessage
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	p.messages = append(p.messages, capturedMessage{routingKey: routingKey, msg: msg, deadline: hasDeadline})
	return p.err
}

func TestBookingEventsPublisher_Notify(t *testing.T) {
	producer := &fakePublisher{}
	pub, err := NewBookingEventsPublisher(producer)
	require.NoError(t, err)

	booking := domain.Booking{ID: uuid.New(), PropertyID: uuid.New(), Status: domain.BookingConfirmed}
	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-42")
	pub.Notify(ctx, port.BookingEvent{Type: port.EventBookingStatusChanged, Data: booking})

	require.Len(t, producer.messages, 1)
	got := producer.messages[0]
	assert.Equal(t, "booking.booking_status_changed", got.routingKey)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "trace-42", got.msg.Headers["x-trace-id"])
	assert.True(t, got.deadline)

	var decoded port.BookingEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, booking.ID, decoded.Data.ID)
	assert.Equal(t, port.EventBookingStatusChanged, decoded.Type)
}

func TestBookingEventsPublisher_FailureAndCancelledRequest(t *testing.T) {
	producer := &fakePublisher{err: errors.New("channel closed")}
	pub, err := NewBookingEventsPublisher(producer)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotPanics(t, func() {
		pub.Notify(ctx, port.BookingEvent{Type: port.EventBookingCreated})
	})
	require.Len(t, producer.messages, 1)
	_, hasTrace := producer.messages[0].msg.Headers["x-trace-id"]
	assert.False(t, hasTrace)

	_, err = NewBookingEventsPublisher(nil)
	assert.Error(t, err)
}

type fakeSweepUseCase struct {
	calls  int
	now    time.Time
	ctx    context.Context
	result domain.SweepResult
	err    error
}

func (f *fakeSweepUseCase) Execute(ctx context.Context, now time.Time) (domain.SweepResult, error) {
	f.calls++
	f.ctx = ctx
	f.now = now
	return f.result, f.err
}

func TestSweepCommandsConsumer_HandleMessage(t *testing.T) {
	fixedNow := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	newAdapter := func(uc *fakeSweepUseCase) *SweepCommandsConsumer {
		a := newSweepCommandsConsumer(uc, contextkeys.NoopLogger())
		a.now = func() time.Time { return fixedNow }
		return a
	}

	t.Run("valid command runs a sweep", func(t *testing.T) {
		uc := &fakeSweepUseCase{result: domain.SweepResult{Scanned: 4, Updated: 1}}
		err := newAdapter(uc).handleMessage(amqp.Delivery{
			Body:    []byte(`{"requested_at":"2025-03-10T11:59:00Z","requested_by":"ops"}`),
			Headers: amqp.Table{"x-trace-id": "trace-7"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, uc.calls)
		assert.Equal(t, fixedNow, uc.now)
		assert.Equal(t, "trace-7", contextkeys.TraceIDFromContext(uc.ctx))
	})

	t.Run("empty body is a valid command", func(t *testing.T) {
		uc := &fakeSweepUseCase{}
		require.NoError(t, newAdapter(uc).handleMessage(amqp.Delivery{}))
		assert.Equal(t, 1, uc.calls)
		assert.NotEmpty(t, contextkeys.TraceIDFromContext(uc.ctx))
	})

	t.Run("malformed command is dropped", func(t *testing.T) {
		uc := &fakeSweepUseCase{}
		assert.NoError(t, newAdapter(uc).handleMessage(amqp.Delivery{Body: []byte(`{"requested_at":42}`)}))
		assert.NoError(t, newAdapter(uc).handleMessage(amqp.Delivery{Body: []byte(`not json`)}))
		assert.Equal(t, 0, uc.calls)
	})

	t.Run("sweep already running is acknowledged", func(t *testing.T) {
		uc := &fakeSweepUseCase{err: domain.ErrSweepInProgress}
		assert.NoError(t, newAdapter(uc).handleMessage(amqp.Delivery{Body: []byte(`{}`)}))
	})

	t.Run("failed sweep is retried", func(t *testing.T) {
		sweepErr := &domain.SweepError{Failures: []domain.SweepFailure{{BookingID: uuid.New(), Err: errors.New("timeout")}}}
		uc := &fakeSweepUseCase{err: sweepErr}
		err := newAdapter(uc).handleMessage(amqp.Delivery{Body: []byte(`{}`)})
		assert.ErrorIs(t, err, sweepErr)
	})
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []port.Fields
	errs    []error
}

func (l *recordingLogger) record(fields port.Fields, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fields)
	l.errs = append(l.errs, err)
}

func (l *recordingLogger) Info(_ string, f port.Fields)           { l.record(f, nil) }
func (l *recordingLogger) Warn(_ string, f port.Fields)           { l.record(f, nil) }
func (l *recordingLogger) Debug(_ string, f port.Fields)          { l.record(f, nil) }
func (l *recordingLogger) Error(_ string, e error, f port.Fields) { l.record(f, e) }
func (l *recordingLogger) WithFields(port.Fields) port.LoggerPort { return l }

func TestPkgLoggerBridge(t *testing.T) {
	rec := &recordingLogger{}
	bridge := NewPkgLoggerBridge(rec)

	bridge.Info("msg", "queue", "q", "count", 3)
	bridge.Debug("msg", "dangling")
	bridge.Warn("msg", 42, "skipped", "queue", "q")
	boom := errors.New("boom")
	bridge.Error(boom, "msg", "delivery_tag", uint64(9))

	require.Len(t, rec.entries, 4)
	assert.Equal(t, port.Fields{"queue": "q", "count": 3}, rec.entries[0])
	assert.Empty(t, rec.entries[1])
	assert.Equal(t, port.Fields{"queue": "q"}, rec.entries[2])
	assert.Equal(t, port.Fields{"delivery_tag": uint64(9)}, rec.entries[3])
	assert.Equal(t, boom, rec.errs[3])
}
