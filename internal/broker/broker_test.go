package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func newTestPublisher(w *recordingWriter) *EventPublisher {
	return NewEventPublisher(&Producer{writer: w, logger: util.GetLogger()})
}

func TestPublishOrderCreated(t *testing.T) {
	w := &recordingWriter{}
	ep := newTestPublisher(w)

	productID := "64b7f0c2a1b2c3d4e5f60001"
	event := &models.OrderCreatedEvent{
		BaseEvent:     models.BaseEvent{EventID: "e1", EventType: models.EventTypeOrderCreated, Timestamp: time.Now()},
		OrderID:       "abc",
		UserID:        "u1",
		TotalAmount:   decimal.NewFromInt(620),
		PaymentMethod: models.PaymentCOD,
		Items:         []models.OrderItemData{{ProductID: &productID, Name: "Sugar 2kg", Quantity: 2, UnitPrice: decimal.NewFromInt(310)}},
	}
	require.NoError(t, ep.PublishOrderCreated(context.Background(), event))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order-abc", string(w.msgs[0].Key))

	var decoded models.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, models.EventTypeOrderCreated, decoded.EventType)
	assert.Equal(t, "u1", decoded.UserID)
	assert.True(t, decimal.NewFromInt(620).Equal(decoded.TotalAmount))
}

func TestPublishReturnsWriterError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	ep := newTestPublisher(w)

	err := ep.PublishOrderCancelled(context.Background(), &models.OrderCancelledEvent{OrderID: "abc"})
	assert.Error(t, err)
}

func TestEventHandlerRoutesOrderCreated(t *testing.T) {
	eh := NewEventHandler()

	var got *models.OrderCreatedEvent
	eh.OnOrderCreated(func(_ context.Context, e *models.OrderCreatedEvent) error {
		got = e
		return nil
	})

	created, _ := json.Marshal(models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderCreated},
		OrderID:   "o1",
		UserID:    "u1",
	})
	require.NoError(t, eh.HandleMessage(context.Background(), kafka.Message{Value: created}))
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)

	got = nil
	cancelled, _ := json.Marshal(models.OrderCancelledEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderCancelled},
		OrderID:   "o1",
	})
	require.NoError(t, eh.HandleMessage(context.Background(), kafka.Message{Value: cancelled}))
	assert.Nil(t, got)

	assert.Error(t, eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("{")}))
}

type scriptedReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error { return nil }

func TestStartConsumingCommitsHandledMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{
		msgs:   []kafka.Message{{Offset: 1}, {Offset: 2}, {Offset: 3}},
		cancel: cancel,
	}
	c := &Consumer{reader: reader, topic: "order-events", logger: util.GetLogger()}

	err := c.StartConsuming(ctx, func(_ context.Context, msg kafka.Message) error {
		if msg.Offset == 2 {
			return errors.New("handler failed")
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{1, 3}, reader.committed)
}
