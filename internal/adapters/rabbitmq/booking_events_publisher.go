package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/constants"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

const publishTimeout = 10 * time.Second

type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// BookingEventsPublisher пересылает события бронирований в booking_events_exchange.
type BookingEventsPublisher struct {
	producer publisher
	now      func() time.Time
}

func NewBookingEventsPublisher(producer publisher) (*BookingEventsPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &BookingEventsPublisher{producer: producer, now: time.Now}, nil
}

func routingKeyFor(eventType string) string {
	return fmt.Sprintf(constants.BookingEventsRoutingKey, eventType)
}

// Notify не возвращает ошибку: сбой публикации только логируется.
func (a *BookingEventsPublisher) Notify(ctx context.Context, event port.BookingEvent) {
	routingKey := routingKeyFor(event.Type)
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "BookingEventsPublisher",
		"routing_key": routingKey,
		"booking_id":  event.Data.ID.String(),
	})

	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal booking event", err, nil)
		return
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    a.now(),
		Type:         event.Type,
		Headers:      amqp.Table{},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	// запрос мог уже завершиться, публикация от него не зависит
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		logger.Error("Failed to publish booking event", err, nil)
		return
	}
	logger.Debug("Booking event published", nil)
}
