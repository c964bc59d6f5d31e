package port

import (
	"context"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
)

const (
	EventBookingCreated       = "booking_created"
	EventBookingUpdated       = "booking_updated"
	EventBookingStatusChanged = "booking_status_changed"
	EventBookingDeleted       = "booking_deleted"
)

// BookingEvent - событие, которое мы отправляем подписчикам.
type BookingEvent struct {
	Type string         `json:"type"`
	Data domain.Booking `json:"data"`
}

// NotifierPort - контракт для отправки уведомлений об изменениях бронирований.
type NotifierPort interface {
	Notify(ctx context.Context, event BookingEvent)
}
