package usecase

import (
	"context"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/google/uuid"
)

// UpdateBookingStatusUseCase - ручная смена статуса. Таблица автоматических
// переходов здесь не применяется, принимается любой известный статус.
type UpdateBookingStatusUseCase struct {
	store    port.BookingStorePort
	notifier port.NotifierPort
	now      func() time.Time
}

func NewUpdateBookingStatusUseCase(store port.BookingStorePort, notifier port.NotifierPort) *UpdateBookingStatusUseCase {
	return &UpdateBookingStatusUseCase{store: store, notifier: notifier, now: time.Now}
}

func (uc *UpdateBookingStatusUseCase) Execute(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "UpdateBookingStatus", "booking_id": bookingID.String(), "new_status": status})

	ucLogger.Info("Use case started", nil)

	status, err := domain.ParseBookingStatus(string(status))
	if err != nil {
		ucLogger.Warn("Unknown booking status", nil)
		return nil, err
	}

	booking, err := uc.store.FindByID(ctx, bookingID)
	if err != nil {
		ucLogger.Error("Repository failed to find booking", err, nil)
		return nil, err
	}
	if booking.Status == status {
		ucLogger.Info("Status unchanged, nothing to update", nil)
		return booking, nil
	}

	now := uc.now().UTC()
	if err := uc.store.UpdateStatus(ctx, bookingID, status, now); err != nil {
		ucLogger.Error("Repository failed to update booking status", err, nil)
		return nil, err
	}
	booking.Status = status
	booking.UpdatedAt = now

	uc.notifier.Notify(ctx, port.BookingEvent{Type: port.EventBookingStatusChanged, Data: *booking})
	ucLogger.Info("Use case finished successfully", nil)
	return booking, nil
}

type UpdatePaymentStatusUseCase struct {
	store    port.BookingStorePort
	notifier port.NotifierPort
	now      func() time.Time
}

func NewUpdatePaymentStatusUseCase(store port.BookingStorePort, notifier port.NotifierPort) *UpdatePaymentStatusUseCase {
	return &UpdatePaymentStatusUseCase{store: store, notifier: notifier, now: time.Now}
}

func (uc *UpdatePaymentStatusUseCase) Execute(ctx context.Context, bookingID uuid.UUID, status domain.PaymentStatus) (*domain.Booking, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "UpdatePaymentStatus", "booking_id": bookingID.String(), "payment_status": status})

	ucLogger.Info("Use case started", nil)

	status, err := domain.ParsePaymentStatus(string(status))
	if err != nil {
		ucLogger.Warn("Unknown payment status", nil)
		return nil, err
	}

	booking, err := uc.store.FindByID(ctx, bookingID)
	if err != nil {
		ucLogger.Error("Repository failed to find booking", err, nil)
		return nil, err
	}
	if booking.PaymentStatus == status {
		return booking, nil
	}

	now := uc.now().UTC()
	if err := uc.store.UpdatePaymentStatus(ctx, bookingID, status, now); err != nil {
		ucLogger.Error("Repository failed to update payment status", err, nil)
		return nil, err
	}
	booking.PaymentStatus = status
	booking.UpdatedAt = now

	uc.notifier.Notify(ctx, port.BookingEvent{Type: port.EventBookingUpdated, Data: *booking})
	ucLogger.Info("Use case finished successfully", nil)
	return booking, nil
}
