package usecase

import (
	"context"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/google/uuid"
)

type DeleteBookingUseCase struct {
	store    port.BookingStorePort
	notifier port.NotifierPort
}

func NewDeleteBookingUseCase(store port.BookingStorePort, notifier port.NotifierPort) *DeleteBookingUseCase {
	return &DeleteBookingUseCase{store: store, notifier: notifier}
}

func (uc *DeleteBookingUseCase) Execute(ctx context.Context, bookingID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "DeleteBooking", "booking_id": bookingID.String()})

	ucLogger.Info("Use case started", nil)

	booking, err := uc.store.FindByID(ctx, bookingID)
	if err != nil {
		ucLogger.Error("Repository failed to find booking", err, nil)
		return err
	}
	if err := uc.store.Delete(ctx, bookingID); err != nil {
		ucLogger.Error("Repository failed to delete booking", err, nil)
		return err
	}

	uc.notifier.Notify(ctx, port.BookingEvent{Type: port.EventBookingDeleted, Data: *booking})
	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
