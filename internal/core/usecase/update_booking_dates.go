package usecase

import (
	"context"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port/usecases_port"
	"github.com/google/uuid"
)

type UpdateBookingDatesUseCase struct {
	store     port.BookingStorePort
	conflicts usecases_port.CheckBookingConflictUseCasePort
	notifier  port.NotifierPort
	now       func() time.Time
}

func NewUpdateBookingDatesUseCase(store port.BookingStorePort, conflicts usecases_port.CheckBookingConflictUseCasePort, notifier port.NotifierPort) *UpdateBookingDatesUseCase {
	return &UpdateBookingDatesUseCase{
		store:     store,
		conflicts: conflicts,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Execute переносит бронирование на новые даты. Само бронирование в проверке
// пересечений не участвует.
func (uc *UpdateBookingDatesUseCase) Execute(ctx context.Context, bookingID uuid.UUID, start, end time.Time) (*domain.Booking, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "UpdateBookingDates", "booking_id": bookingID.String()})

	ucLogger.Info("Use case started", nil)

	if err := domain.ValidateDateRange(start, end); err != nil {
		ucLogger.Warn("Invalid booking dates", nil)
		return nil, err
	}

	current, err := uc.store.FindByID(ctx, bookingID)
	if err != nil {
		ucLogger.Error("Repository failed to find booking", err, nil)
		return nil, err
	}

	var updated *domain.Booking
	err = uc.store.WithinPropertyLock(ctx, current.PropertyID, func(txCtx context.Context) error {
		booking, err := uc.store.FindByID(txCtx, bookingID)
		if err != nil {
			return err
		}
		conflict, err := uc.conflicts.Execute(txCtx, booking.PropertyID, start, end, &booking.ID)
		if err != nil {
			return err
		}
		if conflict {
			return domain.ErrBookingConflict
		}
		booking.StartDate = start.UTC()
		booking.EndDate = end.UTC()
		booking.UpdatedAt = uc.now().UTC()
		if err := uc.store.Update(txCtx, booking); err != nil {
			return err
		}
		updated = booking
		return nil
	})
	if err != nil {
		ucLogger.Error("Failed to update booking dates", err, nil)
		return nil, err
	}

	uc.notifier.Notify(ctx, port.BookingEvent{Type: port.EventBookingUpdated, Data: *updated})
	ucLogger.Info("Use case finished successfully", nil)
	return updated, nil
}
