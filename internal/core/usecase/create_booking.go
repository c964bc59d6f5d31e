package usecase

import (
	"context"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port/usecases_port"
)

type CreateBookingUseCase struct {
	store      port.BookingStorePort
	properties port.PropertyProviderPort
	conflicts  usecases_port.CheckBookingConflictUseCasePort
	notifier   port.NotifierPort
	now        func() time.Time
}

func NewCreateBookingUseCase(
	store port.BookingStorePort,
	properties port.PropertyProviderPort,
	conflicts usecases_port.CheckBookingConflictUseCasePort,
	notifier port.NotifierPort,
) *CreateBookingUseCase {
	return &CreateBookingUseCase{
		store:      store,
		properties: properties,
		conflicts:  conflicts,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Execute создает бронирование. Проверка пересечений и запись идут под
// блокировкой объекта, так что два параллельных запроса на одни даты не пройдут оба.
func (uc *CreateBookingUseCase) Execute(ctx context.Context, input usecases_port.CreateBookingInput) (*domain.Booking, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "CreateBooking",
		"property_id": input.PropertyID.String(),
		"client_id":   input.ClientID.String(),
	})

	ucLogger.Info("Use case started", nil)

	booking, err := domain.NewBooking(input.PropertyID, input.ClientID, input.StartDate, input.EndDate, uc.now())
	if err != nil {
		ucLogger.Warn("Invalid booking dates", port.Fields{"error": err.Error()})
		return nil, err
	}
	if input.Status != nil {
		// новое бронирование может быть только ожидающим или сразу подтвержденным
		if *input.Status != domain.BookingPending && *input.Status != domain.BookingConfirmed {
			ucLogger.Warn("Unsupported initial status", port.Fields{"status": *input.Status})
			return nil, domain.ErrInvalidStatus
		}
		booking.Status = *input.Status
	}
	booking.Amount = input.Amount
	booking.Notes = input.Notes

	err = uc.store.WithinPropertyLock(ctx, input.PropertyID, func(txCtx context.Context) error {
		if _, err := uc.properties.FindByID(txCtx, input.PropertyID); err != nil {
			return err
		}
		conflict, err := uc.conflicts.Execute(txCtx, input.PropertyID, booking.StartDate, booking.EndDate, nil)
		if err != nil {
			return err
		}
		if conflict {
			return domain.ErrBookingConflict
		}
		return uc.store.Create(txCtx, booking)
	})
	if err != nil {
		ucLogger.Error("Failed to create booking", err, nil)
		return nil, err
	}

	uc.notifier.Notify(ctx, port.BookingEvent{Type: port.EventBookingCreated, Data: *booking})
	ucLogger.Info("Use case finished successfully", port.Fields{"booking_id": booking.ID.String()})
	return booking, nil
}
