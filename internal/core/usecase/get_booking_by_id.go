package usecase

import (
	"context"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/google/uuid"
)

type GetBookingByIdUseCase struct {
	store port.BookingStorePort
}

func NewGetBookingByIdUseCase(store port.BookingStorePort) *GetBookingByIdUseCase {
	return &GetBookingByIdUseCase{store: store}
}

func (uc *GetBookingByIdUseCase) Execute(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetBookingById", "booking_id": bookingID.String()})

	booking, err := uc.store.FindByID(ctx, bookingID)
	if err != nil {
		ucLogger.Error("Repository failed to find booking", err, nil)
		return nil, err
	}
	return booking, nil
}
