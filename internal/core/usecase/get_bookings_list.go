package usecase

import (
	"context"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

const (
	defaultBookingsLimit = 50
	maxBookingsLimit     = 200
)

type GetBookingsListUseCase struct {
	store port.BookingStorePort
}

func NewGetBookingsListUseCase(store port.BookingStorePort) *GetBookingsListUseCase {
	return &GetBookingsListUseCase{store: store}
}

func (uc *GetBookingsListUseCase) Execute(ctx context.Context, filter port.BookingFilter) (port.BookingPage, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetBookingsList"})

	if filter.Limit <= 0 {
		filter.Limit = defaultBookingsLimit
	}
	if filter.Limit > maxBookingsLimit {
		filter.Limit = maxBookingsLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	ucLogger.Info("Use case started", port.Fields{"limit": filter.Limit, "offset": filter.Offset})

	bookings, total, err := uc.store.List(ctx, filter)
	if err != nil {
		ucLogger.Error("Repository failed to list bookings", err, nil)
		return port.BookingPage{}, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"returned": len(bookings), "total": total})
	return port.BookingPage{Bookings: bookings, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}
