package usecases_port

import (
	"context"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/google/uuid"
)

type GetBookingByIdUseCasePort interface {
	Execute(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
}

type GetBookingsListUseCasePort interface {
	Execute(ctx context.Context, filter port.BookingFilter) (port.BookingPage, error)
}

type GetPropertyStatusUseCasePort interface {
	Execute(ctx context.Context, propertyID uuid.UUID) (domain.PropertyStatus, error)
}
