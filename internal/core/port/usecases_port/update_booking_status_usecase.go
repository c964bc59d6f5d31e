package usecases_port

import (
	"context"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/google/uuid"
)

type UpdateBookingStatusUseCasePort interface {
	Execute(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
}

type UpdatePaymentStatusUseCasePort interface {
	Execute(ctx context.Context, bookingID uuid.UUID, status domain.PaymentStatus) (*domain.Booking, error)
}

type DeleteBookingUseCasePort interface {
	Execute(ctx context.Context, bookingID uuid.UUID) error
}
