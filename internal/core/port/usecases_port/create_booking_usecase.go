package usecases_port

import (
	"context"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/google/uuid"
)

type CreateBookingInput struct {
	PropertyID uuid.UUID
	ClientID   uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	Status     *domain.BookingStatus
	Amount     *float64
	Notes      string
}

type CreateBookingUseCasePort interface {
	Execute(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
}
