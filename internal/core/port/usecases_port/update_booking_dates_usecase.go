package usecases_port

import (
	"context"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/google/uuid"
)

type UpdateBookingDatesUseCasePort interface {
	Execute(ctx context.Context, bookingID uuid.UUID, start, end time.Time) (*domain.Booking, error)
}
