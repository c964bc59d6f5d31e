package usecases_port

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CheckBookingConflictUseCasePort interface {
	Execute(ctx context.Context, propertyID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) (bool, error)
}
