package usecases_port

import (
	"context"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
)

type SweepBookingStatusesUseCasePort interface {
	Execute(ctx context.Context, now time.Time) (domain.SweepResult, error)
}
