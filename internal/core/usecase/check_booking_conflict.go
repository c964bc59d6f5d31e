package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/google/uuid"
)

type CheckBookingConflictUseCase struct {
	store port.BookingStorePort
}

func NewCheckBookingConflictUseCase(store port.BookingStorePort) *CheckBookingConflictUseCase {
	return &CheckBookingConflictUseCase{store: store}
}

// Execute проверяет, занят ли объект хотя бы в один день из [from, to].
// Хранилище отдает кандидатов, окончательное решение принимает domain.HasConflict.
func (uc *CheckBookingConflictUseCase) Execute(ctx context.Context, propertyID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) (bool, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fields := port.Fields{
		"use_case":    "CheckBookingConflict",
		"property_id": propertyID.String(),
		"from":        from,
		"to":          to,
	}
	if excludeID != nil {
		fields["exclude_id"] = excludeID.String()
	}
	ucLogger := logger.WithFields(fields)

	if err := domain.ValidateDateRange(from, to); err != nil {
		ucLogger.Warn("Invalid date range for conflict check", nil)
		return false, err
	}

	ucLogger.Debug("Use case started", nil)

	bookings, err := uc.store.FindByPropertyInRange(ctx, propertyID, from, to, excludeID)
	if err != nil {
		ucLogger.Error("Repository failed to load bookings in range", err, nil)
		return false, fmt.Errorf("failed to load bookings for conflict check: %w", err)
	}

	conflict := domain.HasConflict(bookings, propertyID, from, to, excludeID)
	ucLogger.Debug("Use case finished successfully", port.Fields{"conflict": conflict})
	return conflict, nil
}
