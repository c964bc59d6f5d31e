package usecase

import (
	"context"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/google/uuid"
)

// GetPropertyStatusUseCase вычисляет статус объекта по его бронированиям.
// Статус нигде не хранится.
type GetPropertyStatusUseCase struct {
	properties port.PropertyProviderPort
	store      port.BookingStorePort
	now        func() time.Time
}

func NewGetPropertyStatusUseCase(properties port.PropertyProviderPort, store port.BookingStorePort) *GetPropertyStatusUseCase {
	return &GetPropertyStatusUseCase{properties: properties, store: store, now: time.Now}
}

func (uc *GetPropertyStatusUseCase) Execute(ctx context.Context, propertyID uuid.UUID) (domain.PropertyStatus, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetPropertyStatus", "property_id": propertyID.String()})

	if _, err := uc.properties.FindByID(ctx, propertyID); err != nil {
		ucLogger.Error("Property provider failed to find property", err, nil)
		return "", err
	}

	bookings, err := uc.store.FindByProperty(ctx, propertyID)
	if err != nil {
		ucLogger.Error("Repository failed to load property bookings", err, nil)
		return "", err
	}

	status := domain.DerivePropertyStatus(bookings, uc.now().UTC())
	ucLogger.Debug("Property status derived", port.Fields{"status": status, "bookings": len(bookings)})
	return status, nil
}
