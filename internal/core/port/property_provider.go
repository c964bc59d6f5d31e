package port

import (
	"context"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/google/uuid"
)

// PropertyProviderPort - источник объектов для подбора.
type PropertyProviderPort interface {
	GetAll(ctx context.Context) ([]domain.Property, error)
	FindByID(ctx context.Context, propertyID uuid.UUID) (*domain.Property, error)
}

// ClientRepositoryPort - источник карточек клиентов.
type ClientRepositoryPort interface {
	FindByID(ctx context.Context, clientID uuid.UUID) (*domain.Client, error)
}
