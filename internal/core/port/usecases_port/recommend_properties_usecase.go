package usecases_port

import (
	"context"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/google/uuid"
)

type RecommendPropertiesUseCasePort interface {
	Execute(ctx context.Context, client domain.Client) ([]domain.ScoredProperty, error)
	ExecuteForClientID(ctx context.Context, clientID uuid.UUID) ([]domain.ScoredProperty, error)
}
