package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/matching"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/google/uuid"
)

type RecommendPropertiesUseCase struct {
	properties port.PropertyProviderPort
	clients    port.ClientRepositoryPort
	engine     *matching.Engine
}

func NewRecommendPropertiesUseCase(properties port.PropertyProviderPort, clients port.ClientRepositoryPort, engine *matching.Engine) *RecommendPropertiesUseCase {
	return &RecommendPropertiesUseCase{
		properties: properties,
		clients:    clients,
		engine:     engine,
	}
}

// Execute подбирает объекты для клиента: отбор по формату аренды, оценка,
// отбрасывание нулевых оценок и сортировка по убыванию. При равных оценках
// сохраняется порядок, в котором объекты отдал источник.
func (uc *RecommendPropertiesUseCase) Execute(ctx context.Context, client domain.Client) ([]domain.ScoredProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "RecommendProperties",
		"client_id":   client.ID.String(),
		"rental_type": string(client.RentalType),
	})

	ucLogger.Info("Use case started", nil)

	properties, err := uc.properties.GetAll(ctx)
	if err != nil {
		ucLogger.Error("Property provider failed to return properties", err, nil)
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}

	candidates := matching.FilterCandidates(properties, client.RentalType)
	ucLogger.Debug("Candidates filtered by rental type", port.Fields{
		"total": len(properties), "candidates": len(candidates),
	})

	result := make([]domain.ScoredProperty, 0, len(candidates))
	for _, property := range candidates {
		if err := ctx.Err(); err != nil {
			ucLogger.Warn("Recommendation cancelled", port.Fields{"error": err.Error()})
			return nil, err
		}
		score := uc.engine.Score(client, property)
		if score <= 0 {
			continue
		}
		result = append(result, domain.ScoredProperty{Property: property, Score: score})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})

	ucLogger.Info("Use case finished successfully", port.Fields{"recommended": len(result)})
	return result, nil
}

// ExecuteForClientID загружает карточку клиента и подбирает объекты для нее.
func (uc *RecommendPropertiesUseCase) ExecuteForClientID(ctx context.Context, clientID uuid.UUID) ([]domain.ScoredProperty, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "RecommendPropertiesForClient", "client_id": clientID.String()})

	client, err := uc.clients.FindByID(ctx, clientID)
	if err != nil {
		ucLogger.Error("Repository failed to find client", err, nil)
		return nil, err
	}

	return uc.Execute(ctx, *client)
}
