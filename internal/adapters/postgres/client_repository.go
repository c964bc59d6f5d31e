package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

type PostgresClientRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresClientRepository(pool *pgxpool.Pool) (*PostgresClientRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresClientRepository{pool: pool}, nil
}

func (r *PostgresClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresClientRepository",
		"method":    "FindByID",
		"client_id": id.String(),
	})

	query := `
		SELECT id, full_name, rental_type,
			desired_property_type, desired_rooms_count, desired_area, preferred_district,
			min_floor, max_floor, desired_repair_state, desired_bathrooms_count,
			desired_heating_type, desired_balconies_count,
			needs_elevator, needs_furniture, needs_appliances, needs_parking, needs_official_agreement,
			needs_yard, needs_garage, needs_bathhouse, needs_pool,
			preferred_amenities, preferred_views, preferred_nearby_objects,
			long_term_budget_min, long_term_budget_max, short_term_budget_min, short_term_budget_max,
			budget_flexibility, max_budget_increase,
			has_pets, children_count, is_smoking_client
		FROM clients
		WHERE id = $1
	`
	var c domain.Client
	err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&c.ID, &c.FullName, &c.RentalType,
		&c.DesiredPropertyType, &c.DesiredRoomsCount, &c.DesiredArea, &c.PreferredDistrict,
		&c.MinFloor, &c.MaxFloor, &c.DesiredRepairState, &c.DesiredBathroomsCount,
		&c.DesiredHeatingType, &c.DesiredBalconiesCount,
		&c.NeedsElevator, &c.NeedsFurniture, &c.NeedsAppliances, &c.NeedsParking, &c.NeedsOfficialAgreement,
		&c.NeedsYard, &c.NeedsGarage, &c.NeedsBathhouse, &c.NeedsPool,
		&c.PreferredAmenities, &c.PreferredViews, &c.PreferredNearbyObjects,
		&c.LongTermBudgetMin, &c.LongTermBudgetMax, &c.ShortTermBudgetMin, &c.ShortTermBudgetMax,
		&c.BudgetFlexibility, &c.MaxBudgetIncrease,
		&c.HasPets, &c.ChildrenCount, &c.IsSmokingClient,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Warn("Client not found", nil)
			return nil, domain.ErrClientNotFound
		}
		repoLogger.Error("Failed to find client by ID", err, nil)
		return nil, fmt.Errorf("failed to find client by id: %w", err)
	}

	repoLogger.Debug("Client found", nil)
	return &c, nil
}
