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

const propertyColumns = `
	id, property_type, district, area, rooms_count, floor, total_floors,
	balconies_count, bathrooms_count, bathroom_type, repair_state, heating_type, elevators_count,
	amenities, views, nearby_objects,
	has_parking, parking_type, no_furniture, has_appliances, has_garage, garage_spaces,
	has_bathhouse, has_pool, land_area,
	children_allowed, pets_allowed, smoking_allowed,
	has_compensation_contract, is_self_employed, is_personal_income_tax, is_company_income_tax,
	monthly_rent, winter_monthly_rent, summer_monthly_rent, daily_price`

// PostgresPropertyRepository отдает каталог объектов для подбора и бронирования.
type PostgresPropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPropertyRepository(pool *pgxpool.Pool) (*PostgresPropertyRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPropertyRepository{pool: pool}, nil
}

func scanProperty(row pgx.Row) (domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID, &p.PropertyType, &p.District, &p.Area, &p.RoomsCount, &p.Floor, &p.TotalFloors,
		&p.BalconiesCount, &p.BathroomsCount, &p.BathroomType, &p.RepairState, &p.HeatingType, &p.ElevatorsCount,
		&p.Amenities, &p.Views, &p.NearbyObjects,
		&p.HasParking, &p.ParkingType, &p.NoFurniture, &p.HasAppliances, &p.HasGarage, &p.GarageSpaces,
		&p.HasBathhouse, &p.HasPool, &p.LandArea,
		&p.ChildrenAllowed, &p.PetsAllowed, &p.SmokingAllowed,
		&p.HasCompensationContract, &p.IsSelfEmployed, &p.IsPersonalIncomeTax, &p.IsCompanyIncomeTax,
		&p.MonthlyRent, &p.WinterMonthlyRent, &p.SummerMonthlyRent, &p.DailyPrice,
	)
	return p, err
}

// GetAll возвращает все объекты в порядке добавления.
func (r *PostgresPropertyRepository) GetAll(ctx context.Context) ([]domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPropertyRepository",
		"method":    "GetAll",
	})

	query := `SELECT ` + propertyColumns + ` FROM properties ORDER BY created_at, id`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		repoLogger.Error("Failed to query properties", err, nil)
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	properties := make([]domain.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			repoLogger.Error("Failed to scan property row", err, nil)
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during properties iteration", err, nil)
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}

	repoLogger.Debug("Properties loaded", port.Fields{"count": len(properties)})
	return properties, nil
}

func (r *PostgresPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresPropertyRepository",
		"method":      "FindByID",
		"property_id": id.String(),
	})

	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	p, err := scanProperty(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Warn("Property not found", nil)
			return nil, domain.ErrPropertyNotFound
		}
		repoLogger.Error("Failed to find property by ID", err, nil)
		return nil, fmt.Errorf("failed to find property by id: %w", err)
	}
	return &p, nil
}
