package domain

import (
	"strings"

	"github.com/google/uuid"
)

// RentalType - желаемый формат аренды клиента.
type RentalType string

const (
	RentalLongTerm  RentalType = "длительная"
	RentalShortTerm RentalType = "посуточная"
	RentalEither    RentalType = "оба_варианта"
)

// Normalize приводит значение к нижнему регистру без пробелов по краям.
func (r RentalType) Normalize() RentalType {
	return RentalType(strings.ToLower(strings.TrimSpace(string(r))))
}

func (r RentalType) IsLongTerm() bool  { return r.Normalize() == RentalLongTerm }
func (r RentalType) IsShortTerm() bool { return r.Normalize() == RentalShortTerm }

// Client - клиент агентства с его пожеланиями.
// Все указатели необязательны: незаполненное пожелание не считается несовпадением.
type Client struct {
	ID         uuid.UUID  `json:"id"`
	FullName   string     `json:"full_name,omitempty"`
	RentalType RentalType `json:"rental_type"`

	DesiredPropertyType   *string  `json:"desired_property_type,omitempty"`
	DesiredRoomsCount     *int     `json:"desired_rooms_count,omitempty"`
	DesiredArea           *float64 `json:"desired_area,omitempty"`
	PreferredDistrict     *string  `json:"preferred_district,omitempty"`
	MinFloor              *int     `json:"min_floor,omitempty"`
	MaxFloor              *int     `json:"max_floor,omitempty"`
	DesiredRepairState    *string  `json:"desired_repair_state,omitempty"`
	DesiredBathroomsCount *int     `json:"desired_bathrooms_count,omitempty"`
	DesiredHeatingType    *string  `json:"desired_heating_type,omitempty"`
	DesiredBalconiesCount *int     `json:"desired_balconies_count,omitempty"`

	NeedsElevator          bool `json:"needs_elevator"`
	NeedsFurniture         bool `json:"needs_furniture"`
	NeedsAppliances        bool `json:"needs_appliances"`
	NeedsParking           bool `json:"needs_parking"`
	NeedsOfficialAgreement bool `json:"needs_official_agreement"`
	NeedsYard              bool `json:"needs_yard"`
	NeedsGarage            bool `json:"needs_garage"`
	NeedsBathhouse         bool `json:"needs_bathhouse"`
	NeedsPool              bool `json:"needs_pool"`

	PreferredAmenities     []string `json:"preferred_amenities,omitempty"`
	PreferredViews         []string `json:"preferred_views,omitempty"`
	PreferredNearbyObjects []string `json:"preferred_nearby_objects,omitempty"`

	LongTermBudgetMin  *float64 `json:"long_term_budget_min,omitempty"`
	LongTermBudgetMax  *float64 `json:"long_term_budget_max,omitempty"`
	ShortTermBudgetMin *float64 `json:"short_term_budget_min,omitempty"`
	ShortTermBudgetMax *float64 `json:"short_term_budget_max,omitempty"`
	BudgetFlexibility  bool     `json:"budget_flexibility"`
	MaxBudgetIncrease  float64  `json:"max_budget_increase"`

	HasPets         bool `json:"has_pets"`
	ChildrenCount   *int `json:"children_count,omitempty"`
	IsSmokingClient bool `json:"is_smoking_client"`
}

// HasChildren - в семье клиента есть дети.
func (c *Client) HasChildren() bool {
	return c.ChildrenCount != nil && *c.ChildrenCount > 0
}
