package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Property - объект недвижимости в том виде, в котором его видит подбор.
// Nil в указателях означает, что значение не заполнено.
type Property struct {
	ID           uuid.UUID `json:"id"`
	PropertyType string    `json:"property_type"`
	District     string    `json:"district"`

	Area           float64 `json:"area"`
	RoomsCount     int     `json:"rooms_count"`
	Floor          int     `json:"floor"`
	TotalFloors    int     `json:"total_floors"`
	BalconiesCount int     `json:"balconies_count"`
	BathroomsCount int     `json:"bathrooms_count"`
	BathroomType   string  `json:"bathroom_type"`
	RepairState    string  `json:"repair_state"`
	HeatingType    string  `json:"heating_type"`
	ElevatorsCount *int    `json:"elevators_count,omitempty"`

	Amenities     []string `json:"amenities"`
	Views         []string `json:"views"`
	NearbyObjects []string `json:"nearby_objects"`

	HasParking    bool    `json:"has_parking"`
	ParkingType   *string `json:"parking_type,omitempty"`
	NoFurniture   bool    `json:"no_furniture"`
	HasAppliances bool    `json:"has_appliances"`
	HasGarage     bool    `json:"has_garage"`
	GarageSpaces  int     `json:"garage_spaces"`
	HasBathhouse  bool    `json:"has_bathhouse"`
	HasPool       bool    `json:"has_pool"`
	LandArea      float64 `json:"land_area"`

	ChildrenAllowed bool `json:"children_allowed"`
	PetsAllowed     bool `json:"pets_allowed"`
	SmokingAllowed  bool `json:"smoking_allowed"`

	HasCompensationContract bool `json:"has_compensation_contract"`
	IsSelfEmployed          bool `json:"is_self_employed"`
	IsPersonalIncomeTax     bool `json:"is_personal_income_tax"`
	IsCompanyIncomeTax      bool `json:"is_company_income_tax"`

	MonthlyRent       *float64 `json:"monthly_rent,omitempty"`
	WinterMonthlyRent *float64 `json:"winter_monthly_rent,omitempty"`
	SummerMonthlyRent *float64 `json:"summer_monthly_rent,omitempty"`
	DailyPrice        *float64 `json:"daily_price,omitempty"`
}

// Подстроки типа объекта, при которых включаются критерии для частных домов.
var houseLikeMarkers = []string{"дом", "коттедж", "таунхаус"}

// IsLongTermEligible - объект сдается надолго, если задана хоть одна помесячная цена.
func (p *Property) IsLongTermEligible() bool {
	return p.MonthlyRent != nil || p.WinterMonthlyRent != nil || p.SummerMonthlyRent != nil
}

// IsShortTermEligible - объект сдается посуточно.
func (p *Property) IsShortTermEligible() bool {
	return p.DailyPrice != nil
}

// LongTermPrice возвращает первую заполненную помесячную цену: обычная, зимняя, летняя.
func (p *Property) LongTermPrice() *float64 {
	switch {
	case p.MonthlyRent != nil:
		return p.MonthlyRent
	case p.WinterMonthlyRent != nil:
		return p.WinterMonthlyRent
	default:
		return p.SummerMonthlyRent
	}
}

// HasLegalDocuments - собственник может оформить официальный договор.
func (p *Property) HasLegalDocuments() bool {
	return p.HasCompensationContract || p.IsSelfEmployed || p.IsPersonalIncomeTax || p.IsCompanyIncomeTax
}

// IsHouseLike определяет частный дом по типу объекта.
func (p *Property) IsHouseLike() bool {
	t := strings.ToLower(p.PropertyType)
	for _, marker := range houseLikeMarkers {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}
