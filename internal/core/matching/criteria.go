package matching

import (
	"math"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
)

const (
	full    = 1.0
	half    = 0.5
	none    = 0.0
	neutral = 0.5 // пожелание не указано
)

// matchFunc возвращает долю совпадения по одному критерию, от 0 до 1.
type matchFunc func(c *domain.Client, p *domain.Property) float64

type criterion struct {
	name      string
	weight    float64
	houseOnly bool
	match     matchFunc
}

func buildCriteria(w Weights) []criterion {
	return []criterion{
		{name: "property_type", weight: w.PropertyType, match: optionalText(func(c *domain.Client) *string { return c.DesiredPropertyType }, func(p *domain.Property) string { return p.PropertyType })},
		{name: "district", weight: w.District, match: optionalText(func(c *domain.Client) *string { return c.PreferredDistrict }, func(p *domain.Property) string { return p.District })},
		{name: "budget", weight: w.Budget, match: budgetMatch},
		{name: "rooms", weight: w.Rooms, match: roomsMatch},
		{name: "area", weight: w.Area, match: areaMatch},
		{name: "floor", weight: w.Floor, match: floorMatch},
		{name: "elevator", weight: w.Elevator, match: requirement(func(c *domain.Client) bool { return c.NeedsElevator }, func(p *domain.Property) bool { return p.ElevatorsCount != nil && *p.ElevatorsCount > 0 })},
		{name: "repair_state", weight: w.RepairState, match: optionalText(func(c *domain.Client) *string { return c.DesiredRepairState }, func(p *domain.Property) string { return p.RepairState })},
		{name: "furniture", weight: w.Furniture, match: requirement(func(c *domain.Client) bool { return c.NeedsFurniture }, func(p *domain.Property) bool { return !p.NoFurniture })},
		{name: "appliances", weight: w.Appliances, match: requirement(func(c *domain.Client) bool { return c.NeedsAppliances }, func(p *domain.Property) bool { return p.HasAppliances })},
		{name: "bathrooms", weight: w.Bathrooms, match: atLeast(func(c *domain.Client) *int { return c.DesiredBathroomsCount }, func(p *domain.Property) int { return p.BathroomsCount })},
		{name: "heating", weight: w.Heating, match: optionalText(func(c *domain.Client) *string { return c.DesiredHeatingType }, func(p *domain.Property) string { return p.HeatingType })},
		{name: "parking", weight: w.Parking, match: requirement(func(c *domain.Client) bool { return c.NeedsParking }, func(p *domain.Property) bool { return p.HasParking })},
		{name: "balconies", weight: w.Balconies, match: atLeast(func(c *domain.Client) *int { return c.DesiredBalconiesCount }, func(p *domain.Property) int { return p.BalconiesCount })},
		{name: "amenities", weight: w.Amenities, match: setOverlap(func(c *domain.Client) []string { return c.PreferredAmenities }, func(p *domain.Property) []string { return p.Amenities })},
		{name: "views", weight: w.Views, match: setOverlap(func(c *domain.Client) []string { return c.PreferredViews }, func(p *domain.Property) []string { return p.Views })},
		{name: "nearby_objects", weight: w.NearbyObjects, match: setOverlap(func(c *domain.Client) []string { return c.PreferredNearbyObjects }, func(p *domain.Property) []string { return p.NearbyObjects })},
		{name: "legal", weight: w.Legal, match: requirement(func(c *domain.Client) bool { return c.NeedsOfficialAgreement }, (*domain.Property).HasLegalDocuments)},

		{name: "yard", weight: w.Yard, houseOnly: true, match: requirement(func(c *domain.Client) bool { return c.NeedsYard }, func(p *domain.Property) bool { return p.LandArea > 0 })},
		{name: "garage", weight: w.Garage, houseOnly: true, match: requirement(func(c *domain.Client) bool { return c.NeedsGarage }, func(p *domain.Property) bool { return p.HasGarage })},
		{name: "bathhouse", weight: w.Bathhouse, houseOnly: true, match: requirement(func(c *domain.Client) bool { return c.NeedsBathhouse }, func(p *domain.Property) bool { return p.HasBathhouse })},
		{name: "pool", weight: w.Pool, houseOnly: true, match: requirement(func(c *domain.Client) bool { return c.NeedsPool }, func(p *domain.Property) bool { return p.HasPool })},
	}
}

// optionalText: пожелание не указано - нейтрально, иначе подстрока без учета регистра.
func optionalText(wanted func(*domain.Client) *string, offered func(*domain.Property) string) matchFunc {
	return func(c *domain.Client, p *domain.Property) float64 {
		w := wanted(c)
		if w == nil || fold(*w) == "" {
			return neutral
		}
		if containsFold(offered(p), *w) {
			return full
		}
		return none
	}
}

// requirement: флаг "нужно" выключен - любой объект подходит.
func requirement(needed func(*domain.Client) bool, has func(*domain.Property) bool) matchFunc {
	return func(c *domain.Client, p *domain.Property) float64 {
		if !needed(c) || has(p) {
			return full
		}
		return none
	}
}

// atLeast: у объекта не меньше, чем хочет клиент.
func atLeast(wanted func(*domain.Client) *int, offered func(*domain.Property) int) matchFunc {
	return func(c *domain.Client, p *domain.Property) float64 {
		w := wanted(c)
		if w == nil {
			return neutral
		}
		if offered(p) >= *w {
			return full
		}
		return none
	}
}

// setOverlap: пустой список пожеланий ничего не требует от объекта.
func setOverlap(preferred func(*domain.Client) []string, offered func(*domain.Property) []string) matchFunc {
	return func(c *domain.Client, p *domain.Property) float64 {
		ratio, ok := overlapRatio(preferred(c), offered(p))
		if !ok {
			return full
		}
		return ratio
	}
}

func budgetMatch(c *domain.Client, p *domain.Property) float64 {
	price, budgetMin, budgetMax := budgetTerms(c, p)
	if budgetMin == nil && budgetMax == nil {
		return neutral
	}
	if price == nil {
		return none
	}

	lo, hi := 0.0, math.Inf(1)
	if budgetMin != nil {
		lo = *budgetMin
	}
	if budgetMax != nil {
		hi = *budgetMax
	}
	if *price >= lo && *price <= hi {
		return full
	}
	if c.BudgetFlexibility && budgetMax != nil && *price <= *budgetMax*(1+c.MaxBudgetIncrease) {
		return half
	}
	return none
}

// budgetTerms выбирает цену объекта и границы бюджета по формату аренды.
// Для "оба варианта" берется формат, в котором клиент задал бюджет, а у объекта
// есть цена; иначе помесячная цена, если она есть.
func budgetTerms(c *domain.Client, p *domain.Property) (price, budgetMin, budgetMax *float64) {
	longTerm := func() (*float64, *float64, *float64) {
		return p.LongTermPrice(), c.LongTermBudgetMin, c.LongTermBudgetMax
	}
	shortTerm := func() (*float64, *float64, *float64) {
		return p.DailyPrice, c.ShortTermBudgetMin, c.ShortTermBudgetMax
	}

	switch {
	case c.RentalType.IsLongTerm():
		return longTerm()
	case c.RentalType.IsShortTerm():
		return shortTerm()
	}

	longSet := c.LongTermBudgetMin != nil || c.LongTermBudgetMax != nil
	shortSet := c.ShortTermBudgetMin != nil || c.ShortTermBudgetMax != nil
	switch {
	case longSet && p.IsLongTermEligible():
		return longTerm()
	case shortSet && p.IsShortTermEligible():
		return shortTerm()
	case p.IsLongTermEligible():
		return longTerm()
	}
	return shortTerm()
}

func roomsMatch(c *domain.Client, p *domain.Property) float64 {
	if c.DesiredRoomsCount == nil {
		return neutral
	}
	switch diff := p.RoomsCount - *c.DesiredRoomsCount; {
	case diff == 0:
		return full
	case diff == 1 || diff == -1:
		return half
	default:
		return none
	}
}

func areaMatch(c *domain.Client, p *domain.Property) float64 {
	if c.DesiredArea == nil || *c.DesiredArea <= 0 {
		return neutral
	}
	desired := *c.DesiredArea
	ratio := math.Abs(p.Area-desired) / desired
	switch {
	case ratio <= 0.1:
		return full
	case ratio <= 0.2:
		return half
	case p.Area > desired && ratio <= 0.5:
		return 1.0 / 3.0
	default:
		return none
	}
}

func floorMatch(c *domain.Client, p *domain.Property) float64 {
	if c.MinFloor == nil && c.MaxFloor == nil {
		return neutral
	}
	if c.MinFloor != nil && p.Floor < *c.MinFloor {
		return none
	}
	if c.MaxFloor != nil && p.Floor > *c.MaxFloor {
		return none
	}
	return full
}
