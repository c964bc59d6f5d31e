package matching

import "github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"

// FilterCandidates оставляет объекты, подходящие под формат аренды клиента.
// Порядок входного списка сохраняется.
func FilterCandidates(properties []domain.Property, rentalType domain.RentalType) []domain.Property {
	candidates := make([]domain.Property, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		switch {
		case rentalType.IsLongTerm() && !p.IsLongTermEligible():
			continue
		case rentalType.IsShortTerm() && !p.IsShortTermEligible():
			continue
		}
		candidates = append(candidates, *p)
	}
	return candidates
}
