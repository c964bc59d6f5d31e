package matching

import (
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
)

// CriterionScore - вклад одного критерия в итоговую оценку.
type CriterionScore struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Fraction float64 `json:"fraction"`
}

// Breakdown - оценка с разбивкой по критериям. Reason заполнен, если объект
// отсеян целиком (формат аренды или запрет для клиента).
type Breakdown struct {
	Score    float64          `json:"score"`
	Reason   string           `json:"reason,omitempty"`
	Criteria []CriterionScore `json:"criteria,omitempty"`
}

const (
	ReasonRentalType = "rental_type_mismatch"
	ReasonPets       = "pets_not_allowed"
	ReasonChildren   = "children_not_allowed"
	ReasonSmoking    = "smoking_not_allowed"
)

// Engine считает соответствие объекта пожеланиям клиента.
// Не хранит изменяемого состояния, безопасен для конкурентного использования.
type Engine struct {
	weights  Weights
	criteria []criterion
}

func NewEngine(w Weights) *Engine {
	return &Engine{weights: w, criteria: buildCriteria(w)}
}

func (e *Engine) Weights() Weights { return e.weights }

// Score возвращает оценку в [0, 1]. Ноль - объект клиенту не подходит.
func (e *Engine) Score(client domain.Client, property domain.Property) float64 {
	return e.Explain(client, property).Score
}

// Explain считает оценку и раскладывает ее по критериям.
func (e *Engine) Explain(client domain.Client, property domain.Property) Breakdown {
	c, p := &client, &property

	if reason := disqualify(c, p); reason != "" {
		return Breakdown{Reason: reason}
	}

	house := p.IsHouseLike()
	var totalScore, totalWeight float64
	details := make([]CriterionScore, 0, len(e.criteria))
	for _, cr := range e.criteria {
		if cr.houseOnly && !house {
			continue
		}
		fraction := clamp01(cr.match(c, p))
		totalWeight += cr.weight
		totalScore += cr.weight * fraction
		details = append(details, CriterionScore{Name: cr.name, Weight: cr.weight, Fraction: fraction})
	}

	if totalWeight == 0 {
		return Breakdown{Criteria: details}
	}
	return Breakdown{Score: clamp01(totalScore / totalWeight), Criteria: details}
}

// disqualify - проверки, которые обнуляют оценку целиком.
func disqualify(c *domain.Client, p *domain.Property) string {
	switch {
	case c.RentalType.IsLongTerm() && !p.IsLongTermEligible(),
		c.RentalType.IsShortTerm() && !p.IsShortTermEligible():
		return ReasonRentalType
	case c.HasPets && !p.PetsAllowed:
		return ReasonPets
	case c.HasChildren() && !p.ChildrenAllowed:
		return ReasonChildren
	case c.IsSmokingClient && !p.SmokingAllowed:
		return ReasonSmoking
	}
	return ""
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
