package domain

// ScoredProperty - объект с оценкой соответствия клиенту, 0 < Score <= 1.
type ScoredProperty struct {
	Property Property `json:"property"`
	Score    float64  `json:"score"`
}
