package rest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/matching"
)

const dateLayout = "2006-01-02"

type CreateBookingRequest struct {
	PropertyID string   `json:"property_id"`
	ClientID   string   `json:"client_id"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Status     string   `json:"status,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

type UpdateDatesRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdatePaymentRequest struct {
	PaymentStatus string `json:"payment_status"`
}

type ScoreRequest struct {
	Client   domain.Client   `json:"client"`
	Property domain.Property `json:"property"`
	Explain  bool            `json:"explain"`
}

type BookingResponse struct {
	ID            string               `json:"id"`
	PropertyID    string               `json:"property_id"`
	ClientID      string               `json:"client_id"`
	StartDate     string               `json:"start_date"`
	EndDate       string               `json:"end_date"`
	Status        domain.BookingStatus `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	Amount        *float64             `json:"amount,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     string               `json:"created_at"`
	UpdatedAt     string               `json:"updated_at"`
}

type PaginatedBookingsResponse struct {
	Data   []BookingResponse `json:"data"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type RecommendationResponse struct {
	Property domain.Property `json:"property"`
	Score    float64         `json:"score"`
}

type ScoreResponse struct {
	Score    float64                   `json:"score"`
	Reason   string                    `json:"reason,omitempty"`
	Criteria []matching.CriterionScore `json:"criteria,omitempty"`
}

type ConflictResponse struct {
	PropertyID string `json:"property_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Conflict   bool   `json:"conflict"`
}

type PropertyStatusResponse struct {
	PropertyID string                `json:"property_id"`
	Status     domain.PropertyStatus `json:"status"`
}

type SweepResponse struct {
	Result domain.SweepResult `json:"result"`
	Error  string             `json:"error,omitempty"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID.String(),
		PropertyID:    b.PropertyID.String(),
		ClientID:      b.ClientID.String(),
		StartDate:     b.StartDate.Format(dateLayout),
		EndDate:       b.EndDate.Format(dateLayout),
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Amount:        b.Amount,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     b.UpdatedAt.Format(time.RFC3339),
	}
}

func toRecommendations(scored []domain.ScoredProperty, limit int) []RecommendationResponse {
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]RecommendationResponse, len(scored))
	for i, s := range scored {
		out[i] = RecommendationResponse{Property: s.Property, Score: s.Score}
	}
	return out
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid '%s': expected YYYY-MM-DD", field)
	}
	return t, nil
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDate("start_date", from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate("end_date", to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
