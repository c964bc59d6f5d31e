package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contracts"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/matching"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port/usecases_port"
)

// Scorer - оценка одной пары клиент/объект с разбивкой.
type Scorer interface {
	Explain(client domain.Client, property domain.Property) matching.Breakdown
}

type RecommendationHandler struct {
	recommendUC      usecases_port.RecommendPropertiesUseCasePort
	conflictUC       usecases_port.CheckBookingConflictUseCasePort
	propertyStatusUC usecases_port.GetPropertyStatusUseCasePort
	scorer           Scorer
}

func NewRecommendationHandler(
	recommendUC usecases_port.RecommendPropertiesUseCasePort,
	conflictUC usecases_port.CheckBookingConflictUseCasePort,
	propertyStatusUC usecases_port.GetPropertyStatusUseCasePort,
	scorer Scorer,
) *RecommendationHandler {
	return &RecommendationHandler{
		recommendUC:      recommendUC,
		conflictUC:       conflictUC,
		propertyStatusUC: propertyStatusUC,
		scorer:           scorer,
	}
}

func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// Recommend - POST /recommendations, тело - анкета клиента.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Recommend"})

	var client domain.Client
	if err := decodeValidated(w, r, contracts.ClientProfileV1, &client); err != nil {
		logger.Warn("Invalid client profile", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.recommendUC.Execute(r.Context(), client)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to build recommendations")
		return
	}

	logger.Info("Recommendations built", port.Fields{"count": len(result)})
	RespondWithJSON(w, http.StatusOK, toRecommendations(result, limitParam(r)))
}

// RecommendForClient - GET /clients/{clientID}/recommendations.
func (h *RecommendationHandler) RecommendForClient(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RecommendForClient"})

	clientID, err := uuid.Parse(chi.URLParam(r, "clientID"))
	if err != nil {
		logger.Warn("Invalid client ID format in URL", port.Fields{"provided_id": chi.URLParam(r, "clientID")})
		WriteJSONError(w, http.StatusBadRequest, "Invalid client ID in URL")
		return
	}

	result, err := h.recommendUC.ExecuteForClientID(r.Context(), clientID)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to build recommendations")
		return
	}

	RespondWithJSON(w, http.StatusOK, toRecommendations(result, limitParam(r)))
}

// Score - POST /scores: оценка одного объекта для одного клиента.
func (h *RecommendationHandler) Score(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Score"})

	var req ScoreRequest
	if err := decodeValidated(w, r, contracts.ScoreRequestV1, &req); err != nil {
		logger.Warn("Invalid score request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	breakdown := h.scorer.Explain(req.Client, req.Property)
	resp := ScoreResponse{Score: breakdown.Score, Reason: breakdown.Reason}
	if req.Explain {
		resp.Criteria = breakdown.Criteria
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// CheckConflicts - GET /properties/{propertyID}/conflicts?from=&to=&exclude_id=.
func (h *RecommendationHandler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CheckConflicts"})

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid property ID in URL")
		return
	}

	query := r.URL.Query()
	from, to, err := parseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	excludeID, err := parseOptionalUUID(query.Get("exclude_id"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'exclude_id' format")
		return
	}

	conflict, err := h.conflictUC.Execute(r.Context(), propertyID, from, to, excludeID)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to check booking conflicts")
		return
	}

	RespondWithJSON(w, http.StatusOK, ConflictResponse{
		PropertyID: propertyID.String(),
		From:       from.Format(dateLayout),
		To:         to.Format(dateLayout),
		Conflict:   conflict,
	})
}

// PropertyStatus - GET /properties/{propertyID}/status.
func (h *RecommendationHandler) PropertyStatus(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "PropertyStatus"})

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid property ID in URL")
		return
	}

	status, err := h.propertyStatusUC.Execute(r.Context(), propertyID)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to derive property status")
		return
	}

	RespondWithJSON(w, http.StatusOK, PropertyStatusResponse{PropertyID: propertyID.String(), Status: status})
}
