package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/adapters/notifier"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contracts"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port/usecases_port"
)

const sseKeepAlive = 15 * time.Second

type BookingHandler struct {
	createUC        usecases_port.CreateBookingUseCasePort
	getUC           usecases_port.GetBookingByIdUseCasePort
	listUC          usecases_port.GetBookingsListUseCasePort
	updateDatesUC   usecases_port.UpdateBookingDatesUseCasePort
	updateStatusUC  usecases_port.UpdateBookingStatusUseCasePort
	updatePaymentUC usecases_port.UpdatePaymentStatusUseCasePort
	deleteUC        usecases_port.DeleteBookingUseCasePort
	sweepUC         usecases_port.SweepBookingStatusesUseCasePort
	notifier        *notifier.SSENotifier
}

type BookingUseCases struct {
	Create        usecases_port.CreateBookingUseCasePort
	Get           usecases_port.GetBookingByIdUseCasePort
	List          usecases_port.GetBookingsListUseCasePort
	UpdateDates   usecases_port.UpdateBookingDatesUseCasePort
	UpdateStatus  usecases_port.UpdateBookingStatusUseCasePort
	UpdatePayment usecases_port.UpdatePaymentStatusUseCasePort
	Delete        usecases_port.DeleteBookingUseCasePort
	Sweep         usecases_port.SweepBookingStatusesUseCasePort
}

func NewBookingHandler(uc BookingUseCases, sse *notifier.SSENotifier) *BookingHandler {
	return &BookingHandler{
		createUC:        uc.Create,
		getUC:           uc.Get,
		listUC:          uc.List,
		updateDatesUC:   uc.UpdateDates,
		updateStatusUC:  uc.UpdateStatus,
		updatePaymentUC: uc.UpdatePayment,
		deleteUC:        uc.Delete,
		sweepUC:         uc.Sweep,
		notifier:        sse,
	}
}

func bookingIDParam(w http.ResponseWriter, r *http.Request, logger port.LoggerPort) (uuid.UUID, bool) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		logger.Warn("Invalid booking ID format in URL", port.Fields{"provided_id": chi.URLParam(r, "bookingID")})
		WriteJSONError(w, http.StatusBadRequest, "Invalid booking ID in URL")
		return uuid.Nil, false
	}
	return bookingID, true
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateBooking"})

	var req CreateBookingRequest
	if err := decodeValidated(w, r, contracts.BookingCreateV1, &req); err != nil {
		logger.Warn("Invalid create booking request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := usecases_port.CreateBookingInput{Amount: req.Amount, Notes: req.Notes}
	var err error
	if input.PropertyID, err = uuid.Parse(req.PropertyID); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'property_id' format")
		return
	}
	if input.ClientID, err = uuid.Parse(req.ClientID); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'client_id' format")
		return
	}
	if input.StartDate, input.EndDate, err = parseDateRange(req.StartDate, req.EndDate); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status != "" {
		status, err := domain.ParseBookingStatus(req.Status)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		input.Status = &status
	}

	booking, err := h.createUC.Execute(r.Context(), input)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to create booking")
		return
	}

	logger.Info("Booking created", port.Fields{"booking_id": booking.ID.String()})
	RespondWithJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetBooking"})

	bookingID, ok := bookingIDParam(w, r, logger)
	if !ok {
		return
	}

	booking, err := h.getUC.Execute(r.Context(), bookingID)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to retrieve booking")
		return
	}
	RespondWithJSON(w, http.StatusOK, toBookingResponse(booking))
}

// ListBookings - GET /bookings?property_id=&client_id=&status=&limit=&offset=.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListBookings"})
	query := r.URL.Query()

	var filter port.BookingFilter
	var err error
	if filter.PropertyID, err = parseOptionalUUID(query.Get("property_id")); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'property_id' format")
		return
	}
	if filter.ClientID, err = parseOptionalUUID(query.Get("client_id")); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'client_id' format")
		return
	}
	if s := query.Get("status"); s != "" {
		status, err := domain.ParseBookingStatus(s)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = &status
	}
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))
	filter.Offset, _ = strconv.Atoi(query.Get("offset"))

	page, err := h.listUC.Execute(r.Context(), filter)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to retrieve bookings")
		return
	}

	data := make([]BookingResponse, len(page.Bookings))
	for i := range page.Bookings {
		data[i] = toBookingResponse(&page.Bookings[i])
	}
	RespondWithJSON(w, http.StatusOK, PaginatedBookingsResponse{Data: data, Total: page.Total, Limit: page.Limit, Offset: page.Offset})
}

// UpdateDates - PUT /bookings/{bookingID}/dates.
func (h *BookingHandler) UpdateDates(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdateDates"})

	bookingID, ok := bookingIDParam(w, r, logger)
	if !ok {
		return
	}
	var req UpdateDatesRequest
	if err := decodeValidated(w, r, contracts.BookingDatesV1, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.updateDatesUC.Execute(r.Context(), bookingID, start, end)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to update booking dates")
		return
	}
	RespondWithJSON(w, http.StatusOK, toBookingResponse(booking))
}

// UpdateStatus - PATCH /bookings/{bookingID}/status.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdateStatus"})

	bookingID, ok := bookingIDParam(w, r, logger)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := decodeValidated(w, r, contracts.BookingStatusV1, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.updateStatusUC.Execute(r.Context(), bookingID, domain.BookingStatus(req.Status))
	if err != nil {
		writeDomainError(w, logger, err, "Failed to update booking status")
		return
	}
	RespondWithJSON(w, http.StatusOK, toBookingResponse(booking))
}

// CancelBooking - POST /bookings/{bookingID}/cancel.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CancelBooking"})

	bookingID, ok := bookingIDParam(w, r, logger)
	if !ok {
		return
	}
	booking, err := h.updateStatusUC.Execute(r.Context(), bookingID, domain.BookingCancelled)
	if err != nil {
		writeDomainError(w, logger, err, "Failed to cancel booking")
		return
	}
	RespondWithJSON(w, http.StatusOK, toBookingResponse(booking))
}

// UpdatePayment - PATCH /bookings/{bookingID}/payment.
func (h *BookingHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdatePayment"})

	bookingID, ok := bookingIDParam(w, r, logger)
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if err := decodeValidated(w, r, contracts.PaymentStatusV1, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.updatePaymentUC.Execute(r.Context(), bookingID, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeDomainError(w, logger, err, "Failed to update payment status")
		return
	}
	RespondWithJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteBooking"})

	bookingID, ok := bookingIDParam(w, r, logger)
	if !ok {
		return
	}
	if err := h.deleteUC.Execute(r.Context(), bookingID); err != nil {
		writeDomainError(w, logger, err, "Failed to delete booking")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sweep - POST /bookings/sweep: внеочередной проход по статусам.
func (h *BookingHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Sweep"})

	result, err := h.sweepUC.Execute(r.Context(), time.Now())
	if err != nil {
		var sweepErr *domain.SweepError
		if errors.As(err, &sweepErr) {
			logger.Error("Sweep finished with failures", err, nil)
			RespondWithJSON(w, http.StatusInternalServerError, SweepResponse{Result: result, Error: err.Error()})
			return
		}
		writeDomainError(w, logger, err, "Failed to sweep booking statuses")
		return
	}
	RespondWithJSON(w, http.StatusOK, SweepResponse{Result: result})
}

// Subscribe - GET /bookings/subscribe[?property_id=]: поток событий SSE.
func (h *BookingHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Subscribe"})

	propertyID, err := parseOptionalUUID(r.URL.Query().Get("property_id"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'property_id' format")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	key := notifier.AllProperties
	if propertyID != nil {
		key = propertyID.String()
	}
	subLogger := logger.WithFields(port.Fields{"subscription": key})
	subLogger.Info("New client subscribing to booking events", nil)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := h.notifier.AddClient(key)
	defer h.notifier.RemoveClient(key, events)

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case data := <-events:
			if _, err := w.Write(data); err != nil {
				subLogger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			// строки с двоеточием в начале - комментарии SSE
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			subLogger.Info("SSE client disconnected", nil)
			return
		case <-h.notifier.Done():
			subLogger.Info("Notifier closed, ending SSE stream", nil)
			return
		}
	}
}
