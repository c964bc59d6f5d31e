package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/adapters/notifier"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/matching"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port/usecases_port"
)

type stubCreate struct {
	input usecases_port.CreateBookingInput
	err   error
}

func (s *stubCreate) Execute(_ context.Context, in usecases_port.CreateBookingInput) (*domain.Booking, error) {
	s.input = in
	if s.err != nil {
		return nil, s.err
	}
	b, _ := domain.NewBooking(in.PropertyID, in.ClientID, in.StartDate, in.EndDate, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	return b, nil
}

type stubGet struct{}

func (stubGet) Execute(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	if id == uuid.Nil {
		return nil, domain.ErrBookingNotFound
	}
	return &domain.Booking{ID: id, Status: domain.BookingPending, PaymentStatus: domain.PaymentUnpaid}, nil
}

type stubList struct{ filter port.BookingFilter }

func (s *stubList) Execute(_ context.Context, f port.BookingFilter) (port.BookingPage, error) {
	s.filter = f
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	return port.BookingPage{Bookings: []domain.Booking{{ID: uuid.New()}}, Total: 7, Limit: limit, Offset: f.Offset}, nil
}

type stubStatus struct {
	status domain.BookingStatus
	err    error
}

func (s *stubStatus) Execute(_ context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	s.status = status
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Booking{ID: id, Status: status}, nil
}

type stubSweep struct {
	result domain.SweepResult
	err    error
}

func (s stubSweep) Execute(context.Context, time.Time) (domain.SweepResult, error) {
	return s.result, s.err
}

type stubConflict struct {
	conflict bool
	err      error
	exclude  *uuid.UUID
}

func (s *stubConflict) Execute(_ context.Context, _ uuid.UUID, from, to time.Time, excludeID *uuid.UUID) (bool, error) {
	s.exclude = excludeID
	if s.err != nil {
		return false, s.err
	}
	if err := domain.ValidateDateRange(from, to); err != nil {
		return false, err
	}
	return s.conflict, nil
}

type stubRecommend struct{ scored []domain.ScoredProperty }

func (s stubRecommend) Execute(context.Context, domain.Client) ([]domain.ScoredProperty, error) {
	return s.scored, nil
}

func (s stubRecommend) ExecuteForClientID(_ context.Context, id uuid.UUID) ([]domain.ScoredProperty, error) {
	if id == uuid.Nil {
		return nil, domain.ErrClientNotFound
	}
	return s.scored, nil
}

type stubPropertyStatus struct{}

func (stubPropertyStatus) Execute(context.Context, uuid.UUID) (domain.PropertyStatus, error) {
	return domain.PropertyReserved, nil
}

type fixture struct {
	create   *stubCreate
	list     *stubList
	status   *stubStatus
	conflict *stubConflict
	sweep    *stubSweep
	sse      *notifier.SSENotifier
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		create:   &stubCreate{},
		list:     &stubList{},
		status:   &stubStatus{},
		conflict: &stubConflict{},
		sweep:    &stubSweep{},
		sse:      notifier.NewSSENotifier(contextkeys.NoopLogger()),
	}
	t.Cleanup(func() { _ = f.sse.Close() })

	scored := []domain.ScoredProperty{
		{Property: domain.Property{ID: uuid.New()}, Score: 0.9},
		{Property: domain.Property{ID: uuid.New()}, Score: 0.7},
		{Property: domain.Property{ID: uuid.New()}, Score: 0.5},
	}
	bookings := NewBookingHandler(BookingUseCases{
		Create:       f.create,
		Get:          stubGet{},
		List:         f.list,
		UpdateStatus: f.status,
		Sweep:        f.sweep,
	}, f.sse)
	recommendations := NewRecommendationHandler(stubRecommend{scored: scored}, f.conflict, stubPropertyStatus{}, matching.NewEngine(matching.DefaultWeights()))
	f.router = NewRouter(bookings, recommendations, contextkeys.NoopLogger(), []string{"http://localhost:5173"})
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const validBooking = `{"property_id":"6f1c1a52-6b1e-4d7f-9d55-0a4c3c0c7e11","client_id":"0b6d5a1e-3f9a-4c5e-8d2b-7f1e2a3b4c5d","start_date":"2025-03-10","end_date":"2025-03-20","amount":500}`

func TestCreateBookingHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/api/v1/bookings", validBooking)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		resp := decode[BookingResponse](t, rec)
		assert.Equal(t, "2025-03-10", resp.StartDate)
		assert.Equal(t, "2025-03-20", resp.EndDate)
		assert.Equal(t, domain.BookingPending, resp.Status)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), f.create.input.StartDate)
		require.NotNil(t, f.create.input.Amount)
		assert.Equal(t, 500.0, *f.create.input.Amount)
	})

	t.Run("conflict", func(t *testing.T) {
		f := newFixture(t)
		f.create.err = domain.ErrBookingConflict
		rec := f.do(http.MethodPost, "/api/v1/bookings", validBooking)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "already booked")
	})

	t.Run("property missing", func(t *testing.T) {
		f := newFixture(t)
		f.create.err = domain.ErrPropertyNotFound
		rec := f.do(http.MethodPost, "/api/v1/bookings", validBooking)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("schema violation", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodPost, "/api/v1/bookings", `{"property_id":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)
		body := strings.Replace(validBooking, `"amount":500`, `"status":"archived"`, 1)
		rec := f.do(http.MethodPost, "/api/v1/bookings", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("internal failure", func(t *testing.T) {
		f := newFixture(t)
		f.create.err = errors.New("db down")
		rec := f.do(http.MethodPost, "/api/v1/bookings", validBooking)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}

func TestBookingRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/bookings/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/bookings/"+uuid.Nil.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	propertyID := uuid.New()
	rec = f.do(http.MethodGet, "/api/v1/bookings?property_id="+propertyID.String()+"&status=confirmed&limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[PaginatedBookingsResponse](t, rec)
	assert.Equal(t, int64(7), page.Total)
	require.NotNil(t, f.list.filter.PropertyID)
	assert.Equal(t, propertyID, *f.list.filter.PropertyID)
	require.NotNil(t, f.list.filter.Status)
	assert.Equal(t, domain.BookingConfirmed, *f.list.filter.Status)
	assert.Equal(t, 5, f.list.filter.Limit)
	assert.Equal(t, 10, f.list.filter.Offset)
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 10, page.Offset)

	rec = f.do(http.MethodGet, "/api/v1/bookings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[PaginatedBookingsResponse](t, rec)
	assert.Equal(t, 0, f.list.filter.Limit)
	assert.Equal(t, 50, page.Limit, "response reports the limit actually applied")

	rec = f.do(http.MethodPost, "/api/v1/bookings/"+uuid.NewString()+"/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.BookingCancelled, f.status.status)

	rec = f.do(http.MethodPatch, "/api/v1/bookings/"+uuid.NewString()+"/status", `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.BookingStatus("confirmed"), f.status.status)

	f.status.err = domain.ErrInvalidStatus
	rec = f.do(http.MethodPatch, "/api/v1/bookings/"+uuid.NewString()+"/status", `{"status":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckConflictsHandler(t *testing.T) {
	f := newFixture(t)
	f.conflict.conflict = true
	propertyID := uuid.NewString()
	excludeID := uuid.New()

	rec := f.do(http.MethodGet, "/api/v1/properties/"+propertyID+"/conflicts?from=2025-03-15&to=2025-03-25&exclude_id="+excludeID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ConflictResponse](t, rec)
	assert.True(t, resp.Conflict)
	require.NotNil(t, f.conflict.exclude)
	assert.Equal(t, excludeID, *f.conflict.exclude)

	rec = f.do(http.MethodGet, "/api/v1/properties/"+propertyID+"/conflicts?from=2025-03-25&to=2025-03-15", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/properties/"+propertyID+"/conflicts?from=tomorrow&to=2025-03-15", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendationHandlers(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/recommendations?limit=2", `{"rental_type":"длительная"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recs := decode[[]RecommendationResponse](t, rec)
	require.Len(t, recs, 2)
	assert.Equal(t, 0.9, recs[0].Score)

	rec = f.do(http.MethodPost, "/api/v1/recommendations", `{"desired_area":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/clients/"+uuid.Nil.String()+"/recommendations", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/properties/"+uuid.NewString()+"/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PropertyReserved, decode[PropertyStatusResponse](t, rec).Status)
}

func TestScoreHandler(t *testing.T) {
	f := newFixture(t)
	body := `{
		"client": {"rental_type": "длительная", "has_pets": true},
		"property": {"property_type": "Квартира", "monthly_rent": 1000, "pets_allowed": false, "children_allowed": true, "smoking_allowed": true},
		"explain": true
	}`
	rec := f.do(http.MethodPost, "/api/v1/scores", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ScoreResponse](t, rec)
	assert.Equal(t, 0.0, resp.Score)
	assert.Equal(t, matching.ReasonPets, resp.Reason)

	body = strings.Replace(body, `"pets_allowed": false`, `"pets_allowed": true`, 1)
	rec = f.do(http.MethodPost, "/api/v1/scores", body)
	resp = decode[ScoreResponse](t, rec)
	assert.Greater(t, resp.Score, 0.0)
	assert.NotEmpty(t, resp.Criteria)
}

func TestSweepHandler(t *testing.T) {
	f := newFixture(t)

	f.sweep.result = domain.SweepResult{Scanned: 3, Updated: 2}
	rec := f.do(http.MethodPost, "/api/v1/bookings/sweep", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[SweepResponse](t, rec).Result.Updated)

	f.sweep.err = domain.ErrSweepInProgress
	rec = f.do(http.MethodPost, "/api/v1/bookings/sweep", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.sweep.err = &domain.SweepError{Failures: []domain.SweepFailure{{BookingID: uuid.New(), Err: errors.New("x")}}}
	rec = f.do(http.MethodPost, "/api/v1/bookings/sweep", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[SweepResponse](t, rec)
	assert.Equal(t, 3, resp.Result.Scanned)
	assert.NotEmpty(t, resp.Error)
}

func TestTraceIDAndCORS(t *testing.T) {
	f := newFixture(t)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Trace-ID", incoming)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, incoming, rec.Header().Get("X-Trace-ID"))
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Trace-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	_, err := uuid.Parse(rec.Header().Get("X-Trace-ID"))
	assert.NoError(t, err)
}

func TestSubscribeStreamsEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	propertyID := uuid.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/bookings/subscribe?property_id="+propertyID.String(), nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// клиент зарегистрирован до отправки "connected"
	f.sse.Notify(context.Background(), port.BookingEvent{
		Type: port.EventBookingCreated,
		Data: domain.Booking{ID: uuid.New(), PropertyID: propertyID},
	})

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: booking_created") {
			break
		}
	}
}
