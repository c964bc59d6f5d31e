package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает маршруты /api/v1 и служебный /healthz.
func NewRouter(bookings *BookingHandler, recommendations *RecommendationHandler, baseLogger port.LoggerPort, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID"},
			ExposedHeaders:   []string{"X-Trace-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommendations", recommendations.Recommend)
		r.Get("/clients/{clientID}/recommendations", recommendations.RecommendForClient)
		r.Post("/scores", recommendations.Score)
		r.Get("/properties/{propertyID}/conflicts", recommendations.CheckConflicts)
		r.Get("/properties/{propertyID}/status", recommendations.PropertyStatus)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookings.CreateBooking)
			r.Get("/", bookings.ListBookings)
			r.Get("/subscribe", bookings.Subscribe)
			r.Post("/sweep", bookings.Sweep)

			r.Get("/{bookingID}", bookings.GetBooking)
			r.Delete("/{bookingID}", bookings.DeleteBooking)
			r.Put("/{bookingID}/dates", bookings.UpdateDates)
			r.Patch("/{bookingID}/status", bookings.UpdateStatus)
			r.Patch("/{bookingID}/payment", bookings.UpdatePayment)
			r.Post("/{bookingID}/cancel", bookings.CancelBooking)
		})
	})

	return r
}

func NewServer(listenPort string, handler http.Handler, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + listenPort,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger.WithFields(port.Fields{"component": "RESTServer"}),
	}
}

// Start блокируется до остановки сервера.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server", nil)
	return s.httpServer.Shutdown(ctx)
}
