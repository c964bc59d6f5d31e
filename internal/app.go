package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	goredis "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	logger_adapter "github.com/Inferno271/RealEstateAssistantPro-sub003/internal/adapters/logger"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/adapters/notifier"
	postgres_adapter "github.com/Inferno271/RealEstateAssistantPro-sub003/internal/adapters/postgres"
	rabbitmq_adapter "github.com/Inferno271/RealEstateAssistantPro-sub003/internal/adapters/rabbitmq"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/adapters/redislock"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/adapters/rest"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/adapters/scheduler"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/configs"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/constants"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/matching"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/usecase"
	fluentlogger "github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/fluent_logger"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/postgres"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_common"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_consumer"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_producer"
	redisclient "github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/redis"
)

// Mode определяет, какие компоненты поднимает NewApp.
type Mode int

const (
	ModeMigrate Mode = iota // логгер и пул БД
	ModeSweep               // + блокировка прохода и публикация событий
	ModeServe               // + REST, SSE, слушатели очередей и расписание
)

type namedListener struct {
	name     string
	listener port.EventListenerPort
}

type App struct {
	config *configs.AppConfig
	mode   Mode

	dbPool          *pgxpool.Pool
	redisClient     *goredis.Client
	connManager     *rabbitmq_common.ConnectionManager
	eventsPublisher *rabbitmq_producer.Publisher
	sseNotifier     *notifier.SSENotifier
	apiServer       *rest.Server
	listeners       []namedListener

	sweepUC *usecase.SweepBookingStatusesUseCase

	baseLogger   port.LoggerPort
	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp(appConfig *configs.AppConfig, mode Mode) (*App, error) {
	baseLogger, fluentClient, err := newLogger(appConfig)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:       appConfig,
		mode:         mode,
		baseLogger:   baseLogger,
		logger:       baseLogger.WithFields(port.Fields{"component": "app"}),
		fluentClient: fluentClient,
	}

	if err := a.init(); err != nil {
		a.logger.Error("Application initialization failed", err, nil)
		a.Close()
		return nil, err
	}
	return a, nil
}

func newLogger(appConfig *configs.AppConfig) (port.LoggerPort, *fluent.Fluent, error) {
	activeLoggers := []port.LoggerPort{
		logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
			Level:    parseLogLevel(appConfig.StdoutLogger.Level),
			IsJSON:   appConfig.StdoutLogger.JSON,
			UseColor: !appConfig.StdoutLogger.JSON,
		}),
	}

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		var err error
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{Host: appConfig.FluentBit.Host, Port: appConfig.FluentBit.Port})
		if err != nil {
			activeLoggers[0].Error("Failed to create fluentbit client", err, nil)
			return nil, nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, appConfig.AppName, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			_ = fluentClient.Close()
			return nil, nil, fmt.Errorf("failed to create fluentbit adapter: %w", err)
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		if fluentClient != nil {
			_ = fluentClient.Close()
		}
		return nil, nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})
	return baseLogger, fluentClient, nil
}

func (a *App) init() error {
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	a.dbPool, err = postgres.NewClient(initCtx, postgres.Config{DatabaseURL: a.config.Database.URL})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.logger.Info("Successfully connected to PostgreSQL pool", nil)

	if a.mode == ModeMigrate {
		return nil
	}

	bookingRepo, err := postgres_adapter.NewPostgresBookingRepository(a.dbPool)
	if err != nil {
		return fmt.Errorf("failed to create booking repository: %w", err)
	}

	var sweepLock port.SweepLockPort
	if a.config.Redis.Addr != "" {
		a.redisClient, err = redisclient.NewClient(initCtx, redisclient.Config{
			Addr:     a.config.Redis.Addr,
			Password: a.config.Redis.Password,
			DB:       a.config.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		lock, err := redislock.NewSweepLock(a.redisClient, redislock.DefaultKey, a.config.Sweep.LockTTL)
		if err != nil {
			return err
		}
		sweepLock = lock
		a.logger.Info("Redis sweep lock enabled", port.Fields{"ttl": a.config.Sweep.LockTTL.String()})
	}

	notifiers := []port.NotifierPort{}
	if a.config.RabbitMQ.URL != "" {
		bridge := rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
		a.connManager, err = rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: a.config.RabbitMQ.URL}, bridge)
		if err != nil {
			return fmt.Errorf("failed to create connection manager: %w", err)
		}
		a.eventsPublisher, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: a.config.RabbitMQ.URL},
			ExchangeName:             constants.BookingEventsExchange,
			ExchangeType:             constants.BookingEventsExchangeType,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "booking_events_producer"})),
		}, a.connManager)
		if err != nil {
			return fmt.Errorf("failed to create booking events producer: %w", err)
		}
		eventsAdapter, err := rabbitmq_adapter.NewBookingEventsPublisher(a.eventsPublisher)
		if err != nil {
			return err
		}
		notifiers = append(notifiers, eventsAdapter)
		a.logger.Info("RabbitMQ booking events publisher initialized", nil)
	}

	if a.mode == ModeServe {
		a.sseNotifier = notifier.NewSSENotifier(a.baseLogger)
		notifiers = append(notifiers, a.sseNotifier)
	}
	events := notifier.NewMultiNotifier(notifiers...)

	a.sweepUC = usecase.NewSweepBookingStatusesUseCase(bookingRepo, events, sweepLock)
	if a.mode == ModeSweep {
		return nil
	}

	return a.initServe(bookingRepo, events)
}

func (a *App) initServe(bookingRepo *postgres_adapter.PostgresBookingRepository, events port.NotifierPort) error {
	propertyRepo, err := postgres_adapter.NewPostgresPropertyRepository(a.dbPool)
	if err != nil {
		return fmt.Errorf("failed to create property repository: %w", err)
	}
	clientRepo, err := postgres_adapter.NewPostgresClientRepository(a.dbPool)
	if err != nil {
		return fmt.Errorf("failed to create client repository: %w", err)
	}

	weights := matching.DefaultWeights()
	if a.config.Matching.WeightsPath != "" {
		weights, err = matching.LoadWeightsFromFile(a.config.Matching.WeightsPath)
		if err != nil {
			return fmt.Errorf("failed to load matching weights: %w", err)
		}
		a.logger.Info("Matching weights loaded", port.Fields{"path": a.config.Matching.WeightsPath})
	}
	engine := matching.NewEngine(weights)

	conflictUC := usecase.NewCheckBookingConflictUseCase(bookingRepo)
	bookingHandler := rest.NewBookingHandler(rest.BookingUseCases{
		Create:        usecase.NewCreateBookingUseCase(bookingRepo, propertyRepo, conflictUC, events),
		Get:           usecase.NewGetBookingByIdUseCase(bookingRepo),
		List:          usecase.NewGetBookingsListUseCase(bookingRepo),
		UpdateDates:   usecase.NewUpdateBookingDatesUseCase(bookingRepo, conflictUC, events),
		UpdateStatus:  usecase.NewUpdateBookingStatusUseCase(bookingRepo, events),
		UpdatePayment: usecase.NewUpdatePaymentStatusUseCase(bookingRepo, events),
		Delete:        usecase.NewDeleteBookingUseCase(bookingRepo, events),
		Sweep:         a.sweepUC,
	}, a.sseNotifier)
	recommendationHandler := rest.NewRecommendationHandler(
		usecase.NewRecommendPropertiesUseCase(propertyRepo, clientRepo, engine),
		conflictUC,
		usecase.NewGetPropertyStatusUseCase(propertyRepo, bookingRepo),
		engine,
	)
	a.logger.Info("All use cases initialized", nil)

	router := rest.NewRouter(bookingHandler, recommendationHandler, a.baseLogger, a.config.Rest.AllowedOrigins)
	a.apiServer = rest.NewServer(a.config.Rest.PORT, router, a.baseLogger)

	if a.connManager != nil {
		sweepConsumer, err := rabbitmq_adapter.NewSweepCommandsConsumer(rabbitmq_consumer.ConsumerConfig{
			Config:        rabbitmq_common.Config{URL: a.config.RabbitMQ.URL},
			QueueName:     constants.QueueBookingSweep,
			DeclareQueue:  true,
			DurableQueue:  true,
			PrefetchCount: 1,
			ConsumerTag:   constants.ConsumerTagBookingSweep,

			EnableRetryMechanism: true,
			RetryExchange:        constants.BookingSweepRetryExchange,
			RetryQueue:           constants.BookingSweepRetryQueue,
			RetryTTL:             constants.RetryTTL,
			FinalDLXExchange:     constants.FinalDLXExchange,
			FinalDLQ:             constants.FinalDLQ,
			FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
			MaxRetries:           constants.MaxRetries,
		}, a.sweepUC, a.baseLogger, a.connManager)
		if err != nil {
			return fmt.Errorf("failed to create sweep commands consumer: %w", err)
		}
		a.listeners = append(a.listeners, namedListener{name: "Sweep Commands Listener", listener: sweepConsumer})
	}

	if a.config.Sweep.Cron != "" {
		sweepScheduler, err := scheduler.NewSweepScheduler(a.config.Sweep.Cron, a.sweepUC, a.baseLogger)
		if err != nil {
			return err
		}
		a.listeners = append(a.listeners, namedListener{name: "Sweep Scheduler", listener: sweepScheduler})
	}

	a.logger.Info("Application configured", port.Fields{"listeners": len(a.listeners)})
	return nil
}

// Run запускает HTTP-сервер и слушателей и блокируется до сигнала ОС или
// ошибки одного из компонентов.
func (a *App) Run() error {
	if a.mode != ModeServe {
		return fmt.Errorf("application was not initialized for serving")
	}
	defer a.Close()

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	errorsCh := make(chan error, len(a.listeners)+1)

	go func() {
		if err := a.apiServer.Start(); err != nil {
			errorsCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	for _, nl := range a.listeners {
		wg.Add(1)
		go func(nl namedListener) {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener": nl.name})
			listenerLogger.Info("Starting listener", nil)
			if err := nl.listener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				errorsCh <- fmt.Errorf("%s error: %w", nl.name, err)
				return
			}
			listenerLogger.Info("Listener stopped gracefully", nil)
		}(nl)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	a.logger.Info("Shutdown sequence initiated", nil)
	cancelApp()

	// SSE-потоки не завершатся сами, Shutdown ждал бы их до таймаута
	_ = a.sseNotifier.Close()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := a.apiServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}

	a.logger.Info("Waiting for background processes to finish", nil)
	wg.Wait()

	for _, nl := range a.listeners {
		if err := nl.listener.Close(); err != nil {
			a.logger.Error("Error closing listener", err, port.Fields{"listener": nl.name})
		}
	}
	return runErr
}

// RunSweepOnce выполняет один проход по статусам на текущий момент.
func (a *App) RunSweepOnce(ctx context.Context) (domain.SweepResult, error) {
	if a.sweepUC == nil {
		return domain.SweepResult{}, fmt.Errorf("application was not initialized for sweeping")
	}
	ctx = contextkeys.ContextWithLogger(ctx, a.baseLogger)
	result, err := a.sweepUC.Execute(ctx, time.Now())
	var sweepErr *domain.SweepError
	switch {
	case errors.As(err, &sweepErr):
		a.logger.Error("Sweep finished with failures", err, port.Fields{"failed": result.Failed})
	case err != nil:
		a.logger.Error("Sweep failed", err, nil)
	default:
		a.logger.Info("Sweep finished", port.Fields{"scanned": result.Scanned, "updated": result.Updated})
	}
	return result, err
}

// Migrate применяет встроенные SQL-миграции.
func (a *App) Migrate(ctx context.Context) error {
	ctx = contextkeys.ContextWithLogger(ctx, a.baseLogger)
	if err := postgres_adapter.Migrate(ctx, a.dbPool); err != nil {
		a.logger.Error("Migration failed", err, nil)
		return err
	}
	a.logger.Info("Migrations applied", nil)
	return nil
}

// Close освобождает ресурсы в порядке, обратном созданию.
func (a *App) Close() {
	if a.sseNotifier != nil {
		_ = a.sseNotifier.Close()
	}
	if a.eventsPublisher != nil {
		if err := a.eventsPublisher.Close(); err != nil {
			a.logger.Error("Error closing booking events producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Error closing Redis client", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed", nil)
	}

	a.logger.Info("Application shut down", nil)
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
