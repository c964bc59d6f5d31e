package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port/usecases_port"
)

// cronLogger пишет внутренние сообщения cron в LoggerPort.
type cronLogger struct {
	logger port.LoggerPort
}

func (l cronLogger) fields(keysAndValues []interface{}) port.Fields {
	fields := make(port.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, l.fields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, err, l.fields(keysAndValues))
}

// SweepScheduler запускает проход по статусам по расписанию (`@every 5m`, `*/10 * * * *`).
type SweepScheduler struct {
	cron    *cron.Cron
	spec    string
	useCase usecases_port.SweepBookingStatusesUseCasePort
	logger  port.LoggerPort
	now     func() time.Time

	mu      sync.Mutex
	baseCtx context.Context
}

func NewSweepScheduler(spec string, uc usecases_port.SweepBookingStatusesUseCasePort, logger port.LoggerPort) (*SweepScheduler, error) {
	if uc == nil {
		return nil, fmt.Errorf("scheduler: sweep use case is required")
	}
	s := &SweepScheduler{
		spec:    spec,
		useCase: uc,
		logger:  logger.WithFields(port.Fields{"component": "SweepScheduler", "schedule": spec}),
		now:     time.Now,
		baseCtx: context.Background(),
	}

	cl := cronLogger{logger: s.logger}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *SweepScheduler) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

func (s *SweepScheduler) runOnce() {
	traceID := uuid.New().String()
	runLogger := s.logger.WithFields(port.Fields{"trace_id": traceID})
	ctx := contextkeys.ContextWithTraceID(s.runContext(), traceID)
	ctx = contextkeys.ContextWithLogger(ctx, runLogger)

	result, err := s.useCase.Execute(ctx, s.now())
	switch {
	case errors.Is(err, domain.ErrSweepInProgress):
		runLogger.Info("Scheduled sweep skipped, another one is running", nil)
	case err != nil:
		runLogger.Error("Scheduled sweep failed", err, port.Fields{"updated": result.Updated, "failed": result.Failed})
	default:
		runLogger.Info("Scheduled sweep finished", port.Fields{"scanned": result.Scanned, "updated": result.Updated})
	}
}

// Start блокируется до отмены ctx и дожидается текущего прохода.
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	s.logger.Info("Sweep scheduler started", nil)
	s.cron.Start()
	<-ctx.Done()
	return s.Close()
}

// Close останавливает расписание и ждет завершения запущенного прохода.
func (s *SweepScheduler) Close() error {
	<-s.cron.Stop().Done()
	s.logger.Info("Sweep scheduler stopped", nil)
	return nil
}
