package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contracts"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port/usecases_port"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_common"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/pkg/rabbitmq/rabbitmq_consumer"
)

// SweepCommandDTO - тело сообщения в booking_sweep_queue, все поля необязательны.
type SweepCommandDTO struct {
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
}

// SweepCommandsConsumer запускает проход по статусам по команде из очереди.
type SweepCommandsConsumer struct {
	consumer rabbitmq_consumer.Consumer
	useCase  usecases_port.SweepBookingStatusesUseCasePort
	logger   port.LoggerPort
	now      func() time.Time

	baseCtx context.Context
}

func NewSweepCommandsConsumer(
	cfg rabbitmq_consumer.ConsumerConfig,
	uc usecases_port.SweepBookingStatusesUseCasePort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*SweepCommandsConsumer, error) {
	adapter := newSweepCommandsConsumer(uc, logger)

	cfg.Logger = NewPkgLoggerBridge(logger.WithFields(port.Fields{
		"component":    "rabbitmq_distributing_consumer",
		"consumer_tag": cfg.ConsumerTag,
	}))
	consumer, err := rabbitmq_consumer.NewDistributingConsumer(cfg, adapter.handleMessage, connManager)
	if err != nil {
		return nil, fmt.Errorf("sweep commands consumer: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func newSweepCommandsConsumer(uc usecases_port.SweepBookingStatusesUseCasePort, logger port.LoggerPort) *SweepCommandsConsumer {
	return &SweepCommandsConsumer{
		useCase: uc,
		logger:  logger.WithFields(port.Fields{"component": "SweepCommandsConsumer"}),
		now:     time.Now,
		baseCtx: context.Background(),
	}
}

// handleMessage: nil - подтвердить, ошибка - отправить на повтор.
func (a *SweepCommandsConsumer) handleMessage(d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}
	msgLogger := a.logger.WithFields(port.Fields{"trace_id": traceID, "delivery_tag": d.DeliveryTag})

	body := d.Body
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := contracts.Validate(contracts.SweepCommandV1, body); err != nil {
		msgLogger.Error("Invalid sweep command, dropping message", err, nil)
		return nil
	}
	var cmd SweepCommandDTO
	if err := json.Unmarshal(body, &cmd); err != nil {
		msgLogger.Error("Failed to unmarshal sweep command, dropping message", err, nil)
		return nil
	}

	fields := port.Fields{"requested_by": cmd.RequestedBy}
	if cmd.RequestedAt != nil {
		fields["requested_at"] = cmd.RequestedAt.UTC()
	}
	handlerLogger := msgLogger.WithFields(fields)

	ctx := contextkeys.ContextWithTraceID(a.baseCtx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, handlerLogger)

	handlerLogger.Info("Sweep command received", nil)
	result, err := a.useCase.Execute(ctx, a.now())
	switch {
	case errors.Is(err, domain.ErrSweepInProgress):
		handlerLogger.Info("Sweep already running, command acknowledged", nil)
		return nil
	case err != nil:
		handlerLogger.Error("Sweep command failed, message will be retried", err, port.Fields{"failed": result.Failed})
		return err
	}

	handlerLogger.Info("Sweep command processed", port.Fields{"scanned": result.Scanned, "updated": result.Updated})
	return nil
}

// Start блокируется до отмены ctx, отмена прерывает и начатый проход.
func (a *SweepCommandsConsumer) Start(ctx context.Context) error {
	a.baseCtx = ctx
	return a.consumer.StartConsuming(ctx)
}

func (a *SweepCommandsConsumer) Close() error { return a.consumer.Close() }
