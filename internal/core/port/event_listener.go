package port

import "context"

// EventListenerPort - фоновый слушатель (очередь, планировщик), живет до отмены ctx.
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
