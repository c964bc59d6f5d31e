package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

// AllProperties - ключ подписки на события всех объектов.
const AllProperties = ""

type clientChannel chan []byte

type eventWithContext struct {
	ctx   context.Context
	event port.BookingEvent
}

// SSENotifier рассылает события бронирований подключенным SSE-клиентам.
// Клиент подписывается на один объект или на все сразу.
type SSENotifier struct {
	// ключ - ID объекта или AllProperties, значение - открытые соединения
	clients map[string][]clientChannel
	mu      sync.RWMutex

	eventChan chan eventWithContext
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	logger port.LoggerPort
}

func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients:   make(map[string][]clientChannel),
		eventChan: make(chan eventWithContext, 100),
		done:      make(chan struct{}),
		logger:    baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}

	n.wg.Add(1)
	go n.dispatcher()

	return n
}

func (n *SSENotifier) dispatcher() {
	defer n.wg.Done()
	n.logger.Debug("Notifier dispatcher started", nil)
	for {
		select {
		case <-n.done:
			n.logger.Debug("Notifier dispatcher stopped", nil)
			return
		case pkg := <-n.eventChan:
			n.dispatch(pkg)
		}
	}
}

func (n *SSENotifier) dispatch(pkg eventWithContext) {
	event := pkg.event
	propertyID := event.Data.PropertyID.String()
	eventLogger := contextkeys.LoggerFromContext(pkg.ctx).WithFields(port.Fields{
		"component":   "SSENotifier.dispatcher",
		"event_type":  event.Type,
		"booking_id":  event.Data.ID.String(),
		"property_id": propertyID,
	})

	payload, err := json.Marshal(event.Data)
	if err != nil {
		eventLogger.Error("Failed to marshal event", err, nil)
		return
	}
	message := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

	n.mu.RLock()
	defer n.mu.RUnlock()

	delivered := 0
	for _, key := range []string{propertyID, AllProperties} {
		for _, ch := range n.clients[key] {
			select {
			case ch <- message:
				delivered++
			default:
				eventLogger.Warn("Client channel is full, skipping", port.Fields{"subscription": key})
			}
		}
	}
	eventLogger.Debug("Event dispatched", port.Fields{"delivered": delivered})
}

// Notify не блокирует вызывающего: при переполненном буфере событие теряется.
func (n *SSENotifier) Notify(ctx context.Context, event port.BookingEvent) {
	select {
	case n.eventChan <- eventWithContext{ctx: ctx, event: event}:
	case <-n.done:
	default:
		contextkeys.LoggerFromContext(ctx).Warn("SSE event buffer is full, event dropped", port.Fields{
			"component":  "SSENotifier",
			"event_type": event.Type,
			"booking_id": event.Data.ID.String(),
		})
	}
}

// AddClient регистрирует новое соединение. propertyID == AllProperties - все события.
func (n *SSENotifier) AddClient(propertyID string) clientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(clientChannel, 100)
	n.clients[propertyID] = append(n.clients[propertyID], ch)

	n.logger.Info("Client connected", port.Fields{
		"subscription":      propertyID,
		"total_connections": len(n.clients[propertyID]),
	})
	return ch
}

func (n *SSENotifier) RemoveClient(propertyID string, ch clientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels, found := n.clients[propertyID]
	if !found {
		return
	}
	remaining := channels[:0]
	for _, c := range channels {
		if c != ch {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		delete(n.clients, propertyID)
		n.logger.Debug("Last client disconnected", port.Fields{"subscription": propertyID})
		return
	}
	n.clients[propertyID] = remaining
	n.logger.Info("Client disconnected", port.Fields{"subscription": propertyID, "remaining_connections": len(remaining)})
}

// Close останавливает диспетчер. Повторный вызов безопасен.
func (n *SSENotifier) Close() error {
	n.closeOnce.Do(func() { close(n.done) })
	n.wg.Wait()
	return nil
}

// Done закрывается вместе с нотификатором, открытые потоки по нему завершаются.
func (n *SSENotifier) Done() <-chan struct{} {
	return n.done
}
