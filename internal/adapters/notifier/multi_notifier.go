package notifier

import (
	"context"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

// MultiNotifier передает событие каждому вложенному нотификатору по очереди.
type MultiNotifier struct {
	notifiers []port.NotifierPort
}

func NewMultiNotifier(notifiers ...port.NotifierPort) *MultiNotifier {
	active := make([]port.NotifierPort, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &MultiNotifier{notifiers: active}
}

func (m *MultiNotifier) Notify(ctx context.Context, event port.BookingEvent) {
	for _, n := range m.notifiers {
		n.Notify(ctx, event)
	}
}
