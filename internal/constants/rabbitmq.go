package constants

// Обменник событий бронирований, ключ маршрутизации - booking.<тип события>
const (
	BookingEventsExchange     = "booking_events_exchange"
	BookingEventsExchangeType = "topic"
	BookingEventsRoutingKey   = "booking.%s"
)

// Команды на внеочередной проход по статусам
const (
	QueueBookingSweep       = "booking_sweep_queue"
	ConsumerTagBookingSweep = "booking-sweep-command-consumer"
)

const (
	BookingSweepRetryExchange = QueueBookingSweep + "_retry_ex"
	BookingSweepRetryQueue    = QueueBookingSweep + "_retry_wait_10s"
	RetryTTL                  = 10000 // мс
	MaxRetries                = 3
)

const (
	FinalDLXExchange   = "booking_final_dlx"
	FinalDLQ           = "booking_final_dlq"
	FinalDLQRoutingKey = "booking.dlq.key"
)
