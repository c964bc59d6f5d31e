package rabbitmq_consumer

import amqp "github.com/rabbitmq/amqp091-go"

type failureAction int

const (
	actionDrop       failureAction = iota // nack без повтора
	actionRetry                           // nack, сообщение уйдет в retry-обменник
	actionDeadLetter                      // опубликовать в финальный DLX и подтвердить
)

// deathCount - сколько раз сообщение уже отклонялось из очереди queue (заголовок x-death).
func deathCount(headers amqp.Table, queue string) int64 {
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if q, _ := tbl["queue"].(string); q != queue {
			continue
		}
		if count, ok := tbl["count"].(int64); ok {
			return count
		}
	}
	return 0
}

func decideOnFailure(cfg ConsumerConfig, d amqp.Delivery, queue string) failureAction {
	if !cfg.EnableRetryMechanism {
		return actionDrop
	}
	if deathCount(d.Headers, queue) < int64(cfg.MaxRetries) {
		return actionRetry
	}
	return actionDeadLetter
}
