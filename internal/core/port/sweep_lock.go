package port

import "context"

// SweepLockPort - блокировка прохода по бронированиям между экземплярами сервиса.
// ok=false означает, что блокировку держит кто-то другой.
type SweepLockPort interface {
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}
