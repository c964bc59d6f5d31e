package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

// SweepBookingStatusesUseCase проходит по всем бронированиям и применяет
// автоматические переходы статусов на момент now.
type SweepBookingStatusesUseCase struct {
	store    port.BookingStorePort
	notifier port.NotifierPort
	lock     port.SweepLockPort

	// running не дает двум проходам внутри одного процесса идти одновременно
	running sync.Mutex
}

// NewSweepBookingStatusesUseCase - lock может быть nil, тогда защищает только
// блокировка внутри процесса.
func NewSweepBookingStatusesUseCase(store port.BookingStorePort, notifier port.NotifierPort, lock port.SweepLockPort) *SweepBookingStatusesUseCase {
	return &SweepBookingStatusesUseCase{store: store, notifier: notifier, lock: lock}
}

func (uc *SweepBookingStatusesUseCase) Execute(ctx context.Context, now time.Time) (domain.SweepResult, error) {
	now = now.UTC()
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "SweepBookingStatuses", "now": now})

	result := domain.SweepResult{Changes: make(map[domain.BookingStatus]int)}

	if !uc.running.TryLock() {
		ucLogger.Warn("Previous sweep is still running, skipping", nil)
		return result, domain.ErrSweepInProgress
	}
	defer uc.running.Unlock()

	if uc.lock != nil {
		release, ok, err := uc.lock.TryAcquire(ctx)
		if err != nil {
			ucLogger.Error("Failed to acquire sweep lock", err, nil)
			return result, fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		if !ok {
			ucLogger.Info("Sweep lock is held by another instance, skipping", nil)
			return result, domain.ErrSweepInProgress
		}
		defer release()
	}

	ucLogger.Info("Use case started", nil)

	bookings, err := uc.store.GetAll(ctx)
	if err != nil {
		ucLogger.Error("Repository failed to load bookings", err, nil)
		return result, fmt.Errorf("failed to load bookings: %w", err)
	}

	var failures []domain.SweepFailure
	var interrupted error
	for i := range bookings {
		// каждое бронирование сохраняется отдельно, прерваться можно между любыми двумя
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}
		booking := &bookings[i]
		result.Scanned++

		next, changed := domain.Advance(booking, now)
		if !changed {
			continue
		}

		bookingLogger := ucLogger.WithFields(port.Fields{
			"booking_id": booking.ID.String(),
			"from":       booking.Status,
			"to":         next,
		})
		applied, err := uc.store.AdvanceStatus(ctx, booking.ID, booking.Status, next, now)
		if err != nil {
			bookingLogger.Error("Failed to update booking status, continuing", err, nil)
			failures = append(failures, domain.SweepFailure{BookingID: booking.ID, From: booking.Status, To: next, Err: err})
			result.Failed++
			continue
		}
		if !applied {
			// статус успели поменять вручную, ручное решение важнее
			bookingLogger.Info("Booking changed since it was read, skipping", nil)
			result.Skipped++
			continue
		}

		booking.Status = next
		booking.UpdatedAt = now
		result.Updated++
		result.Changes[next]++
		bookingLogger.Debug("Booking status advanced", nil)
		uc.notifier.Notify(ctx, port.BookingEvent{Type: port.EventBookingStatusChanged, Data: *booking})
	}

	var sweepErr error
	if len(failures) > 0 {
		sweepErr = &domain.SweepError{Failures: failures}
	}

	resultFields := port.Fields{"scanned": result.Scanned, "updated": result.Updated, "failed": result.Failed, "skipped": result.Skipped}
	if interrupted != nil {
		ucLogger.Warn("Sweep interrupted", resultFields)
		return result, errors.Join(fmt.Errorf("sweep interrupted: %w", interrupted), sweepErr)
	}
	if sweepErr != nil {
		ucLogger.Error("Sweep finished with failures", sweepErr, resultFields)
		return result, sweepErr
	}

	ucLogger.Info("Use case finished successfully", resultFields)
	return result, nil
}
