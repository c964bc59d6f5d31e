package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PendingTTL - сколько неподтвержденное бронирование живет до истечения.
const PendingTTL = 48 * time.Hour

// transition - автоматический переход из одного статуса в другой по времени.
type transition struct {
	to   BookingStatus
	when func(b *Booking, now time.Time) bool
}

// Таблица автоматических переходов. Ручные изменения статуса ее не используют.
var transitions = map[BookingStatus]transition{
	BookingPending: {
		to:   BookingExpired,
		when: func(b *Booking, now time.Time) bool { return now.Sub(b.CreatedAt) > PendingTTL },
	},
	BookingConfirmed: {
		to:   BookingActive,
		when: func(b *Booking, now time.Time) bool { return !now.Before(b.StartDate) },
	},
	BookingActive: {
		to:   BookingCompleted,
		when: func(b *Booking, now time.Time) bool { return b.EndedBy(now) },
	},
}

// NextStatus пробует один переход из таблицы.
func NextStatus(b *Booking, now time.Time) (BookingStatus, bool) {
	t, ok := transitions[b.Status]
	if !ok || !t.when(b, now) {
		return b.Status, false
	}
	return t.to, true
}

// Advance применяет переходы, пока они срабатывают. Повторный вызов с тем же now
// ничего не меняет: CONFIRMED, у которого уже прошла дата выезда, сразу
// становится COMPLETED.
func Advance(b *Booking, now time.Time) (BookingStatus, bool) {
	current := *b
	changed := false
	for {
		next, ok := NextStatus(&current, now)
		if !ok {
			return current.Status, changed
		}
		current.Status = next
		changed = true
	}
}

// SweepResult - итог одного прохода по бронированиям.
type SweepResult struct {
	Scanned int                   `json:"scanned"`
	Updated int                   `json:"updated"`
	Failed  int                   `json:"failed"`
	Skipped int                   `json:"skipped"` // изменены вручную после чтения
	Changes map[BookingStatus]int `json:"changes"`
}

// SweepFailure - бронирование, статус которого не удалось сохранить.
type SweepFailure struct {
	BookingID uuid.UUID
	From      BookingStatus
	To        BookingStatus
	Err       error
}

func (f SweepFailure) Error() string {
	return fmt.Sprintf("booking %s (%s -> %s): %v", f.BookingID, f.From, f.To, f.Err)
}

func (f SweepFailure) Unwrap() error { return f.Err }

// SweepError собирает ошибки отдельных бронирований, проход при этом не прерывается.
type SweepError struct {
	Failures []SweepFailure
}

func (e *SweepError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("failed to update %d booking(s): %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *SweepError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}
