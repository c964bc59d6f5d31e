package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingStatus - перечисление для статусов бронирования
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingActive    BookingStatus = "ACTIVE"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingExpired   BookingStatus = "EXPIRED"
	BookingNoShow    BookingStatus = "NO_SHOW"
)

var bookingStatuses = map[BookingStatus]struct{}{
	BookingPending: {}, BookingConfirmed: {}, BookingActive: {}, BookingCompleted: {},
	BookingCancelled: {}, BookingExpired: {}, BookingNoShow: {},
}

// ParseBookingStatus принимает статус в любом регистре.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := bookingStatuses[status]; !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// IsTerminal - из этого статуса автоматических переходов нет и не будет.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingExpired
}

// BlocksDates - бронирование в этом статусе занимает даты объекта.
func (s BookingStatus) BlocksDates() bool {
	return s != BookingCancelled && s != BookingExpired
}

// PaymentStatus - статус оплаты бронирования
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "UNPAID"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentPaid          PaymentStatus = "PAID"
	PaymentRefunded      PaymentStatus = "REFUNDED"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case PaymentUnpaid, PaymentPartiallyPaid, PaymentPaid, PaymentRefunded:
		return status, nil
	}
	return "", ErrInvalidPaymentStatus
}

// Booking - бронирование объекта клиентом на интервал дат.
// Границы интервала включаются.
type Booking struct {
	ID            uuid.UUID     `json:"id"`
	PropertyID    uuid.UUID     `json:"property_id"`
	ClientID      uuid.UUID     `json:"client_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Amount        *float64      `json:"amount,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewBooking - конструктор для нового бронирования в статусе PENDING.
func NewBooking(propertyID, clientID uuid.UUID, start, end time.Time, now time.Time) (*Booking, error) {
	if err := ValidateDateRange(start, end); err != nil {
		return nil, err
	}
	now = now.UTC()
	return &Booking{
		ID:            uuid.New(),
		PropertyID:    propertyID,
		ClientID:      clientID,
		StartDate:     start.UTC(),
		EndDate:       end.UTC(),
		Status:        BookingPending,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ValidateDateRange требует start < end.
func ValidateDateRange(start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidDateRange
	}
	return nil
}

// Overlaps проверяет пересечение с [from, to], касание границ тоже пересечение.
func (b *Booking) Overlaps(from, to time.Time) bool {
	return !b.StartDate.After(to) && !b.EndDate.Before(from)
}

// Contains - момент t попадает в интервал бронирования.
func (b *Booking) Contains(t time.Time) bool {
	return !t.Before(b.StartDate) && !b.EndedBy(t)
}

// EndedBy - к моменту now проживание закончилось. Дата выезда без времени
// (полночь) означает весь этот день, так что окончание наступает в следующую полночь.
func (b *Booking) EndedBy(now time.Time) bool {
	if isDateOnly(b.EndDate) {
		return !now.Before(b.EndDate.AddDate(0, 0, 1))
	}
	return now.After(b.EndDate)
}

func isDateOnly(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
