package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConflictingBookings возвращает бронирования объекта propertyID, которые занимают
// хотя бы один день из [from, to]. Отмененные и просроченные не учитываются,
// бронирование excludeID (редактируемое) пропускается.
func ConflictingBookings(bookings []Booking, propertyID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) []Booking {
	var conflicts []Booking
	for i := range bookings {
		b := &bookings[i]
		if b.PropertyID != propertyID || !b.Status.BlocksDates() {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.Overlaps(from, to) {
			conflicts = append(conflicts, *b)
		}
	}
	return conflicts
}

// HasConflict - есть ли хотя бы одно пересекающееся бронирование.
func HasConflict(bookings []Booking, propertyID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) bool {
	return len(ConflictingBookings(bookings, propertyID, from, to, excludeID)) > 0
}

// PropertyStatus - производный статус объекта, вычисляется по его бронированиям.
type PropertyStatus string

const (
	PropertyAvailable PropertyStatus = "available"
	PropertyReserved  PropertyStatus = "reserved"
	PropertyOccupied  PropertyStatus = "occupied"
)

// DerivePropertyStatus: занят, если идет проживание; зарезервирован, если есть
// ожидающее или подтвержденное бронирование, которое еще не закончилось.
func DerivePropertyStatus(bookings []Booking, now time.Time) PropertyStatus {
	status := PropertyAvailable
	for i := range bookings {
		b := &bookings[i]
		switch b.Status {
		case BookingActive:
			return PropertyOccupied
		case BookingConfirmed:
			if b.Contains(now) {
				return PropertyOccupied
			}
			if !b.EndedBy(now) {
				status = PropertyReserved
			}
		case BookingPending:
			if !b.EndedBy(now) {
				status = PropertyReserved
			}
		}
	}
	return status
}
