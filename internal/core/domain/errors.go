package domain

import "errors"

var (
	ErrInvalidDateRange     = errors.New("start date must be before end date")
	ErrInvalidStatus        = errors.New("unknown booking status")
	ErrInvalidPaymentStatus = errors.New("unknown payment status")

	ErrBookingNotFound  = errors.New("booking not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrClientNotFound   = errors.New("client not found")

	// ErrBookingConflict - на эти даты объект уже забронирован.
	ErrBookingConflict = errors.New("property is already booked for the selected dates")

	// ErrSweepInProgress - предыдущий проход по бронированиям еще не закончился.
	ErrSweepInProgress = errors.New("booking status sweep is already running")
)
