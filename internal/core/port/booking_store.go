package port

import (
	"context"
	"time"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/google/uuid"
)

// BookingFilter - параметры выборки списка бронирований. Пустые поля не фильтруют.
type BookingFilter struct {
	PropertyID *uuid.UUID
	ClientID   *uuid.UUID
	Status     *domain.BookingStatus
	Limit      int
	Offset     int
}

// BookingPage - страница списка с фактически примененными limit и offset.
type BookingPage struct {
	Bookings []domain.Booking
	Total    int64
	Limit    int
	Offset   int
}

type BookingStorePort interface {
	GetAll(ctx context.Context) ([]domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, int64, error)
	FindByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Booking, error)

	// FindByPropertyInRange возвращает бронирования объекта, занимающие даты из [from, to].
	// Отмененные и просроченные не возвращаются, excludeID пропускается.
	FindByPropertyInRange(ctx context.Context, propertyID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]domain.Booking, error)

	Create(ctx context.Context, booking *domain.Booking) error
	Update(ctx context.Context, booking *domain.Booking) error
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus, updatedAt time.Time) error
	// AdvanceStatus меняет статус только если он все еще равен from. false без ошибки
	// значит, что бронирование успели изменить или удалить.
	AdvanceStatus(ctx context.Context, bookingID uuid.UUID, from, to domain.BookingStatus, updatedAt time.Time) (bool, error)
	UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status domain.PaymentStatus, updatedAt time.Time) error
	Delete(ctx context.Context, bookingID uuid.UUID) error

	// WithinPropertyLock выполняет fn так, что никакая другая запись по этому объекту
	// не идет параллельно. Ошибка из fn откатывает изменения.
	WithinPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(ctx context.Context) error) error
}
