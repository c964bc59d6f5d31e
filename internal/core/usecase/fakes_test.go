package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

type fakeBookingStore struct {
	mu       sync.Mutex
	order    []uuid.UUID
	bookings map[uuid.UUID]domain.Booking

	propertyLocks sync.Map

	getAllErr       error
	rangeErr        error
	updateErrs      map[uuid.UUID]error
	onUpdateStatus  func(id uuid.UUID)
	afterGetAll     func()
	rangeCalls      int
	updateStatusLog []uuid.UUID
}

func newFakeBookingStore(bookings ...domain.Booking) *fakeBookingStore {
	s := &fakeBookingStore{bookings: make(map[uuid.UUID]domain.Booking), updateErrs: make(map[uuid.UUID]error)}
	for _, b := range bookings {
		s.order = append(s.order, b.ID)
		s.bookings[b.ID] = b
	}
	return s
}

func (s *fakeBookingStore) snapshot() []domain.Booking {
	out := make([]domain.Booking, 0, len(s.order))
	for _, id := range s.order {
		if b, ok := s.bookings[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func (s *fakeBookingStore) get(id uuid.UUID) domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *fakeBookingStore) GetAll(ctx context.Context) ([]domain.Booking, error) {
	s.mu.Lock()
	if s.getAllErr != nil {
		s.mu.Unlock()
		return nil, s.getAllErr
	}
	out := s.snapshot()
	hook := s.afterGetAll
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *fakeBookingStore) setStatus(id uuid.UUID, status domain.BookingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[id]
	b.Status = status
	s.bookings[id] = b
}

func (s *fakeBookingStore) List(ctx context.Context, filter port.BookingFilter) ([]domain.Booking, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.Booking
	for _, b := range s.snapshot() {
		if filter.PropertyID != nil && b.PropertyID != *filter.PropertyID {
			continue
		}
		if filter.ClientID != nil && b.ClientID != *filter.ClientID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		matched = append(matched, b)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].StartDate.Before(matched[j].StartDate) })
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []domain.Booking{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *fakeBookingStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (s *fakeBookingStore) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Booking
	for _, b := range s.snapshot() {
		if b.PropertyID == propertyID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) FindByPropertyInRange(ctx context.Context, propertyID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rangeCalls++
	if s.rangeErr != nil {
		return nil, s.rangeErr
	}
	return domain.ConflictingBookings(s.snapshot(), propertyID, from, to, excludeID), nil
}

func (s *fakeBookingStore) Create(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, b.ID)
	s.bookings[b.ID] = *b
	return nil
}

func (s *fakeBookingStore) Update(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return domain.ErrBookingNotFound
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *fakeBookingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, updatedAt time.Time) error {
	s.mu.Lock()
	s.updateStatusLog = append(s.updateStatusLog, id)
	hook := s.onUpdateStatus
	err := s.updateErrs[id]
	if err == nil {
		b, ok := s.bookings[id]
		if !ok {
			err = domain.ErrBookingNotFound
		} else {
			b.Status = status
			b.UpdatedAt = updatedAt
			s.bookings[id] = b
		}
	}
	s.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return err
}

func (s *fakeBookingStore) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus, updatedAt time.Time) (bool, error) {
	s.mu.Lock()
	s.updateStatusLog = append(s.updateStatusLog, id)
	hook := s.onUpdateStatus
	err := s.updateErrs[id]
	applied := false
	if err == nil {
		if b, ok := s.bookings[id]; ok && b.Status == from {
			b.Status = to
			b.UpdatedAt = updatedAt
			s.bookings[id] = b
			applied = true
		}
	}
	s.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return applied, err
}

func (s *fakeBookingStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.PaymentStatus = status
	b.UpdatedAt = updatedAt
	s.bookings[id] = b
	return nil
}

func (s *fakeBookingStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return domain.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *fakeBookingStore) WithinPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(ctx context.Context) error) error {
	lock, _ := s.propertyLocks.LoadOrStore(propertyID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn(ctx)
}

type fakePropertyProvider struct {
	properties []domain.Property
	err        error
}

func (p *fakePropertyProvider) GetAll(ctx context.Context) ([]domain.Property, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.properties, nil
}

func (p *fakePropertyProvider) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	for i := range p.properties {
		if p.properties[i].ID == id {
			return &p.properties[i], nil
		}
	}
	return nil, domain.ErrPropertyNotFound
}

type fakeClientRepository struct {
	clients map[uuid.UUID]domain.Client
}

func (r *fakeClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return &c, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []port.BookingEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, event port.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeSweepLock struct {
	ok       bool
	err      error
	released int
}

func (l *fakeSweepLock) TryAcquire(ctx context.Context) (func(), bool, error) {
	if l.err != nil || !l.ok {
		return nil, l.ok, l.err
	}
	return func() { l.released++ }, true, nil
}

func ptr[T any](v T) *T { return &v }

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }
