package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/domain"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

const bookingColumns = `id, property_id, client_id, start_date, end_date, status, payment_status, amount, notes, created_at, updated_at`

// PostgresBookingRepository хранит бронирования и реализует блокировку
// объекта через advisory lock на время транзакции.
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBookingRepository(pool *pgxpool.Pool) (*PostgresBookingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresBookingRepository{pool: pool}, nil
}

func (r *PostgresBookingRepository) logger(ctx context.Context, method string, fields port.Fields) port.LoggerPort {
	base := port.Fields{"component": "PostgresBookingRepository", "method": method}
	for k, v := range fields {
		base[k] = v
	}
	return contextkeys.LoggerFromContext(ctx).WithFields(base)
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.PropertyID, &b.ClientID, &b.StartDate, &b.EndDate,
		&b.Status, &b.PaymentStatus, &b.Amount, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	b.StartDate = b.StartDate.UTC()
	b.EndDate = b.EndDate.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

// WithinPropertyLock выполняет fn в транзакции, держа advisory lock объекта.
// Вызовы репозитория с контекстом fn идут в той же транзакции.
func (r *PostgresBookingRepository) WithinPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(ctx context.Context) error) error {
	repoLogger := r.logger(ctx, "WithinPropertyLock", port.Fields{"property_id": propertyID.String()})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, propertyID.String()); err != nil {
		repoLogger.Error("Failed to acquire property lock", err, nil)
		return fmt.Errorf("failed to lock property %s: %w", propertyID, err)
	}

	if err := fn(contextWithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresBookingRepository) GetAll(ctx context.Context) ([]domain.Booking, error) {
	repoLogger := r.logger(ctx, "GetAll", nil)

	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at, id`)
	if err != nil {
		repoLogger.Error("Failed to query bookings", err, nil)
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		repoLogger.Error("Failed to read bookings", err, nil)
		return nil, err
	}
	return bookings, nil
}

// List возвращает страницу бронирований по фильтру и общее число подходящих.
func (r *PostgresBookingRepository) List(ctx context.Context, filter port.BookingFilter) ([]domain.Booking, int64, error) {
	repoLogger := r.logger(ctx, "List", port.Fields{"limit": filter.Limit, "offset": filter.Offset})

	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.PropertyID != nil {
		add("property_id = $%d", *filter.PropertyID)
	}
	if filter.ClientID != nil {
		add("client_id = $%d", *filter.ClientID)
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	db := conn(ctx, r.pool)

	var total int64
	countQuery := `SELECT COUNT(*) FROM bookings` + where
	if err := db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		repoLogger.Error("Failed to count bookings", err, port.Fields{"query": countQuery})
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	if total == 0 {
		return []domain.Booking{}, 0, nil
	}

	dataQuery := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY start_date, created_at LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)+1, len(args)+2)
	rows, err := db.Query(ctx, dataQuery, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		repoLogger.Error("Failed to query bookings page", err, port.Fields{"query": dataQuery})
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		repoLogger.Error("Failed to read bookings page", err, nil)
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *PostgresBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	repoLogger := r.logger(ctx, "FindByID", port.Fields{"booking_id": id.String()})

	b, err := scanBooking(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Warn("Booking not found", nil)
			return nil, domain.ErrBookingNotFound
		}
		repoLogger.Error("Failed to find booking by ID", err, nil)
		return nil, fmt.Errorf("failed to find booking by id: %w", err)
	}
	return &b, nil
}

func (r *PostgresBookingRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Booking, error) {
	repoLogger := r.logger(ctx, "FindByProperty", port.Fields{"property_id": propertyID.String()})

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE property_id = $1 ORDER BY start_date`, propertyID)
	if err != nil {
		repoLogger.Error("Failed to query property bookings", err, nil)
		return nil, fmt.Errorf("failed to query bookings for property: %w", err)
	}
	return collectBookings(rows)
}

// FindByPropertyInRange отдает только бронирования, которые занимают даты:
// отмененные и просроченные отсекаются в запросе.
func (r *PostgresBookingRepository) FindByPropertyInRange(ctx context.Context, propertyID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]domain.Booking, error) {
	repoLogger := r.logger(ctx, "FindByPropertyInRange", port.Fields{"property_id": propertyID.String()})

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE property_id = $1
			AND start_date <= $3
			AND end_date >= $2
			AND status NOT IN ('CANCELLED', 'EXPIRED')
			AND ($4::uuid IS NULL OR id <> $4::uuid)
		ORDER BY start_date
	`
	rows, err := conn(ctx, r.pool).Query(ctx, query, propertyID, from.UTC(), to.UTC(), excludeID)
	if err != nil {
		repoLogger.Error("Failed to query bookings in range", err, nil)
		return nil, fmt.Errorf("failed to query bookings in range: %w", err)
	}
	return collectBookings(rows)
}

func (r *PostgresBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	repoLogger := r.logger(ctx, "Create", port.Fields{"booking_id": b.ID.String()})

	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := conn(ctx, r.pool).Exec(ctx, query,
		b.ID, b.PropertyID, b.ClientID, b.StartDate, b.EndDate,
		string(b.Status), string(b.PaymentStatus), b.Amount, b.Notes, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to create booking", err, nil)
		return fmt.Errorf("failed to create booking: %w", err)
	}
	repoLogger.Debug("Booking created", nil)
	return nil
}

func (r *PostgresBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	repoLogger := r.logger(ctx, "Update", port.Fields{"booking_id": b.ID.String()})

	query := `
		UPDATE bookings
		SET start_date = $2, end_date = $3, status = $4, payment_status = $5,
			amount = $6, notes = $7, updated_at = $8
		WHERE id = $1
	`
	cmdTag, err := conn(ctx, r.pool).Exec(ctx, query,
		b.ID, b.StartDate, b.EndDate, string(b.Status), string(b.PaymentStatus), b.Amount, b.Notes, b.UpdatedAt)
	if err != nil {
		repoLogger.Error("Failed to update booking", err, nil)
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("Update failed: booking not found", nil)
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PostgresBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, updatedAt time.Time) error {
	repoLogger := r.logger(ctx, "UpdateStatus", port.Fields{"booking_id": id.String(), "status": status})

	cmdTag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), updatedAt)
	if err != nil {
		repoLogger.Error("Failed to update booking status", err, nil)
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("Status update failed: booking not found", nil)
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PostgresBookingRepository) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus, updatedAt time.Time) (bool, error) {
	repoLogger := r.logger(ctx, "AdvanceStatus", port.Fields{"booking_id": id.String(), "from": from, "to": to})

	cmdTag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, string(to), updatedAt, string(from))
	if err != nil {
		repoLogger.Error("Failed to advance booking status", err, nil)
		return false, fmt.Errorf("failed to advance booking status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Info("Booking changed concurrently, status left as is", nil)
		return false, nil
	}
	return true, nil
}

func (r *PostgresBookingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, updatedAt time.Time) error {
	repoLogger := r.logger(ctx, "UpdatePaymentStatus", port.Fields{"booking_id": id.String(), "payment_status": status})

	cmdTag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE bookings SET payment_status = $2, updated_at = $3 WHERE id = $1`, id, string(status), updatedAt)
	if err != nil {
		repoLogger.Error("Failed to update payment status", err, nil)
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PostgresBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	repoLogger := r.logger(ctx, "Delete", port.Fields{"booking_id": id.String()})

	cmdTag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		repoLogger.Error("Failed to delete booking", err, nil)
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("Delete failed: booking not found", nil)
		return domain.ErrBookingNotFound
	}
	return nil
}
