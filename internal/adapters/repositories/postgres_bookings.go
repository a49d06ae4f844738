package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dispatch-route-service/internal/domain"
)

// Postgres-backed implementation of the BookingRepository port.
type pgBookings struct {
	q queryer
}

const bookingColumns = `
	id, date, address, lat, lng, window_start, window_end,
	weight_kg, zone_id, status, route_id, route_order, driver_id
`

func scanBooking(row interface{ Scan(...any) error }) (*domain.DeliveryBooking, error) {
	var (
		b          domain.DeliveryBooking
		lat, lng   sql.NullFloat64
		wStart     sql.NullString
		wEnd       sql.NullString
		zoneID     sql.NullInt64
		routeID    sql.NullInt64
		routeOrder sql.NullInt64
		driverID   sql.NullInt64
	)
	err := row.Scan(
		&b.ID, &b.Date, &b.Address, &lat, &lng, &wStart, &wEnd,
		&b.WeightKg, &zoneID, &b.Status, &routeID, &routeOrder, &driverID,
	)
	if err != nil {
		return nil, err
	}

	b.Coords = coordsPtr(lat, lng)
	b.WindowStart = stringPtr(wStart)
	b.WindowEnd = stringPtr(wEnd)
	b.ZoneID = int64Ptr(zoneID)
	b.RouteID = int64Ptr(routeID)
	b.RouteOrder = intPtr(routeOrder)
	b.DriverID = int64Ptr(driverID)
	return &b, nil
}

func (r *pgBookings) Get(ctx context.Context, id int64) (*domain.DeliveryBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

func (r *pgBookings) ListUnrouted(ctx context.Context, date time.Time) ([]*domain.DeliveryBooking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE date = $1
	  AND route_id IS NULL
	  AND status NOT IN ('delivered', 'failed', 'cancelled')
	ORDER BY id
	`
	return r.list(ctx, query, date)
}

func (r *pgBookings) ListByRoute(ctx context.Context, routeID int64) ([]*domain.DeliveryBooking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE route_id = $1
	ORDER BY route_order, id
	`
	return r.list(ctx, query, routeID)
}

func (r *pgBookings) list(ctx context.Context, query string, args ...any) ([]*domain.DeliveryBooking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: query: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.DeliveryBooking, 0, 64)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("list bookings: scan row: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: row iteration: %w", err)
	}
	return bookings, nil
}

func (r *pgBookings) Update(ctx context.Context, b *domain.DeliveryBooking) error {
	query := `
	UPDATE bookings
	SET status = $1, route_id = $2, route_order = $3, driver_id = $4
	WHERE id = $5
	`
	res, err := r.q.ExecContext(ctx, query,
		b.Status, nullInt64(b.RouteID), nullInt(b.RouteOrder), nullInt64(b.DriverID), b.ID,
	)
	if err != nil {
		return fmt.Errorf("update booking %d: %w", b.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %d: %w", b.ID, domain.ErrNotFound)
	}
	return nil
}
