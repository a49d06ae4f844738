package repositories

import (
	"context"
	"fmt"
	"time"

	"dispatch-route-service/internal/domain"
)

// Postgres-backed implementation of the DriverRepository port.
type pgDrivers struct {
	q queryer
}

func (r *pgDrivers) Get(ctx context.Context, id int64) (*domain.Driver, error) {
	query := `SELECT id, name, phone, status FROM drivers WHERE id = $1`

	var d domain.Driver
	err := r.q.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name, &d.Phone, &d.Status)
	if err != nil {
		return nil, notFound(err, "driver", id)
	}
	return &d, nil
}

func (r *pgDrivers) ListAvailable(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT id, name, phone, status FROM drivers WHERE status = 'available' ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list available drivers: query: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, 16)
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.Status); err != nil {
			return nil, fmt.Errorf("list available drivers: scan row: %w", err)
		}
		drivers = append(drivers, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list available drivers: row iteration: %w", err)
	}
	return drivers, nil
}

func (r *pgDrivers) SetStatus(ctx context.Context, id int64, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1 WHERE id = $2`

	res, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("set driver %d status: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("driver %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Reserve claims a driver for a date. The unique key on (driver_id, date)
// makes the claim a conditional insert: a concurrent transaction that already
// holds the driver wins and this call reports false without error.
func (r *pgDrivers) Reserve(ctx context.Context, driverID int64, date time.Time) (bool, error) {
	query := `
	INSERT INTO driver_reservations (driver_id, date)
	VALUES ($1, $2)
	ON CONFLICT (driver_id, date) DO NOTHING
	`
	res, err := r.q.ExecContext(ctx, query, driverID, date)
	if err != nil {
		return false, fmt.Errorf("reserve driver %d: %w", driverID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve driver %d: rows affected: %w", driverID, err)
	}
	return n == 1, nil
}

func (r *pgDrivers) Release(ctx context.Context, driverID int64, date time.Time) error {
	query := `DELETE FROM driver_reservations WHERE driver_id = $1 AND date = $2`

	if _, err := r.q.ExecContext(ctx, query, driverID, date); err != nil {
		return fmt.Errorf("release driver %d: %w", driverID, err)
	}
	return nil
}
