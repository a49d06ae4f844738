package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dispatch-route-service/internal/domain"
)

// Postgres-backed implementation of the RouteRepository port.
type pgRoutes struct {
	q queryer
}

const routeColumns = `
	id, route_number, date, status, driver_id, vehicle_id, start_location_id,
	start_time, total_stops, completed_stops, total_distance_km,
	total_duration_mins, total_weight_kg, started_at, completed_at, optimized_at
`

func scanRoute(row interface{ Scan(...any) error }) (*domain.Route, error) {
	var (
		r                                 domain.Route
		driverID, vehicleID               sql.NullInt64
		startedAt, completedAt, optimized sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.RouteNumber, &r.Date, &r.Status, &driverID, &vehicleID,
		&r.StartLocationID, &r.StartTime, &r.TotalStops, &r.CompletedStops,
		&r.TotalDistanceKm, &r.TotalDuration, &r.TotalWeightKg,
		&startedAt, &completedAt, &optimized,
	)
	if err != nil {
		return nil, err
	}

	r.DriverID = int64Ptr(driverID)
	r.VehicleID = int64Ptr(vehicleID)
	r.StartedAt = timePtr(startedAt)
	r.CompletedAt = timePtr(completedAt)
	r.OptimizedAt = timePtr(optimized)
	return &r, nil
}

func (r *pgRoutes) Get(ctx context.Context, id int64) (*domain.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`

	route, err := scanRoute(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "route", id)
	}
	return route, nil
}

func (r *pgRoutes) Create(ctx context.Context, route *domain.Route) error {
	query := `
	INSERT INTO routes (
		route_number, date, status, driver_id, vehicle_id, start_location_id,
		start_time, total_stops, completed_stops, total_distance_km,
		total_duration_mins, total_weight_kg
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING id
	`
	err := r.q.QueryRowContext(ctx, query,
		route.RouteNumber, route.Date, route.Status,
		nullInt64(route.DriverID), nullInt64(route.VehicleID), route.StartLocationID,
		route.StartTime, route.TotalStops, route.CompletedStops,
		route.TotalDistanceKm, route.TotalDuration, route.TotalWeightKg,
	).Scan(&route.ID)
	if err != nil {
		return fmt.Errorf("create route %s: %w", route.RouteNumber, err)
	}
	return nil
}

func (r *pgRoutes) Update(ctx context.Context, route *domain.Route) error {
	query := `
	UPDATE routes
	SET status = $1, driver_id = $2, vehicle_id = $3, completed_stops = $4,
		total_distance_km = $5, total_duration_mins = $6,
		started_at = $7, completed_at = $8, optimized_at = $9
	WHERE id = $10
	`
	res, err := r.q.ExecContext(ctx, query,
		route.Status, nullInt64(route.DriverID), nullInt64(route.VehicleID),
		route.CompletedStops, route.TotalDistanceKm, route.TotalDuration,
		nullTime(route.StartedAt), nullTime(route.CompletedAt), nullTime(route.OptimizedAt),
		route.ID,
	)
	if err != nil {
		return fmt.Errorf("update route %d: %w", route.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("route %d: %w", route.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *pgRoutes) DriverIDsWithActiveRoute(ctx context.Context, date time.Time) ([]int64, error) {
	query := `
	SELECT DISTINCT driver_id
	FROM routes
	WHERE date = $1
	  AND driver_id IS NOT NULL
	  AND status NOT IN ('completed', 'cancelled')
	`
	rows, err := r.q.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("active route drivers: query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("active route drivers: scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("active route drivers: row iteration: %w", err)
	}
	return ids, nil
}
