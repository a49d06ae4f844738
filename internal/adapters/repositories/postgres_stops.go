package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"dispatch-route-service/internal/domain"
)

// Postgres-backed implementation of the StopRepository port.
type pgStops struct {
	q queryer
}

const stopColumns = `
	id, route_id, booking_id, seq, address, lat, lng, window_end, service_mins,
	estimated_arrival, estimated_departure, actual_arrival, actual_departure,
	distance_from_prev_km, status, notes
`

func scanStop(row interface{ Scan(...any) error }) (*domain.RouteStop, error) {
	var (
		s                  domain.RouteStop
		lat, lng           sql.NullFloat64
		windowEnd          sql.NullString
		estArr, estDep     sql.NullString
		actArr, actDep     sql.NullTime
		notes              sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.RouteID, &s.BookingID, &s.Seq, &s.Address, &lat, &lng,
		&windowEnd, &s.ServiceMins, &estArr, &estDep, &actArr, &actDep,
		&s.DistanceFromPrevKm, &s.Status, &notes,
	)
	if err != nil {
		return nil, err
	}

	s.Coords = coordsPtr(lat, lng)
	s.WindowEnd = stringPtr(windowEnd)
	s.EstimatedArrival = stringPtr(estArr)
	s.EstimatedDeparture = stringPtr(estDep)
	s.ActualArrival = timePtr(actArr)
	s.ActualDeparture = timePtr(actDep)
	s.Notes = stringPtr(notes)
	return &s, nil
}

func (r *pgStops) Get(ctx context.Context, id int64) (*domain.RouteStop, error) {
	query := `SELECT ` + stopColumns + ` FROM route_stops WHERE id = $1`

	stop, err := scanStop(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "stop", id)
	}
	return stop, nil
}

func (r *pgStops) ListByRoute(ctx context.Context, routeID int64) ([]*domain.RouteStop, error) {
	query := `SELECT ` + stopColumns + ` FROM route_stops WHERE route_id = $1 ORDER BY seq`

	rows, err := r.q.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("list stops: query: %w", err)
	}
	defer rows.Close()

	stops := make([]*domain.RouteStop, 0, 16)
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}
	return stops, nil
}

func (r *pgStops) Create(ctx context.Context, s *domain.RouteStop) error {
	query := `
	INSERT INTO route_stops (
		route_id, booking_id, seq, address, lat, lng, window_end, service_mins,
		distance_from_prev_km, status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id
	`
	lat, lng := coordCols(s.Coords)
	err := r.q.QueryRowContext(ctx, query,
		s.RouteID, s.BookingID, s.Seq, s.Address, lat, lng,
		nullString(s.WindowEnd), s.ServiceMins, s.DistanceFromPrevKm, s.Status,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("create stop for booking %d: %w", s.BookingID, err)
	}
	return nil
}

func (r *pgStops) Update(ctx context.Context, s *domain.RouteStop) error {
	query := `
	UPDATE route_stops
	SET seq = $1, estimated_arrival = $2, estimated_departure = $3,
		actual_arrival = $4, actual_departure = $5,
		distance_from_prev_km = $6, status = $7, notes = $8
	WHERE id = $9
	`
	res, err := r.q.ExecContext(ctx, query,
		s.Seq, nullString(s.EstimatedArrival), nullString(s.EstimatedDeparture),
		nullTime(s.ActualArrival), nullTime(s.ActualDeparture),
		s.DistanceFromPrevKm, s.Status, nullString(s.Notes), s.ID,
	)
	if err != nil {
		return fmt.Errorf("update stop %d: %w", s.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("stop %d: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}
