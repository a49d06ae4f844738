package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/ports"
)

// queryer abstracts *sql.DB and *sql.Tx so each repository works both inside
// and outside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore is the Postgres-backed implementation of ports.Store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ ports.Store = (*PostgresStore)(nil)

func (s *PostgresStore) Bookings() ports.BookingRepository   { return &pgBookings{q: s.db} }
func (s *PostgresStore) Routes() ports.RouteRepository       { return &pgRoutes{q: s.db} }
func (s *PostgresStore) Stops() ports.StopRepository         { return &pgStops{q: s.db} }
func (s *PostgresStore) Drivers() ports.DriverRepository     { return &pgDrivers{q: s.db} }
func (s *PostgresStore) Vehicles() ports.VehicleRepository   { return &pgVehicles{q: s.db} }
func (s *PostgresStore) Zones() ports.ZoneRepository         { return &pgZones{q: s.db} }
func (s *PostgresStore) Locations() ports.LocationRepository { return &pgLocations{q: s.db} }

// WithinTx runs fn against a transactional view of every repository.
// Any error (or panic unwinding through the deferred rollback) leaves the
// database untouched.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ports.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("within tx: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&txRepos{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("within tx: commit: %w", err)
	}
	return nil
}

type txRepos struct {
	tx *sql.Tx
}

func (t *txRepos) Bookings() ports.BookingRepository   { return &pgBookings{q: t.tx} }
func (t *txRepos) Routes() ports.RouteRepository       { return &pgRoutes{q: t.tx} }
func (t *txRepos) Stops() ports.StopRepository         { return &pgStops{q: t.tx} }
func (t *txRepos) Drivers() ports.DriverRepository     { return &pgDrivers{q: t.tx} }
func (t *txRepos) Vehicles() ports.VehicleRepository   { return &pgVehicles{q: t.tx} }
func (t *txRepos) Zones() ports.ZoneRepository         { return &pgZones{q: t.tx} }
func (t *txRepos) Locations() ports.LocationRepository { return &pgLocations{q: t.tx} }

// notFound converts sql.ErrNoRows into the shared not-found kind.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w", what, id, err)
}

// Null conversion helpers shared by the repositories.

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func coordCols(c *domain.Coordinates) (sql.NullFloat64, sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Lat, Valid: true}, sql.NullFloat64{Float64: c.Lng, Valid: true}
}

func coordsPtr(lat, lng sql.NullFloat64) *domain.Coordinates {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
}
