package domain

// Availability status of a driver.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnRoute   DriverStatus = "on_route"
	DriverInactive  DriverStatus = "inactive"
)

// Identity record for a driver. Selection and assignment happen here; CRUD
// lives outside this subsystem.
type Driver struct {
	ID     int64
	Name   string
	Phone  string
	Status DriverStatus
}

// Active drivers can be picked up by route generation or manual assignment.
func (d *Driver) Active() bool { return d.Status != DriverInactive }

// Capacity record for a vehicle; read-only here.
type Vehicle struct {
	ID         int64
	Name       string
	Plate      string
	CapacityKg float64
	Active     bool
}
