package domain

// Named geographic grouping of delivery addresses with a representative
// center point, used when a booking lacks its own coordinates. Read-only here.
type Zone struct {
	ID     int64
	Name   string
	Center *Coordinates
}

// A stored address, typically the warehouse a route departs from.
type Location struct {
	ID      int64
	Name    string
	Address string
	Coords  *Coordinates
}
