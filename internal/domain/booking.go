package domain

import "time"

// Delivery status of a booking, synced by the stop tracker as its route runs.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingAssigned   BookingStatus = "assigned"
	BookingEnRoute    BookingStatus = "en_route"
	BookingInProgress BookingStatus = "in_progress"
	BookingDelivered  BookingStatus = "delivered"
	BookingFailed     BookingStatus = "failed"
	BookingCancelled  BookingStatus = "cancelled"
)

// Terminal bookings are never picked up by route generation.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingDelivered || s == BookingFailed || s == BookingCancelled
}

// Represents one order's delivery request.
// Created by order processing (outside this subsystem); route generation links
// it to a route and driver, and the stop tracker advances its status.
// A booking belongs to at most one active route at a time.
type DeliveryBooking struct {
	ID          int64
	Date        time.Time
	Address     string
	Coords      *Coordinates
	WindowStart *string // "HH:MM"
	WindowEnd   *string // "HH:MM"
	WeightKg    float64
	ZoneID      *int64
	Status      BookingStatus
	RouteID     *int64
	RouteOrder  *int
	DriverID    *int64
}
