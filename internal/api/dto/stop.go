package dto

import "time"

type StopStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type StopResponse struct {
	ID                 int64      `json:"id"`
	RouteID            int64      `json:"route_id"`
	BookingID          int64      `json:"booking_id"`
	Seq                int        `json:"seq"`
	Address            string     `json:"address"`
	Lat                *float64   `json:"lat"`
	Lng                *float64   `json:"lng"`
	WindowEnd          *string    `json:"window_end"`
	EstimatedArrival   *string    `json:"estimated_arrival"`
	EstimatedDeparture *string    `json:"estimated_departure"`
	ActualArrival      *time.Time `json:"actual_arrival"`
	ActualDeparture    *time.Time `json:"actual_departure"`
	DistanceFromPrevKm float64    `json:"distance_from_prev_km"`
	Status             string     `json:"status"`
	Notes              *string    `json:"notes"`
}
