package dto

import "time"

type AutoGenerateRequest struct {
	Date       string `json:"date"` // "2006-01-02", defaults to today
	LocationID int64  `json:"location_id"`
}

type RouteSummaryResponse struct {
	RouteID     int64   `json:"route_id"`
	RouteNumber string  `json:"route_number"`
	Zone        string  `json:"zone"`
	StopCount   int     `json:"stop_count"`
	DriverName  *string `json:"driver_name"`
}

type AutoGenerateResponse struct {
	RoutesCreated    int                    `json:"routes_created"`
	BookingsAssigned int                    `json:"bookings_assigned"`
	DriversRemaining int                    `json:"drivers_remaining"`
	Routes           []RouteSummaryResponse `json:"routes"`
}

type OptimizeResponse struct {
	RouteID         int64   `json:"route_id"`
	Optimized       bool    `json:"optimized"`
	Message         string  `json:"message"`
	StopCount       int     `json:"stop_count"`
	OriginalKm      float64 `json:"original_km"`
	OptimizedKm     float64 `json:"optimized_km"`
	DistanceSavedKm float64 `json:"distance_saved_km"`
	TimeSavedMins   int     `json:"time_saved_mins"`
}

type AssignDriverRequest struct {
	DriverID  int64  `json:"driver_id"`
	VehicleID *int64 `json:"vehicle_id"`
}

type ReorderRequest struct {
	StopOrder []int64 `json:"stop_order"`
}

type RouteResponse struct {
	ID              int64      `json:"id"`
	RouteNumber     string     `json:"route_number"`
	Date            string     `json:"date"`
	Status          string     `json:"status"`
	DriverID        *int64     `json:"driver_id"`
	VehicleID       *int64     `json:"vehicle_id"`
	StartLocationID int64      `json:"start_location_id"`
	StartTime       string     `json:"start_time"`
	TotalStops      int        `json:"total_stops"`
	CompletedStops  int        `json:"completed_stops"`
	TotalDistanceKm float64    `json:"total_distance_km"`
	TotalDuration   int        `json:"total_duration_mins"`
	TotalWeightKg   float64    `json:"total_weight_kg"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	OptimizedAt     *time.Time `json:"optimized_at"`
}

type RouteDetailResponse struct {
	Route RouteResponse  `json:"route"`
	Stops []StopResponse `json:"stops"`
}
