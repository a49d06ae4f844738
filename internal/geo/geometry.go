package geo

import (
	"fmt"
	"math"

	"dispatch-route-service/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// AvgSpeedKmh is the flat urban average speed assumed by drive-time
	// estimates. Deliberately coarse and explainable; this is not a
	// routing-engine query.
	AvgSpeedKmh = 30.0

	// StopBufferMins is a fixed per-stop service/transition buffer added to
	// every drive-time estimate.
	StopBufferMins = 5

	minutesPerDay = 24 * 60
)

// DistanceKm returns the great-circle (haversine) distance in kilometers
// between two coordinates. Symmetric; zero when the points coincide.
func DistanceKm(a, b domain.Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// EstimateDriveMinutes converts a distance into whole minutes of driving at
// AvgSpeedKmh, plus the fixed StopBufferMins.
func EstimateDriveMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm/AvgSpeedKmh*60)) + StopBufferMins
}

// TimeToMinutes parses an "HH:MM" wall-clock time into minutes since midnight.
func TimeToMinutes(t string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(t, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("time to minutes: parse %q: %w", t, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("time to minutes: %q out of range", t)
	}
	return hh*60 + mm, nil
}

// MinutesToTime formats minutes since midnight as "HH:MM", wrapping modulo 24h.
func MinutesToTime(mins int) string {
	mins = ((mins % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// AddMinutes advances an "HH:MM" time by n minutes.
// Wraps modulo 24 hours and does NOT roll over to the next calendar date: an
// itinerary crossing midnight displays a wrapped, smaller time. Known edge
// case, kept for compatibility with downstream display code.
func AddMinutes(t string, n int) (string, error) {
	mins, err := TimeToMinutes(t)
	if err != nil {
		return "", fmt.Errorf("add minutes: %w", err)
	}
	return MinutesToTime(mins + n), nil
}
