package geo

import (
	"math"
	"testing"

	"dispatch-route-service/internal/domain"
)

func TestDistanceKmKnownPair(t *testing.T) {
	// Downtown Toronto -> CN Tower area, roughly 1.6 km apart.
	a := domain.Coordinates{Lat: 43.6532, Lng: -79.3832}
	b := domain.Coordinates{Lat: 43.6426, Lng: -79.3871}

	d := DistanceKm(a, b)
	if d < 1.1 || d > 1.3 {
		t.Fatalf("distance = %.3f km, want ~1.2 km", d)
	}

	if rev := DistanceKm(b, a); math.Abs(rev-d) > 1e-9 {
		t.Fatalf("distance not symmetric: %.9f vs %.9f", d, rev)
	}
}

func TestDistanceKmCoincidentPoints(t *testing.T) {
	p := domain.Coordinates{Lat: 43.65, Lng: -79.38}
	if d := DistanceKm(p, p); d != 0 {
		t.Fatalf("distance between identical points = %f, want 0", d)
	}
}

func TestEstimateDriveMinutes(t *testing.T) {
	cases := []struct {
		km   float64
		want int
	}{
		{0, 5},    // buffer only
		{15, 35},  // 30 min drive + 5
		{30, 65},  // one hour + 5
		{7.6, 20}, // 15.2 -> rounds to 15, + 5
	}
	for _, tc := range cases {
		if got := EstimateDriveMinutes(tc.km); got != tc.want {
			t.Errorf("EstimateDriveMinutes(%v) = %d, want %d", tc.km, got, tc.want)
		}
	}
}

func TestTimeToMinutes(t *testing.T) {
	mins, err := TimeToMinutes("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mins != 570 {
		t.Fatalf("minutes = %d, want 570", mins)
	}

	if _, err := TimeToMinutes("25:00"); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
	if _, err := TimeToMinutes("bogus"); err == nil {
		t.Fatal("expected error for unparseable time")
	}
}

func TestAddMinutes(t *testing.T) {
	got, err := AddMinutes("09:15", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10:05" {
		t.Fatalf("AddMinutes = %q, want 10:05", got)
	}
}

// Times wrap modulo 24h without rolling the date forward; a route crossing
// midnight shows a smaller wrapped time.
func TestAddMinutesWrapsPastMidnight(t *testing.T) {
	got, err := AddMinutes("23:30", 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "00:15" {
		t.Fatalf("AddMinutes past midnight = %q, want 00:15", got)
	}
}
