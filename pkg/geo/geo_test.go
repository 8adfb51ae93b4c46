package geo

import "testing"

func TestCoordinatesValid(t *testing.T) {
	cases := []struct {
		name    string
		input   Coordinates
		expects bool
	}{
		{"stockholm", Coordinates{Lat: 59.3293, Lng: 18.0686}, true},
		{"extreme but legal", Coordinates{Lat: -90, Lng: 180}, true},
		{"latitude out of range", Coordinates{Lat: 91, Lng: 0}, false},
		{"longitude out of range", Coordinates{Lat: 0, Lng: -181}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.input.Valid(); got != tc.expects {
				t.Fatalf("Valid(%v) = %v; want %v", tc.input, got, tc.expects)
			}
		})
	}
}

func TestPointOrdering(t *testing.T) {
	p := NewPoint(Coordinates{Lat: 59.33, Lng: 18.06})
	if p.Coordinates[0] != 18.06 || p.Coordinates[1] != 59.33 {
		t.Fatalf("expected [lng lat] ordering, got %v", p.Coordinates)
	}
	back := p.LatLng()
	if back.Lat != 59.33 || back.Lng != 18.06 {
		t.Fatalf("round trip mismatch: %v", back)
	}
}

func TestPointIsUnset(t *testing.T) {
	if !(Point{Type: "Point"}).IsUnset() {
		t.Fatal("zero point should report unset")
	}
	if NewPoint(Coordinates{Lat: 0.001, Lng: 0}).IsUnset() {
		t.Fatal("near-origin point is a real measurement")
	}
}

func TestRound(t *testing.T) {
	c := Coordinates{Lat: 59.511453, Lng: 18.082407}
	got := c.Round(3)
	if got.Lat != 59.511 || got.Lng != 18.082 {
		t.Fatalf("Round(3) = %v", got)
	}
}

func TestDistanceMeters(t *testing.T) {
	stockholm := Coordinates{Lat: 59.3293, Lng: 18.0686}
	uppsala := Coordinates{Lat: 59.8586, Lng: 17.6389}

	d := DistanceMeters(stockholm, uppsala)
	// Roughly 63 km between the two city centers.
	if d < 60000 || d > 68000 {
		t.Fatalf("unexpected distance %f", d)
	}
	if DistanceMeters(stockholm, stockholm) != 0 {
		t.Fatal("distance to self should be zero")
	}
}
