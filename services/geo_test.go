package services

import (
	"math"
	"testing"

	"standwithnepal-server/models"
)

func TestHaversineZeroDistance(t *testing.T) {
	d := HaversineKm(27.7172, 85.3240, 27.7172, 85.3240)
	if d != 0 {
		t.Fatalf("expected 0 distance for identical points, got %f", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineKm(27.7172, 85.3240, 28.2096, 83.9856) // Kathmandu -> Pokhara
	b := HaversineKm(28.2096, 83.9856, 27.7172, 85.3240)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
	// Kathmandu-Pokhara is roughly 140km as the crow flies.
	if a < 120 || a > 160 {
		t.Fatalf("implausible Kathmandu-Pokhara distance: %f km", a)
	}
}

func TestClampRadius(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 10},
		{-5, 10},
		{25, 25},
		{50, 50},
		{80, 50},
	}
	for _, c := range cases {
		if got := ClampRadius(c.in); got != c.want {
			t.Errorf("ClampRadius(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}

func coordRow(id uint, lat, lng float64) IssueRow {
	row := IssueRow{}
	row.ID = id
	row.Latitude = &lat
	row.Longitude = &lng
	return row
}

func TestRankByDistanceStrictRadius(t *testing.T) {
	center := coordRow(1, 27.0, 85.0)

	// A point due north by exactly 0.5 degrees of latitude.
	lat2 := 27.5
	exact := HaversineKm(27.0, 85.0, lat2, 85.0)
	edge := coordRow(2, lat2, 85.0)

	rows := []IssueRow{center, edge}

	// Radius exactly the edge distance: strict < excludes the edge point.
	got := RankByDistance(rows, 27.0, 85.0, exact)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only the center point inside radius %f, got %d rows", exact, len(got))
	}

	// A slightly larger radius includes it.
	got = RankByDistance(rows, 27.0, 85.0, exact+0.001)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows inside radius, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("expected ascending distance order, got %d then %d", got[0].ID, got[1].ID)
	}
}

func TestRankByDistanceSkipsMissingCoordinates(t *testing.T) {
	noCoords := IssueRow{Issue: models.Issue{}}
	noCoords.ID = 3
	rows := []IssueRow{coordRow(1, 27.0, 85.0), noCoords}

	got := RankByDistance(rows, 27.0, 85.0, 10)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("rows without coordinates must be excluded, got %d rows", len(got))
	}
}

func TestRankByDistanceCap(t *testing.T) {
	rows := make([]IssueRow, 0, 60)
	for i := 0; i < 60; i++ {
		rows = append(rows, coordRow(uint(i+1), 27.0+float64(i)*0.001, 85.0))
	}
	got := RankByDistance(rows, 27.0, 85.0, 50)
	if len(got) != maxNearbyRows {
		t.Fatalf("expected result capped at %d, got %d", maxNearbyRows, len(got))
	}
}
