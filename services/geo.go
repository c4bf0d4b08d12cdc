package services

import (
	"math"
	"sort"
)

const (
	earthRadiusKm  = 6371.0
	maxNearbyRows  = 50
	maxNearbyRange = 50.0 // km
)

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0
	la1 := lat1 * math.Pi / 180.0
	la2 := lat2 * math.Pi / 180.0
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(la1)*math.Cos(la2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// ClampRadius applies the default and the 50km cap.
func ClampRadius(radius float64) float64 {
	if radius <= 0 {
		return 10
	}
	if radius > maxNearbyRange {
		return maxNearbyRange
	}
	return radius
}

type NearbyIssue struct {
	IssueRow
	Distance float64 `json:"distance"`
}

// RankByDistance filters rows to those strictly inside radius km of the
// given point, ordered nearest first, capped at 50. Rows without
// coordinates are skipped; a point exactly radius away is excluded.
func RankByDistance(rows []IssueRow, lat, lng, radius float64) []NearbyIssue {
	out := make([]NearbyIssue, 0, len(rows))
	for _, row := range rows {
		if row.Latitude == nil || row.Longitude == nil {
			continue
		}
		d := HaversineKm(lat, lng, *row.Latitude, *row.Longitude)
		if d < radius {
			out = append(out, NearbyIssue{IssueRow: row, Distance: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > maxNearbyRows {
		out = out[:maxNearbyRows]
	}
	return out
}
