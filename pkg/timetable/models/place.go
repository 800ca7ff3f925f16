package models

import (
	"strconv"
)

// Place is a free-text location resolved server-side by the directions service.
// It is never parsed locally.
type Place string

func (p Place) String() string {
	return string(p)
}

// LatLng is a WGS84 coordinate pair as reported for transit stops
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the coordinate was never set
func (l LatLng) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

// String renders the coordinate as "lat,lng", the form the geocoding API accepts
func (l LatLng) String() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

