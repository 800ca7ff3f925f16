package models

import (
	"strconv"
	"strings"
	"time"
)

// Stop is a named place where a leg starts or ends
type Stop struct {
	Name     string `json:"name"`
	Location LatLng `json:"location"`
}

// Leg is one continuous vehicle ride or walking segment
type Leg struct {
	Mode Mode
	// VehicleType is the token exactly as reported (e.g. "HEAVY_RAIL"); display overrides key on it.
	VehicleType   string
	VehicleName   string
	Line          string // short line identifier, empty for walking
	LineName      string
	Headsign      string
	NumStops      int
	DepartureStop Stop
	ArrivalStop   Stop
	Departure     time.Time
	Arrival       time.Time
}

// RawItinerary is one door-to-door route as returned for a single query
type RawItinerary struct {
	Legs []Leg
}

// Departure is the departure instant of the first leg, zero if there are no legs
func (r RawItinerary) Departure() time.Time {
	if len(r.Legs) == 0 {
		return time.Time{}
	}
	return r.Legs[0].Departure
}

// Arrival is the arrival instant of the last leg, zero if there are no legs
func (r RawItinerary) Arrival() time.Time {
	if len(r.Legs) == 0 {
		return time.Time{}
	}
	return r.Legs[len(r.Legs)-1].Arrival
}

// Transfers counts non-walking legs minus one, floored at zero
func (r RawItinerary) Transfers() int {
	return CountTransfers(r.Legs)
}

// CountTransfers counts non-walking legs minus one, floored at zero
func CountTransfers(legs []Leg) int {
	rides := 0
	for _, l := range legs {
		if !l.Mode.IsWalking() {
			rides++
		}
	}
	if rides == 0 {
		return 0
	}
	return rides - 1
}

// Key identifies an itinerary for deduplication: departure, arrival and the ordered
// (mode, line, departure stop, arrival stop) tuples. Instants are compared as absolute time.
func (r RawItinerary) Key() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(r.Departure().Unix(), 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(r.Arrival().Unix(), 10))
	for _, l := range r.Legs {
		b.WriteByte('|')
		b.WriteString(string(l.Mode))
		b.WriteByte('\x1f')
		b.WriteString(l.Line)
		b.WriteByte('\x1f')
		b.WriteString(l.DepartureStop.Name)
		b.WriteByte('\x1f')
		b.WriteString(l.ArrivalStop.Name)
	}
	return b.String()
}
