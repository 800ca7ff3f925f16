package models

import (
	"sort"
	"time"
)

// LegSummary is the display-ready view of one leg
type LegSummary struct {
	Mode              Mode      `json:"mode"`
	VehicleType       string    `json:"vehicle_type"`
	Vehicle           string    `json:"vehicle,omitempty"`
	Line              string    `json:"line,omitempty"`
	LineName          string    `json:"line_name,omitempty"`
	Headsign          string    `json:"headsign,omitempty"`
	NumStops          int       `json:"num_stops,omitempty"`
	DepartureStop     string    `json:"departure_stop"`
	DepartureLocation LatLng    `json:"departure_location"`
	DepartureTime     time.Time `json:"departure_time"`
	ArrivalStop       string    `json:"arrival_stop"`
	ArrivalLocation   LatLng    `json:"arrival_location"`
	ArrivalTime       time.Time `json:"arrival_time"`
}

// IsWalking reports whether the leg is a walking segment
func (l LegSummary) IsWalking() bool {
	return l.Mode.IsWalking()
}

// NormalizedItinerary is the immutable, flattened view of a RawItinerary
type NormalizedItinerary struct {
	Departure time.Time    `json:"departure"`
	Arrival   time.Time    `json:"arrival"`
	Transfers int          `json:"transfers"`
	Legs      []LegSummary `json:"legs"`
}

// Duration is the door-to-door travel time
func (n NormalizedItinerary) Duration() time.Duration {
	return n.Arrival.Sub(n.Departure)
}

// Rides returns the non-walking legs in order
func (n NormalizedItinerary) Rides() []LegSummary {
	var rides []LegSummary
	for _, l := range n.Legs {
		if !l.IsWalking() {
			rides = append(rides, l)
		}
	}
	return rides
}

// ResultSet is the day's itineraries ordered by departure, then arrival
type ResultSet []NormalizedItinerary

// SortStable orders by departure ascending, ties by arrival ascending, then insertion order
func (rs ResultSet) SortStable() {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].Departure.Equal(rs[j].Departure) {
			return rs[i].Departure.Before(rs[j].Departure)
		}
		return rs[i].Arrival.Before(rs[j].Arrival)
	})
}

// IsSorted reports whether the set is in departure/arrival order
func (rs ResultSet) IsSorted() bool {
	for i := 1; i < len(rs); i++ {
		prev, cur := rs[i-1], rs[i]
		if cur.Departure.Before(prev.Departure) {
			return false
		}
		if cur.Departure.Equal(prev.Departure) && cur.Arrival.Before(prev.Arrival) {
			return false
		}
	}
	return true
}

// Locations returns every distinct stop coordinate in first-seen order
func (rs ResultSet) Locations() []LatLng {
	seen := make(map[LatLng]struct{})
	var out []LatLng
	add := func(l LatLng) {
		if l.IsZero() {
			return
		}
		if _, ok := seen[l]; ok {
			return
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	for _, it := range rs {
		for _, leg := range it.Legs {
			if leg.IsWalking() {
				continue
			}
			add(leg.DepartureLocation)
			add(leg.ArrivalLocation)
		}
	}
	return out
}
