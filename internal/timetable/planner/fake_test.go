package planner

import (
	"context"
	"sync"
	"time"

	"github.com/transit-daytable/internal/directions"
	"github.com/transit-daytable/internal/timetable/retry"
	"github.com/transit-daytable/pkg/timetable/models"
)

var jst = time.FixedZone("JST", 9*3600)

var testPolicy = retry.Policy{Attempts: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}

var testQuery = Query{
	Origin:       "Tokyo Station",
	Destination:  "Yokohama Station",
	Language:     "en",
	MaxTransfers: 99,
}

func testWindow() models.DayWindow {
	start := time.Date(2020, 7, 1, 0, 0, 0, 0, jst)
	return models.DayWindow{Date: "2020-07-01", Start: start, End: start.AddDate(0, 0, 1)}
}

// clock returns hh:mm on the test day in JST; hours past 23 roll into the next day
func clock(h, m int) time.Time {
	return time.Date(2020, 7, 1, h, m, 0, 0, jst)
}

// ride is a direct itinerary: walk, one train, walk
func ride(line string, dep, arr time.Time) models.RawItinerary {
	return models.RawItinerary{Legs: []models.Leg{
		{
			Mode: models.ModeWalking, VehicleType: "WALKING",
			DepartureStop: models.Stop{Name: "Home"}, ArrivalStop: models.Stop{Name: "Tokyo"},
			Departure: dep, Arrival: dep,
		},
		{
			Mode: models.ModeHeavyRail, VehicleType: "HEAVY_RAIL", Line: line,
			DepartureStop: models.Stop{Name: "Tokyo", Location: models.LatLng{Lat: 35.6813, Lng: 139.767}},
			ArrivalStop:   models.Stop{Name: "Yokohama", Location: models.LatLng{Lat: 35.466, Lng: 139.6223}},
			Departure:     dep, Arrival: arr,
		},
	}}
}

// hops is an itinerary with n rides back to back, i.e. n-1 transfers
func hops(n int, dep time.Time) models.RawItinerary {
	var legs []models.Leg
	t := dep
	for i := 0; i < n; i++ {
		legs = append(legs, models.Leg{
			Mode: models.ModeBus, VehicleType: "BUS", Line: "B" + string(rune('1'+i)),
			DepartureStop: models.Stop{Name: "Stop " + string(rune('A'+i))},
			ArrivalStop:   models.Stop{Name: "Stop " + string(rune('B'+i))},
			Departure:     t, Arrival: t.Add(10 * time.Minute),
		})
		t = t.Add(10 * time.Minute)
	}
	return models.RawItinerary{Legs: legs}
}

type respondFunc func(call int, departAt time.Time) ([]models.RawItinerary, error)

type fakeDirections struct {
	mu       sync.Mutex
	requests []directions.DirectionsRequest
	respond  respondFunc
}

func (f *fakeDirections) Directions(ctx context.Context, req directions.DirectionsRequest) ([]models.RawItinerary, error) {
	f.mu.Lock()
	call := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(call, req.DepartAt)
}

func (f *fakeDirections) departures() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.DepartAt
	}
	return out
}

// script answers call i with batches[i], and with no results once the script runs out
func script(batches ...[]models.RawItinerary) respondFunc {
	return func(call int, _ time.Time) ([]models.RawItinerary, error) {
		if call < len(batches) {
			return batches[call], nil
		}
		return nil, nil
	}
}

// timetable behaves like the real service: up to three itineraries departing at or
// after the requested instant
func timetable(departures []time.Time) respondFunc {
	return func(_ int, departAt time.Time) ([]models.RawItinerary, error) {
		var out []models.RawItinerary
		for _, dep := range departures {
			if dep.Before(departAt) {
				continue
			}
			out = append(out, ride("JT", dep, dep.Add(35*time.Minute)))
			if len(out) == 3 {
				break
			}
		}
		return out, nil
	}
}
