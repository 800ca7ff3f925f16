package directions

import (
	"strings"
	"time"

	"github.com/transit-daytable/pkg/timetable/models"
)

// convertRoute flattens a route into legs. Transit steps carry their own stops and
// instants; steps without transit details (walking) get stop names and instants
// derived from the neighbouring transit steps, the route endpoints and the step
// duration. Missing data is left zero and rejected later by the normalizer.
func convertRoute(r route) models.RawItinerary {
	var legs []models.Leg
	for _, rl := range r.Legs {
		legs = append(legs, convertRouteLeg(rl)...)
	}
	return models.RawItinerary{Legs: legs}
}

func convertRouteLeg(rl routeLeg) []models.Leg {
	legs := make([]models.Leg, 0, len(rl.Steps))

	// cursor is the instant and place the traveller is at after the previous step
	cursorTime := rl.DepartureTime.Time
	cursorStop := models.Stop{Name: rl.StartAddress, Location: rl.StartLocation.model()}

	for i, s := range rl.Steps {
		if s.TransitDetails != nil {
			leg := transitLeg(s)
			legs = append(legs, leg)
			cursorTime = leg.Arrival
			cursorStop = leg.ArrivalStop
			continue
		}

		next, hasNext := nextTransit(rl.Steps[i+1:])
		duration := time.Duration(s.Duration.Value) * time.Second

		leg := models.Leg{
			Mode:          connectorMode(s.TravelMode),
			VehicleType:   strings.ToUpper(s.TravelMode),
			DepartureStop: cursorStop,
			Departure:     cursorTime,
		}
		if leg.DepartureStop.Location.IsZero() {
			leg.DepartureStop.Location = s.StartLocation.model()
		}

		switch {
		case hasNext:
			leg.ArrivalStop = models.Stop{
				Name:     next.DepartureStop.Name,
				Location: next.DepartureStop.Location.model(),
			}
			nextDep := next.DepartureTime.Time
			if leg.Departure.IsZero() && !nextDep.IsZero() {
				leg.Departure = nextDep.Add(-duration)
			}
			leg.Arrival = leg.Departure.Add(duration)
			if !nextDep.IsZero() && leg.Arrival.After(nextDep) {
				leg.Arrival = nextDep
			}
		default:
			leg.ArrivalStop = models.Stop{Name: rl.EndAddress, Location: rl.EndLocation.model()}
			if !rl.ArrivalTime.Time.IsZero() {
				leg.Arrival = rl.ArrivalTime.Time
			} else if !leg.Departure.IsZero() {
				leg.Arrival = leg.Departure.Add(duration)
			}
		}
		if leg.Departure.IsZero() {
			leg.Arrival = time.Time{}
		}

		legs = append(legs, leg)
		cursorTime = leg.Arrival
		cursorStop = leg.ArrivalStop
	}
	return legs
}

func transitLeg(s step) models.Leg {
	td := s.TransitDetails
	line := td.Line.ShortName
	if line == "" {
		line = td.Line.Name
	}
	return models.Leg{
		Mode:        models.ParseMode(td.Line.Vehicle.Type),
		VehicleType: td.Line.Vehicle.Type,
		VehicleName: td.Line.Vehicle.Name,
		Line:        line,
		LineName:    td.Line.Name,
		Headsign:    td.Headsign,
		NumStops:    td.NumStops,
		DepartureStop: models.Stop{
			Name:     td.DepartureStop.Name,
			Location: td.DepartureStop.Location.model(),
		},
		ArrivalStop: models.Stop{
			Name:     td.ArrivalStop.Name,
			Location: td.ArrivalStop.Location.model(),
		},
		Departure: td.DepartureTime.Time,
		Arrival:   td.ArrivalTime.Time,
	}
}

func nextTransit(steps []step) (*transitDetails, bool) {
	for _, s := range steps {
		if s.TransitDetails != nil {
			return s.TransitDetails, true
		}
	}
	return nil, false
}

func connectorMode(travelMode string) models.Mode {
	if strings.EqualFold(travelMode, "WALKING") || travelMode == "" {
		return models.ModeWalking
	}
	return models.ParseMode(travelMode)
}
