// Package normalize flattens raw itineraries into display-ready records.
package normalize

import (
	"strings"
	"time"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/pkg/timetable/models"
)

const op = "normalize.Normalize"

// Replacement is one ordered find/replace applied to stop names
type Replacement struct {
	Find    string
	Replace string
}

// Options carries the substitution tables. It is plain data; nothing here is global.
type Options struct {
	VehicleTypeNames        map[string]string
	StationNameReplacements []Replacement
	// Location, when set, is the zone every instant is presented in (the origin's zone)
	Location *time.Location
}

// StationName applies the replacements in order
func (o Options) StationName(name string) string {
	for _, r := range o.StationNameReplacements {
		if r.Find == "" {
			continue
		}
		name = strings.ReplaceAll(name, r.Find, r.Replace)
	}
	return name
}

// VehicleType returns the display override for a raw token, or the token itself
func (o Options) VehicleType(token string) string {
	if v, ok := o.VehicleTypeNames[token]; ok {
		return v
	}
	return token
}

func (o Options) instant(t time.Time) time.Time {
	if o.Location == nil {
		return t
	}
	return t.In(o.Location)
}

// Normalize validates raw and produces its flattened view. It fails with
// KindMalformedItinerary when a required field is missing or legs overlap in time.
func Normalize(raw models.RawItinerary, opts Options) (models.NormalizedItinerary, error) {
	if err := validate(raw); err != nil {
		return models.NormalizedItinerary{}, err
	}

	legs := make([]models.LegSummary, 0, len(raw.Legs))
	for _, l := range raw.Legs {
		legs = append(legs, models.LegSummary{
			Mode:              l.Mode,
			VehicleType:       opts.VehicleType(l.VehicleType),
			Vehicle:           l.VehicleName,
			Line:              l.Line,
			LineName:          l.LineName,
			Headsign:          l.Headsign,
			NumStops:          l.NumStops,
			DepartureStop:     opts.StationName(l.DepartureStop.Name),
			DepartureLocation: l.DepartureStop.Location,
			DepartureTime:     opts.instant(l.Departure),
			ArrivalStop:       opts.StationName(l.ArrivalStop.Name),
			ArrivalLocation:   l.ArrivalStop.Location,
			ArrivalTime:       opts.instant(l.Arrival),
		})
	}

	return models.NormalizedItinerary{
		Departure: opts.instant(raw.Departure()),
		Arrival:   opts.instant(raw.Arrival()),
		Transfers: raw.Transfers(),
		Legs:      legs,
	}, nil
}

func validate(raw models.RawItinerary) error {
	if len(raw.Legs) == 0 {
		return perr.New(perr.KindMalformedItinerary, op, "itinerary has no legs")
	}
	for i, l := range raw.Legs {
		switch {
		case l.DepartureStop.Name == "":
			return perr.Newf(perr.KindMalformedItinerary, op, "leg %d: missing departure stop name", i)
		case l.ArrivalStop.Name == "":
			return perr.Newf(perr.KindMalformedItinerary, op, "leg %d: missing arrival stop name", i)
		case l.Departure.IsZero():
			return perr.Newf(perr.KindMalformedItinerary, op, "leg %d: missing departure instant", i)
		case l.Arrival.IsZero():
			return perr.Newf(perr.KindMalformedItinerary, op, "leg %d: missing arrival instant", i)
		case l.Arrival.Before(l.Departure):
			return perr.Newf(perr.KindMalformedItinerary, op, "leg %d: arrives before it departs", i)
		}
		if i > 0 && l.Departure.Before(raw.Legs[i-1].Arrival) {
			return perr.Newf(perr.KindMalformedItinerary, op, "leg %d departs before leg %d arrives", i, i-1)
		}
	}
	return nil
}
