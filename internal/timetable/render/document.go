// Package render turns a finished day into its final document.
package render

import (
	"time"

	"github.com/transit-daytable/internal/timetable/normalize"
	"github.com/transit-daytable/internal/timetable/planner"
	"github.com/transit-daytable/pkg/timetable/models"
)

// Document is everything a template sees. Itineraries are read-only here.
type Document struct {
	Origin                  string                  `json:"origin"`
	Destination             string                  `json:"destination"`
	Date                    string                  `json:"date"`
	TimeZone                models.Zone             `json:"time_zone"`
	Window                  models.DayWindow        `json:"window"`
	Itineraries             models.ResultSet        `json:"itineraries"`
	Localities              map[string]string       `json:"localities,omitempty"`
	VehicleTypeNames        map[string]string       `json:"vehicle_type_names,omitempty"`
	StationNameReplacements []normalize.Replacement `json:"station_name_replacements,omitempty"`
	Complete                bool                    `json:"complete"`
	Stats                   planner.Stats           `json:"stats"`
	GeneratedAt             time.Time               `json:"generated_at"`
}

// Locality returns the locality of a stop, or "" when unknown
func (d Document) Locality(loc models.LatLng) string {
	return d.Localities[loc.String()]
}
