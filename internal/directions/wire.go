package directions

import "github.com/transit-daytable/pkg/timetable/models"

// Response shapes of the directions, geocoding and time zone APIs. Only the
// fields the planner reads are declared.

type directionsResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Routes       []route `json:"routes"`
}

type route struct {
	Legs []routeLeg `json:"legs"`
}

type routeLeg struct {
	DepartureTime models.TransitTime `json:"departure_time"`
	ArrivalTime   models.TransitTime `json:"arrival_time"`
	StartAddress  string             `json:"start_address"`
	EndAddress    string             `json:"end_address"`
	StartLocation latLng             `json:"start_location"`
	EndLocation   latLng             `json:"end_location"`
	Steps         []step             `json:"steps"`
}

type step struct {
	TravelMode     string          `json:"travel_mode"`
	Duration       textValue       `json:"duration"`
	StartLocation  latLng          `json:"start_location"`
	EndLocation    latLng          `json:"end_location"`
	TransitDetails *transitDetails `json:"transit_details"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int64  `json:"value"`
}

type transitDetails struct {
	DepartureStop transitStop        `json:"departure_stop"`
	ArrivalStop   transitStop        `json:"arrival_stop"`
	DepartureTime models.TransitTime `json:"departure_time"`
	ArrivalTime   models.TransitTime `json:"arrival_time"`
	Headsign      string             `json:"headsign"`
	NumStops      int                `json:"num_stops"`
	Line          transitLine        `json:"line"`
}

type transitStop struct {
	Name     string `json:"name"`
	Location latLng `json:"location"`
}

type transitLine struct {
	Name      string  `json:"name"`
	ShortName string  `json:"short_name"`
	Vehicle   vehicle `json:"vehicle"`
}

type vehicle struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l latLng) model() models.LatLng {
	return models.LatLng{Lat: l.Lat, Lng: l.Lng}
}

type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          geometry           `json:"geometry"`
	AddressComponents []addressComponent `json:"address_components"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type timeZoneResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	TimeZoneID   string `json:"timeZoneId"`
	RawOffset    int    `json:"rawOffset"`
	DstOffset    int    `json:"dstOffset"`
}
