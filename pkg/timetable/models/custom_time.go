package models

import (
	"encoding/json"
	"fmt"
	"time"
	_ "time/tzdata"
)

// TransitTime is the {text, time_zone, value} triple the directions API uses for
// departure and arrival instants. value is a unix timestamp; time_zone is an IANA id.
type TransitTime struct {
	time.Time
	Text string
}

type transitTimeWire struct {
	Text     string `json:"text"`
	TimeZone string `json:"time_zone"`
	Value    int64  `json:"value"`
}

// UnmarshalJSON decodes the instant into its reported zone, falling back to UTC when the zone is unknown
func (tt *TransitTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var w transitTimeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("unable to parse transit time %s: %w", string(b), err)
	}
	if w.Value == 0 {
		return nil
	}

	t := time.Unix(w.Value, 0).UTC()
	if w.TimeZone != "" {
		if loc, err := time.LoadLocation(w.TimeZone); err == nil {
			t = t.In(loc)
		}
	}
	tt.Time = t
	tt.Text = w.Text
	return nil
}

// MarshalJSON writes the triple back out
func (tt TransitTime) MarshalJSON() ([]byte, error) {
	if tt.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(transitTimeWire{
		Text:     tt.Text,
		TimeZone: tt.Time.Location().String(),
		Value:    tt.Time.Unix(),
	})
}
