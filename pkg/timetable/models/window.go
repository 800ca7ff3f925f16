package models

import "time"

// Zone is the origin's time zone as resolved for the query date
type Zone struct {
	ID        string         `json:"id"`
	UTCOffset int            `json:"utc_offset_seconds"`
	Location  *time.Location `json:"-"`
}

// DayWindow is the [Start, End) interval of one local calendar day at the origin
type DayWindow struct {
	Date  string    `json:"date"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in [Start, End)
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
