package planner

import (
	"fmt"
	"sync"
	"time"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
)

// Diagnostic is one side-channel event: a dropped itinerary, a retry, incomplete coverage
type Diagnostic struct {
	Kind    perr.Kind              `json:"kind"`
	Message string                 `json:"message"`
	At      time.Time              `json:"at"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Stats counts what happened during one acquisition
type Stats struct {
	Calls    int `json:"calls"`
	Retries  int `json:"retries"`
	Dropped  int `json:"dropped"`
	Filtered int `json:"filtered"`
}

// Diagnostics collects events reported while a day is acquired. Safe for concurrent use.
type Diagnostics struct {
	mu      sync.Mutex
	logger  logger.Logger
	entries []Diagnostic
	stats   Stats
	now     func() time.Time
}

func NewDiagnostics(log logger.Logger) *Diagnostics {
	if log == nil {
		log = logger.Nop()
	}
	return &Diagnostics{
		logger: log,
		now:    time.Now,
	}
}

// Report records a diagnostic and logs it as a warning. fields are key/value pairs.
func (d *Diagnostics) Report(kind perr.Kind, msg string, fields ...interface{}) {
	entry := Diagnostic{
		Kind:    kind,
		Message: msg,
		At:      d.now(),
		Fields:  fieldMap(fields),
	}

	d.mu.Lock()
	d.entries = append(d.entries, entry)
	d.mu.Unlock()

	d.logger.Warn(msg, append([]interface{}{"kind", kind.String()}, fields...)...)
}

func (d *Diagnostics) Entries() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.entries))
	copy(out, d.entries)
	return out
}

// Count returns how many diagnostics of kind were reported
func (d *Diagnostics) Count(kind perr.Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (d *Diagnostics) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Diagnostics) call() {
	d.mu.Lock()
	d.stats.Calls++
	d.mu.Unlock()
}

func (d *Diagnostics) filtered(n int) {
	d.mu.Lock()
	d.stats.Filtered += n
	d.mu.Unlock()
}

func (d *Diagnostics) retry(attempt int, err error, wait time.Duration) {
	d.mu.Lock()
	d.stats.Retries++
	d.mu.Unlock()
	d.Report(perr.KindTransient, "Directions call failed, retrying",
		"attempt", attempt,
		"wait", wait.String(),
		"error", err)
}

func (d *Diagnostics) dropped(err error, fields ...interface{}) {
	d.mu.Lock()
	d.stats.Dropped++
	d.mu.Unlock()
	d.Report(perr.KindMalformedItinerary, "Dropped malformed itinerary",
		append(fields, "error", err)...)
}

func fieldMap(fields []interface{}) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		if err, ok := fields[i+1].(error); ok {
			m[key] = err.Error()
			continue
		}
		m[key] = fields[i+1]
	}
	return m
}
