package planner

import (
	"context"
	"time"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/internal/timetable/normalize"
	"github.com/transit-daytable/pkg/timetable/models"
)

const (
	DefaultCallCeiling = 50
	cursorStep         = time.Minute
)

// Planner answers one departure instant; TimestampPlanner is the production implementation
type Planner interface {
	Plan(ctx context.Context, q Query, departAt time.Time) (Batch, error)
}

// Result is a finished (or partial) day
type Result struct {
	Itineraries models.ResultSet
	// Complete is false when the call ceiling was reached or the run was canceled
	Complete bool
	Calls    int
}

// DayCoverageDriver walks a cursor across the day window, one planner call at a time
type DayCoverageDriver struct {
	planner Planner
	opts    normalize.Options
	ceiling int
	diag    *Diagnostics
	logger  logger.Logger
}

func NewDayCoverageDriver(p Planner, opts normalize.Options, ceiling int, diag *Diagnostics, log logger.Logger) *DayCoverageDriver {
	if ceiling < 1 {
		ceiling = DefaultCallCeiling
	}
	if diag == nil {
		diag = NewDiagnostics(log)
	}
	return &DayCoverageDriver{
		planner: p,
		opts:    opts,
		ceiling: ceiling,
		diag:    diag,
		logger:  log,
	}
}

// PlanDay collects every itinerary departing inside window. Fatal planner errors abort
// the day; the result gathered so far is still returned alongside the error. Reaching the
// call ceiling is not an error: the result is returned with Complete unset and a
// CoverageIncomplete diagnostic.
func (d *DayCoverageDriver) PlanDay(ctx context.Context, q Query, window models.DayWindow) (Result, error) {
	const op = "planner.PlanDay"

	var (
		res    Result
		cursor = window.Start
		seen   = make(map[string]struct{})
	)

	finish := func() Result {
		res.Itineraries.SortStable()
		return res
	}

	for res.Calls < d.ceiling {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("Day acquisition canceled",
				"cursor", cursor.Format(time.RFC3339),
				"itineraries", len(res.Itineraries))
			return finish(), perr.Wrap(err, perr.KindCanceled, op, "acquisition canceled")
		}

		batch, err := d.planner.Plan(ctx, q, cursor)
		res.Calls++
		if err != nil {
			return finish(), err
		}
		if batch.Empty() {
			res.Complete = true
			break
		}

		for _, raw := range batch.Itineraries {
			d.add(&res, seen, raw, window)
		}

		// undated batches (walking-only routes) fall through to the one-step floor
		next := batch.Latest.Add(cursorStep)
		if floor := cursor.Add(cursorStep); next.Before(floor) {
			next = floor
		}
		cursor = next
		if !cursor.Before(window.End) {
			res.Complete = true
			break
		}
	}

	if !res.Complete {
		d.diag.Report(perr.KindCoverageIncomplete, "Call ceiling reached before the end of the day",
			"ceiling", d.ceiling,
			"cursor", cursor.Format(time.RFC3339),
			"window_end", window.End.Format(time.RFC3339))
	}

	d.logger.Info("Day acquired",
		"date", window.Date,
		"calls", res.Calls,
		"itineraries", len(res.Itineraries),
		"complete", res.Complete)

	return finish(), nil
}

func (d *DayCoverageDriver) add(res *Result, seen map[string]struct{}, raw models.RawItinerary, window models.DayWindow) {
	key := raw.Key()
	if _, ok := seen[key]; ok {
		return
	}
	seen[key] = struct{}{}

	n, err := normalize.Normalize(raw, d.opts)
	if err != nil {
		d.diag.dropped(err, "departure", raw.Departure().Format(time.RFC3339))
		return
	}
	if !window.Contains(n.Departure) {
		return
	}
	res.Itineraries = append(res.Itineraries, n)
}
