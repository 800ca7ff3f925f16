// Package timetable assembles one day's timetable between two places: it resolves the
// origin's zone, walks the day with the coverage driver and prepares the document.
package timetable

import (
	"context"
	"time"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/internal/timetable/localities"
	"github.com/transit-daytable/internal/timetable/normalize"
	"github.com/transit-daytable/internal/timetable/planner"
	"github.com/transit-daytable/internal/timetable/render"
	"github.com/transit-daytable/internal/timetable/retry"
	"github.com/transit-daytable/internal/timetable/tz"
)

// Client is every service primitive a run needs; *directions.Client implements it
type Client interface {
	tz.Lookup
	planner.Directions
	localities.Reverser
}

type Options struct {
	Query       planner.Query
	Date        string
	CallCeiling int
	Retry       retry.Policy
	// Display substitutions; the location is filled in from the resolved zone
	Display    normalize.Options
	Localities bool
}

// Run is the outcome of Build. Diagnostics never end up in the document.
type Run struct {
	Document    render.Document
	Diagnostics []planner.Diagnostic
	Stats       planner.Stats
}

type Builder struct {
	client Client
	logger logger.Logger
	now    func() time.Time
}

func NewBuilder(client Client, log logger.Logger) *Builder {
	return &Builder{
		client: client,
		logger: log,
		now:    time.Now,
	}
}

// Build produces the day's document. On a fatal planner error or cancellation the
// partial document is returned with the error. An empty day is NoEligibleItineraries.
func (b *Builder) Build(ctx context.Context, opts Options) (Run, error) {
	const op = "timetable.Build"

	diag := planner.NewDiagnostics(b.logger)
	run := Run{
		Document: render.Document{
			Origin:                  opts.Query.Origin.String(),
			Destination:             opts.Query.Destination.String(),
			Date:                    opts.Date,
			VehicleTypeNames:        opts.Display.VehicleTypeNames,
			StationNameReplacements: opts.Display.StationNameReplacements,
			GeneratedAt:             b.now(),
		},
	}
	finish := func(err error) (Run, error) {
		run.Diagnostics = diag.Entries()
		run.Stats = diag.Stats()
		run.Document.Stats = run.Stats
		return run, err
	}

	zone, err := tz.NewResolver(b.client, opts.Retry, b.logger).Resolve(ctx, opts.Query.Origin, opts.Date)
	if err != nil {
		return finish(err)
	}
	window, err := tz.WindowFor(opts.Date, zone)
	if err != nil {
		return finish(err)
	}
	run.Document.TimeZone = zone
	run.Document.Window = window

	display := opts.Display
	display.Location = zone.Location

	p := planner.NewTimestampPlanner(b.client, opts.Retry, diag, b.logger)
	driver := planner.NewDayCoverageDriver(p, display, opts.CallCeiling, diag, b.logger)

	b.logger.Info("Acquiring day",
		"origin", opts.Query.Origin.String(),
		"destination", opts.Query.Destination.String(),
		"date", opts.Date,
		"zone", zone.ID,
		"window_start", window.Start.Format(time.RFC3339),
		"window_end", window.End.Format(time.RFC3339))

	res, err := driver.PlanDay(ctx, opts.Query, window)
	run.Document.Itineraries = res.Itineraries
	run.Document.Complete = res.Complete
	if err != nil {
		return finish(err)
	}

	if len(res.Itineraries) == 0 {
		return finish(perr.Newf(perr.KindNoEligibleItineraries, op,
			"no itineraries with at most %d transfers on %s; try raising --max-transfers",
			opts.Query.MaxTransfers, opts.Date))
	}

	if opts.Localities {
		run.Document.Localities = localities.NewEnricher(b.client, opts.Retry, diag, b.logger).
			Enrich(ctx, res.Itineraries)
	}

	return finish(nil)
}
