// Package planner acquires a full day of transit itineraries from a service that can
// only answer "what departs at or after instant X".
package planner

import (
	"context"
	"time"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/internal/directions"
	"github.com/transit-daytable/internal/timetable/retry"
	"github.com/transit-daytable/pkg/timetable/models"
)

// Directions is the single-instant query primitive
type Directions interface {
	Directions(ctx context.Context, req directions.DirectionsRequest) ([]models.RawItinerary, error)
}

// Query is the fixed part of every call made for one day
type Query struct {
	Origin       models.Place
	Destination  models.Place
	Language     string
	MaxTransfers int
}

// Batch is the outcome of one planner call
type Batch struct {
	// Itineraries that passed the transfer filter, in service order
	Itineraries []models.RawItinerary
	// Received is the number of itineraries the service returned before filtering
	Received int
	Filtered int
	// Latest is the latest dated departure among all received itineraries, filtered
	// or not. Zero when nothing dated was received.
	Latest time.Time
	// NoTransitOptions is set when the service reported no connections from departAt on
	NoTransitOptions bool
}

// Empty reports whether the service gave nothing to advance past
func (b Batch) Empty() bool {
	return b.NoTransitOptions || b.Received == 0
}

type TimestampPlanner struct {
	directions Directions
	policy     retry.Policy
	diag       *Diagnostics
	logger     logger.Logger
}

func NewTimestampPlanner(d Directions, policy retry.Policy, diag *Diagnostics, log logger.Logger) *TimestampPlanner {
	if diag == nil {
		diag = NewDiagnostics(log)
	}
	return &TimestampPlanner{
		directions: d,
		policy:     policy,
		diag:       diag,
		logger:     log,
	}
}

// Plan asks for itineraries departing at or after departAt. NoTransitOptions is not an
// error here; it is reported on the batch. Transient failures are retried under the
// policy; anything else is returned as is.
func (p *TimestampPlanner) Plan(ctx context.Context, q Query, departAt time.Time) (Batch, error) {
	req := directions.DirectionsRequest{
		Origin:      q.Origin,
		Destination: q.Destination,
		DepartAt:    departAt,
		Language:    q.Language,
	}

	// an in-flight call is never interrupted; cancellation is observed between calls
	// and during backoff sleeps
	callCtx := context.WithoutCancel(ctx)

	var raw []models.RawItinerary
	err := retry.Do(ctx, p.policy, func() error {
		p.diag.call()
		var err error
		raw, err = p.directions.Directions(callCtx, req)
		return err
	}, p.diag.retry)

	switch {
	case perr.IsKind(err, perr.KindNoTransitOptions):
		p.logger.Debug("No transit options",
			"depart_at", departAt.Format(time.RFC3339))
		return Batch{NoTransitOptions: true}, nil
	case err != nil:
		return Batch{}, err
	}

	batch := Batch{Received: len(raw)}
	for _, it := range raw {
		if dep := it.Departure(); dep.After(batch.Latest) {
			batch.Latest = dep
		}
		if it.Transfers() > q.MaxTransfers {
			batch.Filtered++
			continue
		}
		batch.Itineraries = append(batch.Itineraries, it)
	}
	if batch.Filtered > 0 {
		p.diag.filtered(batch.Filtered)
	}

	p.logger.Debug("Planned batch",
		"depart_at", departAt.Format(time.RFC3339),
		"received", batch.Received,
		"filtered", batch.Filtered,
		"latest", batch.Latest.Format(time.RFC3339))

	return batch, nil
}
