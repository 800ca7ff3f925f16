// Package tz resolves the origin's time zone and the local day window for a query date.
// The machine's local zone is never consulted.
package tz

import (
	"context"
	"time"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/internal/directions"
	"github.com/transit-daytable/internal/timetable/retry"
	"github.com/transit-daytable/pkg/timetable/models"
)

const dateLayout = "2006-01-02"

// Lookup is the geocode and time zone primitive
type Lookup interface {
	Geocode(ctx context.Context, place models.Place) (directions.GeocodeResult, error)
	TimeZone(ctx context.Context, loc models.LatLng, at time.Time) (directions.TimeZoneResult, error)
}

type Resolver struct {
	lookup Lookup
	policy retry.Policy
	logger logger.Logger
}

func NewResolver(lookup Lookup, policy retry.Policy, log logger.Logger) *Resolver {
	return &Resolver{lookup: lookup, policy: policy, logger: log}
}

// Resolve returns the zone in effect at place on date. Geocode failures are fatal
// and not retried; transient service errors are retried under the policy.
func (r *Resolver) Resolve(ctx context.Context, place models.Place, date string) (models.Zone, error) {
	const op = "tz.Resolve"

	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return models.Zone{}, perr.Wrap(err, perr.KindConfig, op, "invalid date")
	}
	// Noon UTC is on the requested date from UTC-12 to UTC+11; further east it is
	// re-queried at the local noon implied by the first answer.
	at := day.Add(12 * time.Hour)

	var geo directions.GeocodeResult
	err = retry.Do(ctx, r.policy, func() error {
		var err error
		geo, err = r.lookup.Geocode(ctx, place)
		return err
	}, r.onRetry("geocode"))
	if err != nil {
		return models.Zone{}, err
	}

	res, err := r.timeZone(ctx, geo.Location, at)
	if err != nil {
		return models.Zone{}, err
	}
	offset := time.Duration(res.UTCOffset()) * time.Second
	if at.Add(offset).Format(dateLayout) != date {
		at = day.Add(12*time.Hour - offset)
		r.logger.Debug("Re-querying time zone at local noon",
			"date", date,
			"at", at.Format(time.RFC3339))
		if res, err = r.timeZone(ctx, geo.Location, at); err != nil {
			return models.Zone{}, err
		}
	}

	zone := models.Zone{ID: res.ID, UTCOffset: res.UTCOffset()}
	loc, err := time.LoadLocation(res.ID)
	if err != nil || res.ID == "" {
		r.logger.Warn("Unknown time zone id, using fixed offset",
			"zone", res.ID,
			"utc_offset", res.UTCOffset(),
			"error", err)
		loc = time.FixedZone(res.ID, res.UTCOffset())
	}
	zone.Location = loc

	r.logger.Debug("Resolved origin time zone",
		"place", place.String(),
		"address", geo.Address,
		"zone", zone.ID,
		"utc_offset", zone.UTCOffset)

	return zone, nil
}

func (r *Resolver) timeZone(ctx context.Context, loc models.LatLng, at time.Time) (directions.TimeZoneResult, error) {
	var res directions.TimeZoneResult
	err := retry.Do(ctx, r.policy, func() error {
		var err error
		res, err = r.lookup.TimeZone(ctx, loc, at)
		return err
	}, r.onRetry("timezone"))
	return res, err
}

func (r *Resolver) onRetry(what string) retry.Notify {
	return func(attempt int, err error, wait time.Duration) {
		r.logger.Warn("Retrying time zone lookup",
			"call", what,
			"attempt", attempt,
			"wait", wait.String(),
			"error", err)
	}
}

// WindowFor computes [local midnight, next local midnight) of date in zone.
// Days with a DST transition are 23 or 25 hours long.
func WindowFor(date string, zone models.Zone) (models.DayWindow, error) {
	loc := zone.Location
	if loc == nil {
		loc = time.FixedZone(zone.ID, zone.UTCOffset)
	}
	start, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return models.DayWindow{}, perr.Wrap(err, perr.KindConfig, "tz.WindowFor", "invalid date")
	}
	end := time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, loc)
	return models.DayWindow{Date: date, Start: start, End: end}, nil
}
