package tz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/internal/directions"
	"github.com/transit-daytable/internal/timetable/retry"
	"github.com/transit-daytable/pkg/timetable/models"
)

type fakeLookup struct {
	geoErr     error
	tz         directions.TimeZoneResult
	tzErrs     []error
	geoCalls   int
	tzCalls    int
	askedAt    time.Time
	asked      []time.Time
	askedPlace models.Place
}

func (f *fakeLookup) Geocode(ctx context.Context, place models.Place) (directions.GeocodeResult, error) {
	f.geoCalls++
	f.askedPlace = place
	if f.geoErr != nil {
		return directions.GeocodeResult{}, f.geoErr
	}
	return directions.GeocodeResult{Address: string(place), Location: models.LatLng{Lat: 35.68, Lng: 139.76}}, nil
}

func (f *fakeLookup) TimeZone(ctx context.Context, loc models.LatLng, at time.Time) (directions.TimeZoneResult, error) {
	f.tzCalls++
	f.askedAt = at
	f.asked = append(f.asked, at)
	if len(f.tzErrs) > 0 {
		err := f.tzErrs[0]
		f.tzErrs = f.tzErrs[1:]
		return directions.TimeZoneResult{}, err
	}
	return f.tz, nil
}

var policy = retry.Policy{Attempts: 3, Initial: time.Millisecond, Max: time.Millisecond}

func TestWindowAnchoredToOriginNotMachine(t *testing.T) {
	// The process runs at UTC-5 while the origin is at UTC+9.
	orig := time.Local
	time.Local = time.FixedZone("EST", -5*3600)
	defer func() { time.Local = orig }()

	lookup := &fakeLookup{tz: directions.TimeZoneResult{ID: "Asia/Tokyo", RawOffset: 9 * 3600}}
	zone, err := NewResolver(lookup, policy, logger.Nop()).Resolve(context.Background(), "Tokyo Station", "2020-07-01")
	require.NoError(t, err)

	w, err := WindowFor("2020-07-01", zone)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2020, 6, 30, 15, 0, 0, 0, time.UTC), w.Start.UTC())
	assert.Equal(t, time.Date(2020, 7, 1, 15, 0, 0, 0, time.UTC), w.End.UTC())
	_, offset := w.Start.Zone()
	assert.Equal(t, 9*3600, offset)
	assert.Equal(t, 1, lookup.geoCalls)
	assert.Equal(t, 1, lookup.tzCalls)
	assert.Equal(t, "2020-07-01", lookup.askedAt.UTC().Format("2006-01-02"))
}

func TestResolveFarEastQueriesLocalNoon(t *testing.T) {
	// NZ leaves daylight saving on 2021-04-04; noon UTC is already the 5th in Auckland.
	lookup := &fakeLookup{tz: directions.TimeZoneResult{ID: "Pacific/Auckland", RawOffset: 12 * 3600}}
	zone, err := NewResolver(lookup, policy, logger.Nop()).Resolve(context.Background(), "Auckland", "2021-04-04")
	require.NoError(t, err)
	assert.Equal(t, "Pacific/Auckland", zone.ID)

	require.Len(t, lookup.asked, 2)
	assert.Equal(t, time.Date(2021, 4, 4, 12, 0, 0, 0, time.UTC), lookup.asked[0].UTC())
	assert.Equal(t, time.Date(2021, 4, 4, 0, 0, 0, 0, time.UTC), lookup.asked[1].UTC())

	// Kiritimati at UTC+14
	lookup = &fakeLookup{tz: directions.TimeZoneResult{ID: "Pacific/Kiritimati", RawOffset: 14 * 3600}}
	_, err = NewResolver(lookup, policy, logger.Nop()).Resolve(context.Background(), "Kiritimati", "2021-04-04")
	require.NoError(t, err)
	require.Len(t, lookup.asked, 2)
	assert.Equal(t, "2021-04-04 12:00", lookup.asked[1].Add(14*time.Hour).UTC().Format("2006-01-02 15:04"))
}

func TestWindowUnknownZoneFallsBackToOffset(t *testing.T) {
	lookup := &fakeLookup{tz: directions.TimeZoneResult{ID: "Mars/Olympus_Mons", RawOffset: 3600, DstOffset: 3600}}
	zone, err := NewResolver(lookup, policy, logger.Nop()).Resolve(context.Background(), "X", "2020-07-01")
	require.NoError(t, err)

	w, err := WindowFor("2020-07-01", zone)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 6, 30, 22, 0, 0, 0, time.UTC), w.Start.UTC())
	assert.Equal(t, 24*time.Hour, w.End.Sub(w.Start))
}

func TestWindowAcrossDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	w, err := WindowFor("2020-03-29", models.Zone{ID: "Europe/Berlin", Location: loc})
	require.NoError(t, err)
	assert.Equal(t, 23*time.Hour, w.End.Sub(w.Start))
	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(w.End))
}

func TestResolveGeocodeErrorIsFatalWithoutRetry(t *testing.T) {
	lookup := &fakeLookup{geoErr: perr.New(perr.KindGeocode, "geocode", "ambiguous")}
	_, err := NewResolver(lookup, policy, logger.Nop()).Resolve(context.Background(), "Springfield", "2020-07-01")

	require.Error(t, err)
	assert.Equal(t, perr.KindGeocode, perr.KindOf(err))
	assert.Equal(t, 1, lookup.geoCalls)
	assert.Equal(t, 0, lookup.tzCalls)
}

func TestResolveRetriesTransientTimeZoneErrors(t *testing.T) {
	lookup := &fakeLookup{
		tz:     directions.TimeZoneResult{ID: "Asia/Tokyo", RawOffset: 9 * 3600},
		tzErrs: []error{perr.New(perr.KindTransient, "tz", "503")},
	}
	zone, err := NewResolver(lookup, policy, logger.Nop()).Resolve(context.Background(), "Tokyo", "2020-07-01")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", zone.ID)
	assert.Equal(t, 2, lookup.tzCalls)
}

func TestResolveInvalidDate(t *testing.T) {
	_, err := NewResolver(&fakeLookup{}, policy, logger.Nop()).Resolve(context.Background(), "Tokyo", "07/01/2020")
	require.Error(t, err)
	assert.Equal(t, perr.KindConfig, perr.KindOf(err))
}
