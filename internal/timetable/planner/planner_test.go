package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/pkg/timetable/models"
)

func newTestPlanner(respond respondFunc) (*TimestampPlanner, *fakeDirections, *Diagnostics) {
	fake := &fakeDirections{respond: respond}
	diag := NewDiagnostics(logger.Nop())
	return NewTimestampPlanner(fake, testPolicy, diag, logger.Nop()), fake, diag
}

func TestTimestampPlanner_FiltersByTransfers(t *testing.T) {
	direct := hops(1, clock(6, 0))
	twoChanges := hops(3, clock(7, 0))
	p, _, diag := newTestPlanner(script([]models.RawItinerary{direct, twoChanges}))

	q := testQuery
	q.MaxTransfers = 1
	batch, err := p.Plan(context.Background(), q, clock(0, 0))
	require.NoError(t, err)

	assert.Equal(t, 2, batch.Received)
	assert.Equal(t, 1, batch.Filtered)
	require.Len(t, batch.Itineraries, 1)
	assert.Equal(t, direct.Key(), batch.Itineraries[0].Key())
	assert.True(t, batch.Latest.Equal(clock(7, 0)), "latest departure counts filtered itineraries")
	assert.False(t, batch.Empty())
	assert.Equal(t, 1, diag.Stats().Filtered)
}

func TestTimestampPlanner_SendsQuery(t *testing.T) {
	p, fake, _ := newTestPlanner(script())

	_, err := p.Plan(context.Background(), testQuery, clock(5, 30))
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, testQuery.Origin, req.Origin)
	assert.Equal(t, testQuery.Destination, req.Destination)
	assert.Equal(t, "en", req.Language)
	assert.True(t, req.DepartAt.Equal(clock(5, 30)))
}

func TestTimestampPlanner_NoTransitOptions(t *testing.T) {
	p, _, _ := newTestPlanner(func(int, time.Time) ([]models.RawItinerary, error) {
		return nil, perr.New(perr.KindNoTransitOptions, "test", "zero results")
	})

	batch, err := p.Plan(context.Background(), testQuery, clock(0, 0))
	require.NoError(t, err)
	assert.True(t, batch.NoTransitOptions)
	assert.True(t, batch.Empty())
}

func TestTimestampPlanner_RetriesTransient(t *testing.T) {
	p, fake, diag := newTestPlanner(func(call int, dep time.Time) ([]models.RawItinerary, error) {
		if call < 2 {
			return nil, perr.New(perr.KindTransient, "test", "HTTP 503")
		}
		return []models.RawItinerary{ride("JT", clock(6, 0), clock(6, 35))}, nil
	})

	batch, err := p.Plan(context.Background(), testQuery, clock(0, 0))
	require.NoError(t, err)
	assert.Len(t, batch.Itineraries, 1)
	assert.Len(t, fake.requests, 3)

	stats := diag.Stats()
	assert.Equal(t, 3, stats.Calls)
	assert.Equal(t, 2, stats.Retries)
	assert.Equal(t, 2, diag.Count(perr.KindTransient))
}

func TestTimestampPlanner_TransientExhausted(t *testing.T) {
	p, fake, _ := newTestPlanner(func(int, time.Time) ([]models.RawItinerary, error) {
		return nil, perr.New(perr.KindTransient, "test", "HTTP 429")
	})

	_, err := p.Plan(context.Background(), testQuery, clock(0, 0))
	require.Error(t, err)
	assert.Equal(t, perr.KindTransient, perr.KindOf(err))
	assert.Len(t, fake.requests, testPolicy.Attempts)
}

func TestTimestampPlanner_FatalNotRetried(t *testing.T) {
	for _, kind := range []perr.Kind{perr.KindQuotaOrAuth, perr.KindConfig} {
		t.Run(kind.String(), func(t *testing.T) {
			p, fake, _ := newTestPlanner(func(int, time.Time) ([]models.RawItinerary, error) {
				return nil, perr.New(kind, "test", "rejected")
			})

			_, err := p.Plan(context.Background(), testQuery, clock(0, 0))
			require.Error(t, err)
			assert.Equal(t, kind, perr.KindOf(err))
			assert.Len(t, fake.requests, 1)
		})
	}
}

func TestDiagnostics_Fields(t *testing.T) {
	diag := NewDiagnostics(logger.Nop())
	at := time.Date(2020, 7, 1, 12, 0, 0, 0, time.UTC)
	diag.now = func() time.Time { return at }

	diag.Report(perr.KindCoverageIncomplete, "ceiling reached", "ceiling", 50, "error", errors.New("boom"))

	entries := diag.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, perr.KindCoverageIncomplete, entries[0].Kind)
	assert.Equal(t, at, entries[0].At)
	assert.Equal(t, map[string]interface{}{"ceiling": 50, "error": "boom"}, entries[0].Fields)
}
