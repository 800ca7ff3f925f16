// Package localities names the town or city each stop of a finished day belongs to.
package localities

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/internal/timetable/planner"
	"github.com/transit-daytable/internal/timetable/retry"
	"github.com/transit-daytable/pkg/timetable/models"
)

const DefaultConcurrency = 4

// Reverser is the reverse geocode primitive
type Reverser interface {
	Locality(ctx context.Context, loc models.LatLng) (string, error)
}

type Enricher struct {
	reverser    Reverser
	policy      retry.Policy
	concurrency int
	diag        *planner.Diagnostics
	logger      logger.Logger
}

func NewEnricher(r Reverser, policy retry.Policy, diag *planner.Diagnostics, log logger.Logger) *Enricher {
	if diag == nil {
		diag = planner.NewDiagnostics(log)
	}
	return &Enricher{
		reverser:    r,
		policy:      policy,
		concurrency: DefaultConcurrency,
		diag:        diag,
		logger:      log,
	}
}

type located struct {
	key  string
	name string
}

// Enrich reverse geocodes every distinct non-walking stop in rs and returns a lookup
// keyed by LatLng.String(). Coordinates that cannot be resolved are reported as
// diagnostics and left out of the lookup.
func (e *Enricher) Enrich(ctx context.Context, rs models.ResultSet) map[string]string {
	locations := rs.Locations()
	lookup := make(map[string]string, len(locations))
	if len(locations) == 0 {
		return lookup
	}

	p := pool.NewWithResults[located]().WithMaxGoroutines(e.concurrency)
	for _, loc := range locations {
		loc := loc
		p.Go(func() located {
			var name string
			err := retry.Do(ctx, e.policy, func() error {
				var err error
				name, err = e.reverser.Locality(ctx, loc)
				return err
			}, nil)
			if err != nil {
				e.diag.Report(perr.KindOf(err), "Could not resolve station locality",
					"location", loc.String(),
					"error", err)
				return located{}
			}
			return located{key: loc.String(), name: name}
		})
	}

	for _, l := range p.Wait() {
		if l.key == "" {
			continue
		}
		lookup[l.key] = l.name
	}

	e.logger.Debug("Resolved station localities",
		"stops", len(locations),
		"resolved", len(lookup))

	return lookup
}
