package archive

import (
	"context"
	"time"

	perr "github.com/transit-daytable/internal/common/errors"
)

// PruneResult reports what a retention pass removed
type PruneResult struct {
	Cutoff      time.Time
	RunsDeleted int64
}

// Prune deletes archived runs created before now minus retention. Their itineraries
// go with them through the foreign key cascade.
func (a *Archive) Prune(ctx context.Context, retention time.Duration) (PruneResult, error) {
	const op = "archive.Prune"

	result := PruneResult{Cutoff: a.now().Add(-retention).UTC()}
	if retention <= 0 {
		return result, perr.Newf(perr.KindConfig, op, "retention must be positive, got %s", retention)
	}

	a.logger.Info("Starting cleanup of archived runs", "cutoff", result.Cutoff.Format(time.RFC3339))

	tx, err := a.store.Begin(ctx)
	if err != nil {
		return result, perr.Wrap(err, perr.KindUnknown, op, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return result, perr.Wrap(err, perr.KindUnknown, op, "ensuring schema")
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM timetable_runs WHERE created_at < $1`, result.Cutoff)
	if err != nil {
		return result, perr.Wrap(err, perr.KindUnknown, op, "deleting runs")
	}
	if result.RunsDeleted, err = res.RowsAffected(); err != nil {
		return result, perr.Wrap(err, perr.KindUnknown, op, "counting deleted runs")
	}

	if err := tx.Commit(); err != nil {
		return result, perr.Wrap(err, perr.KindUnknown, op, "committing transaction")
	}

	a.logger.Info("Archive cleanup completed",
		"cutoff", result.Cutoff.Format(time.RFC3339),
		"runs_deleted", result.RunsDeleted)

	return result, nil
}
