// Package archive exports a finished timetable to Postgres. Rows are written once and
// never read back by this tool.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/transit-daytable/internal/common/db"
	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/internal/timetable/render"
)

const defaultBatchSize = 100

const schema = `
CREATE TABLE IF NOT EXISTS timetable_runs (
	run_id      UUID PRIMARY KEY,
	origin      TEXT NOT NULL,
	destination TEXT NOT NULL,
	date        DATE NOT NULL,
	time_zone   TEXT NOT NULL,
	utc_offset  INTEGER NOT NULL,
	complete    BOOLEAN NOT NULL,
	calls       INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS timetable_itineraries (
	run_id    UUID NOT NULL REFERENCES timetable_runs (run_id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	departure TIMESTAMPTZ NOT NULL,
	arrival   TIMESTAMPTZ NOT NULL,
	transfers INTEGER NOT NULL,
	legs      JSONB NOT NULL,
	PRIMARY KEY (run_id, position)
);`

var itineraryColumns = []string{"run_id", "position", "departure", "arrival", "transfers", "legs"}

// Tx is the part of *sql.Tx the archive needs
type Tx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Commit() error
	Rollback() error
}

// Beginner opens a transaction
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

type dbBeginner struct {
	db *db.DB
}

func (b dbBeginner) Begin(ctx context.Context) (Tx, error) {
	tx, err := b.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

type Archive struct {
	store     Beginner
	batchSize int
	logger    logger.Logger
	newID     func() string
	now       func() time.Time
}

// New archives into conn
func New(conn *db.DB, log logger.Logger) *Archive {
	return NewWithBeginner(dbBeginner{db: conn}, log)
}

func NewWithBeginner(store Beginner, log logger.Logger) *Archive {
	return &Archive{
		store:     store,
		batchSize: defaultBatchSize,
		logger:    log,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Save writes the run and all of its itineraries in one transaction and returns the run id
func (a *Archive) Save(ctx context.Context, doc render.Document) (string, error) {
	const op = "archive.Save"

	tx, err := a.store.Begin(ctx)
	if err != nil {
		return "", perr.Wrap(err, perr.KindUnknown, op, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return "", perr.Wrap(err, perr.KindUnknown, op, "ensuring schema")
	}

	runID := a.newID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO timetable_runs
			(run_id, origin, destination, date, time_zone, utc_offset, complete, calls, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		runID,
		doc.Origin,
		doc.Destination,
		doc.Date,
		doc.TimeZone.ID,
		doc.TimeZone.UTCOffset,
		doc.Complete,
		doc.Stats.Calls,
		a.now().UTC(),
	)
	if err != nil {
		return "", perr.Wrap(err, perr.KindUnknown, op, "inserting run")
	}

	batch := &batchInserter{
		tableName:  "timetable_itineraries",
		columns:    itineraryColumns,
		batchSize:  a.batchSize,
		fieldCount: len(itineraryColumns),
		tx:         tx,
	}
	for i, it := range doc.Itineraries {
		legs, err := json.Marshal(it.Legs)
		if err != nil {
			return "", perr.Wrap(err, perr.KindUnknown, op, "encoding legs")
		}
		if err := batch.Add(ctx, runID, i, it.Departure.UTC(), it.Arrival.UTC(), it.Transfers, string(legs)); err != nil {
			return "", perr.Wrap(err, perr.KindUnknown, op, "inserting itineraries")
		}
	}
	if err := batch.Flush(ctx); err != nil {
		return "", perr.Wrap(err, perr.KindUnknown, op, "inserting itineraries")
	}

	if err := tx.Commit(); err != nil {
		return "", perr.Wrap(err, perr.KindUnknown, op, "committing transaction")
	}

	a.logger.Info("Timetable archived",
		"run_id", runID,
		"itineraries", len(doc.Itineraries))

	return runID, nil
}

type batchInserter struct {
	tableName  string
	columns    []string
	values     []interface{}
	valueCount int
	batchSize  int
	fieldCount int
	tx         Tx
}

func (b *batchInserter) Add(ctx context.Context, values ...interface{}) error {
	b.values = append(b.values, values...)
	b.valueCount++

	if b.valueCount >= b.batchSize {
		return b.Flush(ctx)
	}

	return nil
}

func (b *batchInserter) Flush(ctx context.Context) error {
	if b.valueCount == 0 {
		return nil
	}

	if _, err := b.tx.ExecContext(ctx, b.buildInsertQuery(), b.values...); err != nil {
		return fmt.Errorf("executing batch insert into %s: %w", b.tableName, err)
	}

	// executed args stay untouched by the next batch
	b.values = nil
	b.valueCount = 0

	return nil
}

func (b *batchInserter) buildInsertQuery() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("INSERT INTO %s (%s) VALUES ",
		b.tableName,
		strings.Join(b.columns, ", ")))

	for i := 0; i < b.valueCount; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < b.fieldCount; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("$%d", i*b.fieldCount+j+1))
		}
		sb.WriteString(")")
	}

	return sb.String()
}
