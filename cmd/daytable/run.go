package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/transit-daytable/internal/common/config"
	"github.com/transit-daytable/internal/common/db"
	"github.com/transit-daytable/internal/common/discord"
	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/internal/directions"
	"github.com/transit-daytable/internal/timetable"
	"github.com/transit-daytable/internal/timetable/archive"
	"github.com/transit-daytable/internal/timetable/normalize"
	"github.com/transit-daytable/internal/timetable/planner"
	"github.com/transit-daytable/internal/timetable/render"
	"github.com/transit-daytable/internal/timetable/retry"
	"github.com/transit-daytable/pkg/timetable/models"
)

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return exitError(err)
	}

	log := newLogger(cfg).With("date", cfg.Query.Date)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer, err := render.New(cfg.Output.Format, cfg.Output.TemplateFile, cfg.Output.JSONIndent)
	if err != nil {
		return exitError(err)
	}

	log.Info("daytable starting",
		"from", cfg.Query.Origin,
		"to", cfg.Query.Destination,
		"lang", cfg.Query.Language,
		"max_transfers", cfg.Query.MaxTransfers,
		"format", cfg.Output.Format)

	started := time.Now()
	client := directions.NewClient(cfg.API.BaseURL, cfg.API.Key, cfg.API.Timeout, log)
	result, buildErr := timetable.NewBuilder(client, log).Build(ctx, buildOptions(cfg))

	notify(c.Context, cfg, result, buildErr, time.Since(started), log)

	if buildErr != nil {
		log.Error("Timetable failed",
			"kind", perr.KindOf(buildErr).String(),
			"error", buildErr)
		return exitError(buildErr)
	}

	if !result.Document.Complete {
		log.Warn("Coverage incomplete, timetable may be missing late departures",
			"calls", result.Stats.Calls)
	}

	if err := writeOutput(cfg.Output.File, renderer, result.Document); err != nil {
		return exitError(err)
	}

	if cfg.Archive.DSN != "" {
		archiveRun(c.Context, cfg.Archive, result.Document, log)
	}

	log.Info("daytable finished",
		"itineraries", len(result.Document.Itineraries),
		"calls", result.Stats.Calls,
		"retries", result.Stats.Retries,
		"dropped", result.Stats.Dropped,
		"elapsed", time.Since(started).String())
	return nil
}

func buildOptions(cfg *config.Config) timetable.Options {
	repl := make([]normalize.Replacement, 0, len(cfg.Display.StationNameReplacements))
	for _, r := range cfg.Display.StationNameReplacements {
		repl = append(repl, normalize.Replacement{Find: r.Find, Replace: r.Replace})
	}

	return timetable.Options{
		Query: planner.Query{
			Origin:       models.Place(cfg.Query.Origin),
			Destination:  models.Place(cfg.Query.Destination),
			Language:     cfg.Query.Language,
			MaxTransfers: cfg.Query.MaxTransfers,
		},
		Date:        cfg.Query.Date,
		CallCeiling: cfg.API.CallCeiling,
		Retry: retry.Policy{
			Attempts: cfg.API.RetryAttempts,
			Initial:  cfg.API.BackoffInitial,
			Max:      cfg.API.BackoffMax,
		},
		Display: normalize.Options{
			VehicleTypeNames:        cfg.Display.VehicleTypeNames,
			StationNameReplacements: repl,
		},
		Localities: cfg.Output.Localities,
	}
}

func newLogger(cfg *config.Config) logger.Logger {
	lc := logger.DefaultLoggerConfig()
	lc.Level = logger.ParseLogLevel(cfg.Logging.Level)
	if cfg.Logging.Verbose {
		lc.Level = zerolog.DebugLevel
	}
	if cfg.Logging.FilePath != "" {
		lc.File = true
		lc.FilePath = cfg.Logging.FilePath
	}
	return logger.NewFromConfig(lc)
}

func writeOutput(path string, r *render.Renderer, doc render.Document) error {
	if path == "" {
		return r.Render(os.Stdout, doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	return renderAndClose(f, r, doc)
}

// renderAndClose reports a failed close when rendering itself succeeded
func renderAndClose(w io.WriteCloser, r *render.Renderer, doc render.Document) error {
	if err := r.Render(w, doc); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// archiveRun is best effort; the timetable has already been written
func archiveRun(ctx context.Context, cfg config.ArchiveConfig, doc render.Document, log logger.Logger) {
	conn, err := db.New(ctx, cfg.DSN, log)
	if err != nil {
		log.Error("Failed to connect to archive database", "error", err)
		return
	}
	defer conn.Close()

	a := archive.New(conn, log)
	if _, err := a.Save(ctx, doc); err != nil {
		log.Error("Failed to archive timetable", "error", err)
		return
	}
	if cfg.Retention > 0 {
		if _, err := a.Prune(ctx, cfg.Retention); err != nil {
			log.Warn("Failed to prune archived runs", "error", err)
		}
	}
}

func notify(ctx context.Context, cfg *config.Config, result timetable.Run, buildErr error, elapsed time.Duration, log logger.Logger) {
	if cfg.Notify.DiscordURL == "" {
		return
	}
	summary := discord.RunSummary{
		Origin:      cfg.Query.Origin,
		Destination: cfg.Query.Destination,
		Date:        cfg.Query.Date,
		Itineraries: len(result.Document.Itineraries),
		Complete:    result.Document.Complete,
		Calls:       result.Stats.Calls,
		Retries:     result.Stats.Retries,
		Dropped:     result.Stats.Dropped,
		Filtered:    result.Stats.Filtered,
		Elapsed:     elapsed,
	}
	if buildErr != nil {
		summary.Failure = buildErr.Error()
	}
	if err := discord.NewClient(cfg.Notify.DiscordURL).SendRunSummary(ctx, summary); err != nil {
		log.Warn("Failed to post run summary", "error", err)
	}
}

// exitError maps err onto the process exit code for its kind
func exitError(err error) cli.ExitCoder {
	return cli.Exit(err.Error(), perr.ExitCode(perr.KindOf(err)))
}
