package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	perr "github.com/transit-daytable/internal/common/errors"

	_ "time/tzdata"
)

func main() {
	// .env is optional; the environment and flags are enough
	_ = godotenv.Load()

	app := newApp(run)
	if err := app.Run(os.Args); err != nil {
		// ExitCoder errors have already exited; this is flag parsing and the like
		fmt.Fprintln(os.Stderr, err)
		os.Exit(perr.ExitCode(perr.KindConfig))
	}
}

func newApp(action cli.ActionFunc) *cli.App {
	return &cli.App{
		Name:  "daytable",
		Usage: "build a full day's public transit timetable between two places",
		// station names and display strings may contain commas; repeat the flag instead
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Usage: "origin place"},
			&cli.StringFlag{Name: "to", Aliases: []string{"t"}, Usage: "destination place"},
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "date to plan, `YYYY-MM-DD`, at the origin"},
			&cli.StringFlag{Name: "api-key", Aliases: []string{"k"}, Usage: "directions API key"},
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "language of stop and line names"},
			&cli.IntFlag{Name: "max-transfers", Usage: "drop itineraries with more transfers"},
			&cli.StringSliceFlag{Name: "vehicle-type-names", Usage: "vehicle type display name, `TYPE=name`; repeatable"},
			&cli.StringSliceFlag{Name: "station-name-replacements", Usage: "stop name substitution, `find=replace`; repeatable, applied in order"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
			&cli.BoolFlag{Name: "json", Aliases: []string{"j"}, Usage: "write json instead of a rendered document"},
			&cli.IntFlag{Name: "json-indent", Usage: "indent json output by `N` spaces"},
			&cli.StringFlag{Name: "template", Usage: "template `FILE` replacing the built-in one"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write to `FILE` instead of stdout"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML or JSON config `FILE`"},
			&cli.StringFlag{Name: "format", Usage: "html, markdown, latex or json"},
			&cli.BoolFlag{Name: "localities", Usage: "look up the locality of every stop"},
			&cli.IntFlag{Name: "call-ceiling", Usage: "maximum directions calls for the day"},
			&cli.StringFlag{Name: "database-url", Usage: "archive the timetable to this Postgres database"},
			&cli.DurationFlag{Name: "archive-retention", Usage: "delete archived runs older than this after saving"},
			&cli.StringFlag{Name: "log-file", Usage: "also log to `FILE`, rotated"},
		},
		Action: action,
	}
}
