package main

import (
	"github.com/urfave/cli/v2"

	"github.com/transit-daytable/internal/common/config"
	perr "github.com/transit-daytable/internal/common/errors"
)

// loadConfig layers defaults and environment, the config file, then flags
func loadConfig(c *cli.Context) (*config.Config, error) {
	const op = "main.loadConfig"

	cfg, err := config.Load()
	if err != nil {
		return nil, perr.Wrap(err, perr.KindConfig, op, "reading environment")
	}

	if path := c.String("config"); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, perr.Wrap(err, perr.KindConfig, op, "reading config file")
		}
	}

	if err := applyFlags(c, cfg); err != nil {
		return nil, perr.Wrap(err, perr.KindConfig, op, "parsing flags")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(c *cli.Context, cfg *config.Config) error {
	stringFlags := map[string]*string{
		"from":         &cfg.Query.Origin,
		"to":           &cfg.Query.Destination,
		"date":         &cfg.Query.Date,
		"api-key":      &cfg.API.Key,
		"lang":         &cfg.Query.Language,
		"template":     &cfg.Output.TemplateFile,
		"output":       &cfg.Output.File,
		"format":       &cfg.Output.Format,
		"database-url": &cfg.Archive.DSN,
		"log-file":     &cfg.Logging.FilePath,
	}
	for name, dst := range stringFlags {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}

	intFlags := map[string]*int{
		"max-transfers": &cfg.Query.MaxTransfers,
		"json-indent":   &cfg.Output.JSONIndent,
		"call-ceiling":  &cfg.API.CallCeiling,
	}
	for name, dst := range intFlags {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}

	if c.IsSet("archive-retention") {
		cfg.Archive.Retention = c.Duration("archive-retention")
	}
	if c.IsSet("verbose") {
		cfg.Logging.Verbose = c.Bool("verbose")
	}
	if c.IsSet("localities") {
		cfg.Output.Localities = c.Bool("localities")
	}
	if c.Bool("json") {
		cfg.Output.Format = "json"
	}

	if c.IsSet("vehicle-type-names") {
		names, err := config.ParseVehicleTypeNames(c.StringSlice("vehicle-type-names"))
		if err != nil {
			return err
		}
		cfg.Display.VehicleTypeNames = names
	}
	if c.IsSet("station-name-replacements") {
		repl, err := config.ParseReplacements(c.StringSlice("station-name-replacements"))
		if err != nil {
			return err
		}
		cfg.Display.StationNameReplacements = repl
	}
	return nil
}
