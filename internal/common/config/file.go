package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the long command line option names. JSON files are accepted
// because JSON is valid YAML. Absent keys leave the current value untouched.
type FileConfig struct {
	From                    *string  `yaml:"from"`
	To                      *string  `yaml:"to"`
	Date                    *string  `yaml:"date"`
	APIKey                  *string  `yaml:"api-key"`
	Lang                    *string  `yaml:"lang"`
	MaxTransfers            *int     `yaml:"max-transfers"`
	VehicleTypeNames        []string `yaml:"vehicle-type-names"`
	StationNameReplacements []string `yaml:"station-name-replacements"`
	Verbose                 *bool    `yaml:"verbose"`
	JSON                    *bool    `yaml:"json"`
	JSONIndent              *int     `yaml:"json-indent"`
	Template                *string  `yaml:"template"`
	Output                  *string  `yaml:"output"`
	Format                  *string  `yaml:"format"`
	Localities              *bool    `yaml:"localities"`
	CallCeiling             *int     `yaml:"call-ceiling"`
	DatabaseURL             *string  `yaml:"database-url"`
}

// LoadFile reads path and overlays its values onto cfg
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return fc.Apply(cfg)
}

// Apply overlays every key present in the file onto cfg
func (fc FileConfig) Apply(cfg *Config) error {
	setString(&cfg.Query.Origin, fc.From)
	setString(&cfg.Query.Destination, fc.To)
	setString(&cfg.Query.Date, fc.Date)
	setString(&cfg.API.Key, fc.APIKey)
	setString(&cfg.Query.Language, fc.Lang)
	setInt(&cfg.Query.MaxTransfers, fc.MaxTransfers)
	setInt(&cfg.API.CallCeiling, fc.CallCeiling)
	setInt(&cfg.Output.JSONIndent, fc.JSONIndent)
	setString(&cfg.Output.TemplateFile, fc.Template)
	setString(&cfg.Output.File, fc.Output)
	setString(&cfg.Output.Format, fc.Format)
	setString(&cfg.Archive.DSN, fc.DatabaseURL)

	if fc.Verbose != nil {
		cfg.Logging.Verbose = *fc.Verbose
	}
	if fc.Localities != nil {
		cfg.Output.Localities = *fc.Localities
	}
	if fc.JSON != nil && *fc.JSON {
		cfg.Output.Format = "json"
	}

	if fc.VehicleTypeNames != nil {
		names, err := ParseVehicleTypeNames(fc.VehicleTypeNames)
		if err != nil {
			return err
		}
		cfg.Display.VehicleTypeNames = names
	}
	if fc.StationNameReplacements != nil {
		repl, err := ParseReplacements(fc.StationNameReplacements)
		if err != nil {
			return err
		}
		cfg.Display.StationNameReplacements = repl
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
