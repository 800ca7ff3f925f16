package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL        = "https://maps.googleapis.com/maps/api"
	DefaultLanguage       = "en"
	DefaultMaxTransfers   = 99
	DefaultCallCeiling    = 50
	DefaultRetryAttempts  = 5
	DefaultBackoffInitial = 500 * time.Millisecond
	DefaultBackoffMax     = 10 * time.Second
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultFormat         = "html"
)

type Config struct {
	Query   QueryConfig
	API     APIConfig
	Display DisplayConfig
	Output  OutputConfig
	Archive ArchiveConfig
	Logging LoggingConfig
	Notify  NotifyConfig
}

// QueryConfig identifies the day to plan
type QueryConfig struct {
	Origin       string `validate:"required"`
	Destination  string `validate:"required"`
	Date         string `validate:"required,datetime=2006-01-02"`
	Language     string `validate:"required,langtag"`
	MaxTransfers int    `validate:"gte=0"`
}

// APIConfig for the directions service and the acquisition loop
type APIConfig struct {
	Key            string        `validate:"required"`
	BaseURL        string        `validate:"required,url"`
	Timeout        time.Duration `validate:"gt=0"`
	RetryAttempts  int           `validate:"gte=1"`
	BackoffInitial time.Duration `validate:"gt=0"`
	BackoffMax     time.Duration `validate:"gtefield=BackoffInitial"`
	CallCeiling    int           `validate:"gte=1"`
}

// DisplayConfig holds the substitution tables applied when legs are summarized
type DisplayConfig struct {
	// VehicleTypeNames maps a raw vehicle token (e.g. HEAVY_RAIL) to its display string
	VehicleTypeNames map[string]string
	// StationNameReplacements are applied in order to every stop name
	StationNameReplacements []Replacement `validate:"dive"`
}

type Replacement struct {
	Find    string `validate:"required" json:"find"`
	Replace string `json:"replace"`
}

type OutputConfig struct {
	Format       string `validate:"oneof=html markdown latex json"`
	TemplateFile string `validate:"omitempty,file"`
	File         string
	JSONIndent   int `validate:"gte=0"`
	Localities   bool
}

// ArchiveConfig enables the Postgres export sink when DSN is set
type ArchiveConfig struct {
	DSN string
	// Retention, when positive, prunes archived runs older than this after each save
	Retention time.Duration `validate:"gte=0"`
}

type LoggingConfig struct {
	Level    string
	FilePath string
	Verbose  bool
}

type NotifyConfig struct {
	DiscordURL string `validate:"omitempty,url"`
}

// Load builds the configuration from defaults and the environment
func Load() (*Config, error) {
	cfg := &Config{
		Query: QueryConfig{
			Origin:       getEnv("DAYTABLE_FROM", ""),
			Destination:  getEnv("DAYTABLE_TO", ""),
			Date:         getEnv("DAYTABLE_DATE", ""),
			Language:     getEnv("DAYTABLE_LANG", DefaultLanguage),
			MaxTransfers: getIntEnv("DAYTABLE_MAX_TRANSFERS", DefaultMaxTransfers),
		},
		API: APIConfig{
			Key:            getEnv("DAYTABLE_API_KEY", ""),
			BaseURL:        getEnv("DAYTABLE_API_BASE_URL", DefaultBaseURL),
			Timeout:        getDurationEnv("DAYTABLE_HTTP_TIMEOUT", DefaultHTTPTimeout),
			RetryAttempts:  getIntEnv("DAYTABLE_RETRY_ATTEMPTS", DefaultRetryAttempts),
			BackoffInitial: getDurationEnv("DAYTABLE_BACKOFF_INITIAL", DefaultBackoffInitial),
			BackoffMax:     getDurationEnv("DAYTABLE_BACKOFF_MAX", DefaultBackoffMax),
			CallCeiling:    getIntEnv("DAYTABLE_CALL_CEILING", DefaultCallCeiling),
		},
		Display: DisplayConfig{
			VehicleTypeNames: map[string]string{},
		},
		Output: OutputConfig{
			Format: getEnv("DAYTABLE_FORMAT", DefaultFormat),
		},
		Archive: ArchiveConfig{
			DSN:       getEnv("DATABASE_URL", ""),
			Retention: getDurationEnv("DAYTABLE_ARCHIVE_RETENTION", 0),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			FilePath: getEnv("LOG_FILE", ""),
		},
		Notify: NotifyConfig{
			DiscordURL: getEnv("DISCORD_WEBHOOK_URL", ""),
		},
	}

	if v := os.Getenv("DAYTABLE_VEHICLE_TYPE_NAMES"); v != "" {
		names, err := ParseVehicleTypeNames(splitList(v))
		if err != nil {
			return nil, err
		}
		cfg.Display.VehicleTypeNames = names
	}
	if v := os.Getenv("DAYTABLE_STATION_NAME_REPLACEMENTS"); v != "" {
		repl, err := ParseReplacements(splitList(v))
		if err != nil {
			return nil, err
		}
		cfg.Display.StationNameReplacements = repl
	}

	return cfg, nil
}

// ParseVehicleTypeNames turns "TYPE=display" pairs into a lookup
func ParseVehicleTypeNames(pairs []string) (map[string]string, error) {
	names := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, err := splitPair(p)
		if err != nil {
			return nil, fmt.Errorf("vehicle type name definition %q: %w", p, err)
		}
		names[k] = v
	}
	return names, nil
}

// ParseReplacements turns "find=replace" pairs into an ordered list
func ParseReplacements(pairs []string) ([]Replacement, error) {
	out := make([]Replacement, 0, len(pairs))
	for _, p := range pairs {
		k, v, err := splitPair(p)
		if err != nil {
			return nil, fmt.Errorf("station name replacement definition %q: %w", p, err)
		}
		out = append(out, Replacement{Find: k, Replace: v})
	}
	return out, nil
}

func splitPair(p string) (string, string, error) {
	if strings.Count(p, "=") != 1 {
		return "", "", fmt.Errorf("must contain exactly one = sign")
	}
	k, v, _ := strings.Cut(p, "=")
	k, v = strings.TrimSpace(k), strings.TrimSpace(v)
	if k == "" {
		return "", "", fmt.Errorf("key must not be empty")
	}
	return k, v, nil
}

// splitList splits a semicolon separated env value
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
