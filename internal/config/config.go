// Package config loads the job configuration from environment variables
// (populated from a .env file in main.go when one exists).
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// ErrMissing is returned when required environment variables are unset.
var ErrMissing = errors.New("required environment variable not set")

const (
	DefaultSinkKind  = "stdout"
	DefaultBatchSize = 500
)

// Config holds everything the job needs. Runner and region are recorded but
// not interpreted. Project bills BigQuery loads when the output table names
// none, and the first gs:// location of temp and staging holds load files.
type Config struct {
	Runner          string
	Project         string
	Region          string
	AirportsInput   string
	FlightsInput    string
	OutputTable     string
	TempLocation    string
	StagingLocation string

	SinkKind       string
	SinkDSN        string
	Workers        int
	BatchSize      int
	PushgatewayURL string
	LogFile        string
	LogLevel       string
}

var required = []struct {
	env string
	dst func(*Config) *string
}{
	{"ETL_RUNNER", func(c *Config) *string { return &c.Runner }},
	{"ETL_PROJECT", func(c *Config) *string { return &c.Project }},
	{"ETL_REGION", func(c *Config) *string { return &c.Region }},
	{"ETL_AIRPORTS_INPUT", func(c *Config) *string { return &c.AirportsInput }},
	{"ETL_FLIGHTS_INPUT", func(c *Config) *string { return &c.FlightsInput }},
	{"ETL_OUTPUT_TABLE", func(c *Config) *string { return &c.OutputTable }},
	{"ETL_TEMP_LOCATION", func(c *Config) *string { return &c.TempLocation }},
	{"ETL_STAGING_LOCATION", func(c *Config) *string { return &c.StagingLocation }},
}

// LoadConfig reads the job settings from the environment. All required
// variables are checked for presence only; every missing one is reported.
func LoadConfig() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	var missing []string
	for _, r := range required {
		v := strings.TrimSpace(getenv(r.env))
		if v == "" {
			missing = append(missing, r.env)
			continue
		}
		*r.dst(cfg) = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}

	cfg.SinkKind = strings.ToLower(strings.TrimSpace(getenv("ETL_SINK_KIND")))
	if cfg.SinkKind == "" {
		cfg.SinkKind = DefaultSinkKind
	}
	cfg.SinkDSN = getenv("ETL_SINK_DSN")
	cfg.PushgatewayURL = getenv("ETL_PUSHGATEWAY_URL")
	cfg.LogFile = getenv("ETL_LOG_FILE")
	cfg.LogLevel = getenv("ETL_LOG_LEVEL")

	var err error
	if cfg.Workers, err = intEnv(getenv, "ETL_WORKERS", runtime.NumCPU()); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = intEnv(getenv, "ETL_BATCH_SIZE", DefaultBatchSize); err != nil {
		return nil, err
	}
	return cfg, nil
}

func intEnv(getenv func(string) string, name string, def int) (int, error) {
	raw := strings.TrimSpace(getenv(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}
