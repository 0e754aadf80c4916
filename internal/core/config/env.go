package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CODEFLOW_[SECTION]_[KEY] (e.g., CODEFLOW_ANALYSIS_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.Root, "CODEFLOW_PATHS_ROOT")
	setEnvString(&cfg.Paths.MainFile, "CODEFLOW_PATHS_MAIN_FILE")
	setEnvString(&cfg.Paths.OutputDir, "CODEFLOW_PATHS_OUTPUT_DIR")

	// Analysis
	setEnvInt(&cfg.Analysis.Workers, "CODEFLOW_ANALYSIS_WORKERS")

	// Catalog
	setEnvString(&cfg.Catalog.PrebuiltLibsFile, "CODEFLOW_CATALOG_PREBUILT_LIBS_FILE")

	// Database
	setEnvBool(&cfg.DB.Enabled, "CODEFLOW_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "CODEFLOW_DB_PATH")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "CODEFLOW_WATCH_DEBOUNCE")
	setEnvDuration(&cfg.Watch.MinInterval, "CODEFLOW_WATCH_MIN_INTERVAL")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "CODEFLOW_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.TraceExporter, "CODEFLOW_OBSERVABILITY_TRACE_EXPORTER")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CODEFLOW_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.OTLPInsecure, "CODEFLOW_OBSERVABILITY_OTLP_INSECURE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
