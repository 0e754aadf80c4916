package config

import (
	"fmt"
	"strings"

	"codeflow/internal/core/config/helpers"
	"codeflow/internal/core/errors"
)

const maxWorkers = 64

// Validate runs every section check and reports the first failure as a
// VALIDATION_ERROR.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateVersion,
		validateExclude,
		validateAnalysis,
		validateOutput,
		validateDatabase,
		validateWatch,
		validateObservability,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	sections := []struct {
		name     string
		patterns []string
	}{
		{"exclude.dirs", cfg.Exclude.Dirs},
		{"exclude.files", cfg.Exclude.Files},
	}
	for _, section := range sections {
		for i, p := range section.patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				return fmt.Errorf("%s[%d] must not be empty", section.name, i)
			}
			if strings.ContainsAny(p, `/\`) {
				return fmt.Errorf("%s[%d] %q must be a base name, not a path", section.name, i, p)
			}
			if _, err := helpers.CompileNameMatchers([]string{p}); err != nil {
				return fmt.Errorf("%s[%d]: %w", section.name, i, err)
			}
		}
	}
	return nil
}

func validateAnalysis(cfg *Config) error {
	if cfg.Analysis.Workers < 1 || cfg.Analysis.Workers > maxWorkers {
		return fmt.Errorf("analysis.workers must be between 1 and %d, got %d", maxWorkers, cfg.Analysis.Workers)
	}
	if len(cfg.Analysis.Extensions) == 0 {
		return fmt.Errorf("analysis.extensions must not be empty")
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if cfg.Output.Top < 0 {
		return fmt.Errorf("output.top must be >= 0, got %d", cfg.Output.Top)
	}
	seen := make(map[string]bool)
	for i, inj := range cfg.Output.UpdateMarkdown {
		ref := fmt.Sprintf("output.update_markdown[%d]", i)
		file := strings.TrimSpace(inj.File)
		marker := strings.TrimSpace(inj.Marker)
		if file == "" {
			return fmt.Errorf("%s.file must not be empty", ref)
		}
		if marker == "" {
			return fmt.Errorf("%s.marker must not be empty", ref)
		}
		key := file + "\x00" + marker
		if seen[key] {
			return fmt.Errorf("%s duplicates file %q marker %q", ref, file, marker)
		}
		seen[key] = true
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty when db.enabled is true")
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0")
	}
	if cfg.Watch.MinInterval < 0 {
		return fmt.Errorf("watch.min_interval must be >= 0")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	switch cfg.Observability.TraceExporter {
	case "none":
	case "otlp":
		if strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
			return fmt.Errorf("observability.otlp_endpoint is required when trace_exporter is otlp")
		}
	default:
		return fmt.Errorf("observability.trace_exporter must be one of: none, otlp")
	}
	return nil
}
