package config

import (
	"os"
	"strings"
	"time"

	"codeflow/internal/core/errors"

	"github.com/BurntSushi/toml"
)

const DefaultFile = "codeflow.toml"

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Exclude       Exclude       `toml:"exclude"`
	Analysis      Analysis      `toml:"analysis"`
	Catalog       Catalog       `toml:"catalog"`
	Output        Output        `toml:"output"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	Root      string `toml:"root"`
	MainFile  string `toml:"main_file"`
	OutputDir string `toml:"output_dir"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`  // directory base names or glob patterns
	Files []string `toml:"files"` // file base names or glob patterns
}

type Analysis struct {
	Extensions []string `toml:"extensions"`
	Workers    int      `toml:"workers"`
}

type Catalog struct {
	PrebuiltLibsFile  string   `toml:"prebuilt_libs_file"`
	KnownModules      []string `toml:"known_modules"`
	ExtraIOOperations []string `toml:"extra_io_operations"`
}

type Output struct {
	Snapshot       string              `toml:"snapshot"`
	Report         string              `toml:"report"`
	DOT            string              `toml:"dot"`
	Mermaid        string              `toml:"mermaid"`
	TSV            string              `toml:"tsv"`
	Top            int                 `toml:"top"`
	UpdateMarkdown []MarkdownInjection `toml:"update_markdown"`
}

type MarkdownInjection struct {
	File   string `toml:"file"`
	Marker string `toml:"marker"`
}

type Database struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	ProjectKey string `toml:"project_key"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	MinInterval time.Duration `toml:"min_interval"`
}

type Observability struct {
	MetricsAddr   string `toml:"metrics_addr"`
	TraceExporter string `toml:"trace_exporter"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	OTLPInsecure  bool   `toml:"otlp_insecure"`
}

// DefaultConfig is used when no config file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode config "+path)
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file is absent.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if os.IsNotExist(err) {
		return DefaultConfig(), false, nil
	}
	return nil, false, err
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.Root) == "" {
		cfg.Paths.Root = "."
	}
	if strings.TrimSpace(cfg.Paths.OutputDir) == "" {
		cfg.Paths.OutputDir = "output_files"
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{"venv", ".git", "__pycache__"}
	}

	cfg.Analysis.Extensions = normalizeExtensions(cfg.Analysis.Extensions)
	if len(cfg.Analysis.Extensions) == 0 {
		cfg.Analysis.Extensions = []string{".py", ".pyw"}
	}
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = 1
	}

	if strings.TrimSpace(cfg.Catalog.PrebuiltLibsFile) == "" {
		cfg.Catalog.PrebuiltLibsFile = "prebuilt_libs.txt"
	}

	if cfg.Output.Top == 0 {
		cfg.Output.Top = 10
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "codeflow.db"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MinInterval == 0 {
		cfg.Watch.MinInterval = 2 * time.Second
	}

	if strings.TrimSpace(cfg.Observability.TraceExporter) == "" {
		cfg.Observability.TraceExporter = "none"
	}
	cfg.Observability.TraceExporter = strings.ToLower(strings.TrimSpace(cfg.Observability.TraceExporter))
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
