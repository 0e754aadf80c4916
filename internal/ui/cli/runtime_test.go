package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeflow/internal/core/config"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--main", "app.py", "--exclude-dirs", "build, dist", "--watch", "src"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.mainFile != "app.py" || !opts.watch {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if len(opts.args) != 1 || opts.args[0] != "src" {
		t.Fatalf("unexpected positional args: %v", opts.args)
	}

	if _, err := parseOptions([]string{"--no-such-flag"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestApplyOptions_OverridesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	opts := cliOptions{
		mainFile:     "main.py",
		excludeDirs:  "build, ,dist",
		excludeFiles: "setup.py",
		outDir:       "reports",
		workers:      3,
		args:         []string{"./src"},
	}
	if err := applyOptions(opts, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Paths.Root != "./src" || cfg.Paths.MainFile != "main.py" || cfg.Paths.OutputDir != "reports" {
		t.Fatalf("unexpected paths: %+v", cfg.Paths)
	}
	if strings.Join(cfg.Exclude.Dirs, ",") != "build,dist" {
		t.Fatalf("unexpected exclude dirs: %v", cfg.Exclude.Dirs)
	}
	if cfg.Analysis.Workers != 3 {
		t.Fatalf("expected 3 workers, got %d", cfg.Analysis.Workers)
	}
}

func TestApplyOptions_RootFlagWinsOverPositional(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := applyOptions(cliOptions{root: "a", args: []string{"b"}}, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Paths.Root != "a" {
		t.Fatalf("expected --root to win, got %q", cfg.Paths.Root)
	}
}

func TestApplyOptions_RejectsInvalidValues(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := applyOptions(cliOptions{workers: -2}, cfg); err == nil {
		t.Fatal("expected validation error for negative workers")
	}
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"--version"}, &out); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out.String(), "codeflow v"+versionString) {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestRun_AnalyzesProject(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"main.py": "import os\nimport util\n",
		"util.py": "import json\njson.load(open('x'))\n",
		"bad.py":  "def broken(:\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	outDir := filepath.Join(t.TempDir(), "out")
	cfgPath := filepath.Join(t.TempDir(), "codeflow.toml")
	cfgBody := "version = 1\n[db]\nenabled = true\nproject_key = \"demo\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	code := run([]string{"--config", cfgPath, "--root", root, "--main", "main.py", "--out", outDir}, &out)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	text := out.String()
	if !strings.Contains(text, "bad.py") {
		t.Fatalf("summary should list the skipped file, got:\n%s", text)
	}
	if _, err := os.Stat(filepath.Join(outDir, "graph_main.dot")); err != nil {
		t.Fatalf("expected DOT output: %v", err)
	}

	out.Reset()
	code = run([]string{"--config", cfgPath, "--root", root, "--out", outDir, "--runs"}, &out)
	if code != 0 {
		t.Fatalf("expected exit 0 listing runs, got %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "main.py") {
		t.Fatalf("expected header and one run, got:\n%s", out.String())
	}
}

func TestRun_MissingConfigFile(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"--config", filepath.Join(t.TempDir(), "absent.toml")}, &out); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}
