package cli

import (
	"flag"
	"strings"

	"codeflow/internal/core/config"
)

const versionString = "1.0.0"

type cliOptions struct {
	configPath   string
	root         string
	mainFile     string
	excludeDirs  string
	excludeFiles string
	outDir       string
	workers      int
	watch        bool
	listRuns     bool
	verbose      bool
	version      bool
	args         []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("codeflow", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default ./"+config.DefaultFile+" when present)")
	fs.StringVar(&opts.root, "root", "", "Root directory of the Python codebase")
	fs.StringVar(&opts.mainFile, "main", "", "Entry file, relative to the root")
	fs.StringVar(&opts.excludeDirs, "exclude-dirs", "", "Comma-separated directory names or globs to skip")
	fs.StringVar(&opts.excludeFiles, "exclude-files", "", "Comma-separated file names or globs to skip")
	fs.StringVar(&opts.outDir, "out", "", "Output directory")
	fs.IntVar(&opts.workers, "workers", 0, "Number of files analyzed in parallel")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run the analysis when sources change")
	fs.BoolVar(&opts.listRuns, "runs", false, "List archived runs for the project and exit (requires db.enabled)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}

// applyOptions lets flags override the loaded configuration. A positional
// argument is taken as the root when --root is not given.
func applyOptions(opts cliOptions, cfg *config.Config) error {
	root := opts.root
	if root == "" && len(opts.args) > 0 {
		root = opts.args[0]
	}
	if root != "" {
		cfg.Paths.Root = root
	}
	if opts.mainFile != "" {
		cfg.Paths.MainFile = opts.mainFile
	}
	if opts.outDir != "" {
		cfg.Paths.OutputDir = opts.outDir
	}
	if opts.excludeDirs != "" {
		cfg.Exclude.Dirs = splitList(opts.excludeDirs)
	}
	if opts.excludeFiles != "" {
		cfg.Exclude.Files = splitList(opts.excludeFiles)
	}
	if opts.workers != 0 {
		cfg.Analysis.Workers = opts.workers
	}
	return config.Validate(cfg)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
