package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	coreapp "codeflow/internal/core/app"
	"codeflow/internal/core/config"
	"codeflow/internal/data/snapshots"
	"codeflow/internal/shared/observability"
	"codeflow/internal/ui/report"
)

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	return run(args, os.Stdout)
}

func run(args []string, stdout io.Writer) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "codeflow v%s\n", versionString)
		return 0
	}

	configureLogging(opts.verbose)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	config.ApplyEnvOverrides(cfg)
	if err := applyOptions(opts, cfg); err != nil {
		slog.Error("invalid options", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "codeflow",
		ServiceVersion: versionString,
		Exporter:       cfg.Observability.TraceExporter,
		Endpoint:       cfg.Observability.OTLPEndpoint,
		Insecure:       cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		metrics := observability.NewMetricsServer(addr)
		metrics.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metrics.Stop(shutdownCtx)
		}()
	}

	if opts.listRuns {
		if err := listRuns(stdout, cfg); err != nil {
			slog.Error("failed to list runs", "error", err)
			return 1
		}
		return 0
	}

	analysis, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}

	res, err := analysis.Run(ctx)
	if err != nil {
		slog.Error("analysis failed", "error", err)
		return 1
	}
	printResult(stdout, cfg, res)

	if !opts.watch {
		return 0
	}

	err = analysis.Watch(ctx, func(res *coreapp.Result, err error) {
		if err != nil {
			slog.Error("re-analysis failed", "error", err)
			return
		}
		printResult(stdout, cfg, res)
	})
	if err != nil {
		slog.Error("watch failed", "error", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, found, err := config.LoadOrDefault(config.DefaultFile)
	if err != nil {
		return nil, err
	}
	if !found {
		slog.Debug("no config file found, using defaults", "path", config.DefaultFile)
	}
	return cfg, nil
}

func printResult(w io.Writer, cfg *config.Config, res *coreapp.Result) {
	err := report.PrintSummary(w, report.SummaryInput{
		Store:   res.Store,
		Top:     cfg.Output.Top,
		Skipped: res.SkippedLines(),
		Cycles:  res.Cycles,
		Outputs: res.Outputs,
	})
	if err != nil {
		slog.Warn("failed to print summary", "error", err)
	}
}

func listRuns(w io.Writer, cfg *config.Config) error {
	if !cfg.DB.Enabled {
		return fmt.Errorf("--runs requires db.enabled = true")
	}
	root, err := filepath.Abs(cfg.Paths.Root)
	if err != nil {
		return err
	}
	targets := config.ResolveOutputs(cfg, root, cfg.Paths.MainFile)

	archive, err := snapshots.Open(targets.DB)
	if err != nil {
		return err
	}
	defer archive.Close()

	runs, err := archive.ListRuns(config.ProjectKey(cfg, root))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tTIME\tMAIN\tFILES\tNODES\tEDGES\tSKIPPED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.RunID,
			r.Timestamp.Format(time.RFC3339),
			r.MainFile,
			r.Summary.TotalFiles,
			r.GraphNodes,
			r.GraphEdges,
			r.SkippedFiles,
		)
	}
	return tw.Flush()
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
