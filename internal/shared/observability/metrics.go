package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codeflow_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codeflow_files_discovered_total",
		Help: "Total number of source files found during discovery.",
	})

	FilesAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codeflow_files_analyzed_total",
		Help: "Total number of files registered in the dependency store.",
	})

	FilesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codeflow_files_skipped_total",
		Help: "Total number of files skipped because analysis failed.",
	}, []string{"reason"})

	IOOperationsFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codeflow_io_operations_total",
		Help: "Total number of I/O call sites detected.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codeflow_graph_nodes",
		Help: "Number of nodes in the last resolved dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codeflow_graph_edges",
		Help: "Number of edges in the last resolved dependency graph.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codeflow_analysis_seconds",
		Help:    "Time spent on high-level analysis phases.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codeflow_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
