package store

import (
	"codeflow/internal/engine/analyzer"
	"codeflow/internal/shared/util"
)

// FileEntry is the per-file row of the aggregate.
type FileEntry struct {
	Imports       []string                   `json:"imports"`
	IOCount       int                        `json:"io_count"`
	FunctionUsage *util.OrderedMap[[]string] `json:"function_usage"`
}

type Summary struct {
	TotalFiles        int `json:"total_files"`
	TotalImports      int `json:"total_imports"`
	TotalIOOperations int `json:"total_io_operations"`
	TotalLines        int `json:"total_lines"`
	EmptyFiles        int `json:"empty_files"`
}

// State is the whole aggregate and also the snapshot document. Every map
// keeps insertion order so tie-breaks survive a save/load cycle.
type State struct {
	Files         *util.OrderedMap[FileEntry]                  `json:"files"`
	Modules       *util.OrderedMap[*util.StringSet]            `json:"modules"`
	IOOperations  *util.OrderedMap[[]string]                   `json:"io_operations"`
	FunctionUsage *util.OrderedMap[*util.OrderedMap[[]string]] `json:"function_usage"`
	FileInfo      *util.OrderedMap[analyzer.FileInfo]          `json:"file_info"`
	Summary       Summary                                      `json:"summary"`
}

func newState() *State {
	return &State{
		Files:         util.NewOrderedMap[FileEntry](),
		Modules:       util.NewOrderedMap[*util.StringSet](),
		IOOperations:  util.NewOrderedMap[[]string](),
		FunctionUsage: util.NewOrderedMap[*util.OrderedMap[[]string]](),
		FileInfo:      util.NewOrderedMap[analyzer.FileInfo](),
	}
}

// fillMissing replaces tables absent from a loaded document with empty ones.
func (st *State) fillMissing() {
	if st.Files == nil {
		st.Files = util.NewOrderedMap[FileEntry]()
	}
	if st.Modules == nil {
		st.Modules = util.NewOrderedMap[*util.StringSet]()
	}
	if st.IOOperations == nil {
		st.IOOperations = util.NewOrderedMap[[]string]()
	}
	if st.FunctionUsage == nil {
		st.FunctionUsage = util.NewOrderedMap[*util.OrderedMap[[]string]]()
	}
	if st.FileInfo == nil {
		st.FileInfo = util.NewOrderedMap[analyzer.FileInfo]()
	}
}

func usageLists(usage *util.OrderedMap[*util.StringSet]) *util.OrderedMap[[]string] {
	out := util.NewOrderedMap[[]string]()
	usage.Each(func(module string, names *util.StringSet) bool {
		out.Set(module, names.Items())
		return true
	})
	return out
}
