package analyzer

import (
	"unicode/utf8"

	"codeflow/internal/engine/parser"
	"codeflow/internal/shared/util"
)

// FileInfo holds the basic metrics of one analyzed file.
type FileInfo struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	Lines int    `json:"lines"`
	Empty bool   `json:"empty"`
}

// Record is the analysis result of one file. It is not modified after
// AnalyzeFile returns.
type Record struct {
	Imports       *parser.ImportTable `json:"imports"`
	IOCallCount   int                 `json:"io_call_count"`
	FunctionUsage *parser.UsageTable  `json:"function_usage"`
	IOOperations  []string            `json:"io_operations"`
	FileInfo      FileInfo            `json:"file_info"`
}

func newRecord(path string, content []byte) *Record {
	return &Record{
		Imports:       util.NewOrderedMap[*util.StringSet](),
		FunctionUsage: util.NewOrderedMap[*util.StringSet](),
		IOOperations:  []string{},
		FileInfo: FileInfo{
			Path:  path,
			Size:  int64(len(content)),
			Lines: countLines(content),
		},
	}
}

// ImportedModules lists the record's module keys in first-import order.
func (r *Record) ImportedModules() []string {
	if r == nil || r.Imports == nil {
		return []string{}
	}
	return r.Imports.Keys()
}

// countLines counts lines the way Python's str.splitlines does: a trailing
// terminator does not open a new line and \r\n counts once.
func countLines(content []byte) int {
	s := string(content)
	lines := 0
	open := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch r {
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				size = 2
			}
			lines++
			open = false
		case '\n', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
			lines++
			open = false
		default:
			open = true
		}
		i += size
	}
	if open {
		lines++
	}
	return lines
}
