package attributes

import (
	"strings"

	"github.com/mrzor/etrace-parser/internal/record"
)

// typeEnv declares the variable types for compilation.
var typeEnv = map[string]interface{}{
	"pid":         int64(0),
	"index":       0,
	"elapsed":     int64(0),
	"exit":        0,
	"binary":      "",
	"cwd":         "",
	"interpreter": "",
	"argv":        []string{},
	"files":       []string{},
	"cmdline":     "",
}

// entryEnv builds the evaluation environment for e.
func entryEnv(e *record.Entry) map[string]interface{} {
	files := make([]string, 0, len(e.Files))
	for _, f := range e.SortedFiles() {
		files = append(files, f.Path)
	}
	return map[string]interface{}{
		"pid":         e.Pid,
		"index":       e.Index,
		"elapsed":     e.Elapsed,
		"exit":        e.ExitStatus,
		"binary":      e.Binary,
		"cwd":         e.Cwd,
		"interpreter": e.Interpreter,
		"argv":        e.Argv,
		"files":       files,
		"cmdline":     strings.Join(e.Argv, " "),
	}
}
