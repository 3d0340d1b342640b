package attributes

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mrzor/etrace-parser/internal/record"
)

// Filter selects entries with a boolean expression. A nil Filter keeps
// everything.
type Filter struct {
	program *vm.Program
	rawExpr string
}

// NewFilter compiles exprStr. An empty expression returns a nil Filter.
func NewFilter(exprStr string) (*Filter, error) {
	if exprStr == "" {
		return nil, nil
	}
	program, err := expr.Compile(exprStr, expr.Env(typeEnv), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression: %w", err)
	}
	return &Filter{program: program, rawExpr: exprStr}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.rawExpr
}

// Match reports whether e passes the filter.
func (f *Filter) Match(e *record.Entry) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, entryEnv(e))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter for pid %d: %w", e.Pid, err)
	}
	keep, _ := out.(bool)
	return keep, nil
}
