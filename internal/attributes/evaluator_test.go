package attributes

import (
	"testing"

	"github.com/mrzor/etrace-parser/internal/config"
	"github.com/mrzor/etrace-parser/internal/record"
)

func testEntry() *record.Entry {
	e := record.NewPlaceholder(42, 0)
	e.Execed = true
	e.Index = 1
	e.Binary = "/usr/bin/cc"
	e.Cwd = "/src"
	e.Argv = []string{"cc", "-c", "main.c"}
	key := record.FileKey{Path: "/src/main.c"}
	e.Files[key] = &record.FileAccess{FileKey: key}
	return e
}

func TestEvaluator_Simple(t *testing.T) {
	attrs := []config.CustomAttribute{
		{Name: "tool", Expression: `binary`},
		{Name: "arg.first", Expression: `argv[0]`},
	}

	evaluator, err := NewEvaluator(attrs, nil)
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}

	result := evaluator.Evaluate(testEntry())
	if len(result) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(result))
	}

	if result[0].Key != "tool" {
		t.Errorf("result[0].Key = %q, want tool", result[0].Key)
	}
	if result[0].Value.AsString() != "/usr/bin/cc" {
		t.Errorf("result[0].Value = %q, want /usr/bin/cc", result[0].Value.AsString())
	}
	if result[1].Value.AsString() != "cc" {
		t.Errorf("result[1].Value = %q, want cc", result[1].Value.AsString())
	}
}

func TestEvaluator_MapExpansion(t *testing.T) {
	attrs := []config.CustomAttribute{
		{Name: "proc", Expression: `{"first source": files[0], "pid": pid}`},
	}

	evaluator, err := NewEvaluator(attrs, nil)
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}

	result := evaluator.Evaluate(testEntry())
	got := make(map[string]string)
	for _, kv := range result {
		got[string(kv.Key)] = kv.Value.AsString()
	}
	if got["proc.first_source"] != "/src/main.c" {
		t.Errorf("proc.first_source = %q, want /src/main.c", got["proc.first_source"])
	}
	if got["proc.pid"] != "42" {
		t.Errorf("proc.pid = %q, want 42", got["proc.pid"])
	}
}

func TestSanitizeAttributeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"with-dash", "with_dash"},
		{"with.dot", "with_dot"},
		{"with space", "with_space"},
		{"special!@#$%", "special_____"},
		{"mixed-123.test", "mixed_123_test"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := sanitizeAttributeName(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeAttributeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEvaluator_InvalidExpression(t *testing.T) {
	attrs := []config.CustomAttribute{
		{Name: "bad", Expression: `invalid syntax here`},
	}

	if _, err := NewEvaluator(attrs, nil); err == nil {
		t.Error("Expected error for invalid expression")
	}
}

func TestEvaluator_UnknownVariable(t *testing.T) {
	attrs := []config.CustomAttribute{
		{Name: "env", Expression: `env["HOME"]`},
	}

	if _, err := NewEvaluator(attrs, nil); err == nil {
		t.Error("Expected error for unknown variable")
	}
}

func TestEvaluator_RuntimeErrorSkipsAttribute(t *testing.T) {
	attrs := []config.CustomAttribute{
		{Name: "out.of.range", Expression: `argv[10]`},
		{Name: "cwd", Expression: `cwd`},
	}

	evaluator, err := NewEvaluator(attrs, nil)
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}

	result := evaluator.Evaluate(testEntry())
	if len(result) != 1 {
		t.Fatalf("Expected 1 attribute, got %d", len(result))
	}
	if result[0].Key != "cwd" {
		t.Errorf("result[0].Key = %q, want cwd", result[0].Key)
	}
}

func TestEvaluator_NilEntry(t *testing.T) {
	evaluator, err := NewEvaluator([]config.CustomAttribute{{Name: "b", Expression: `binary`}}, nil)
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	if got := evaluator.Evaluate(nil); got != nil {
		t.Errorf("Evaluate(nil) = %v, want nil", got)
	}
}
