package attributes

import (
	"testing"
)

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{`binary == "/usr/bin/cc"`, true},
		{`binary endsWith "/ld"`, false},
		{`"-c" in argv`, true},
		{`any(files, {# endsWith ".c"})`, true},
		{`pid == 42 && index == 1`, true},
		{`cmdline contains "main.c"`, true},
		{`len(files) > 1`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := NewFilter(tt.expr)
			if err != nil {
				t.Fatalf("NewFilter() error = %v", err)
			}
			got, err := f.Match(testEntry())
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_EmptyKeepsEverything(t *testing.T) {
	f, err := NewFilter("")
	if err != nil {
		t.Fatalf("NewFilter() error = %v", err)
	}
	if f != nil {
		t.Fatal("NewFilter(\"\") should return nil")
	}
	keep, err := f.Match(testEntry())
	if err != nil || !keep {
		t.Errorf("nil filter Match() = %v, %v; want true, nil", keep, err)
	}
}

func TestFilter_NonBoolean(t *testing.T) {
	if _, err := NewFilter(`binary`); err == nil {
		t.Error("Expected error for non-boolean filter")
	}
}
