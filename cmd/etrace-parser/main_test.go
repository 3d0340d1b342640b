package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzor/etrace-parser/internal/config"
	"github.com/mrzor/etrace-parser/internal/pipeline"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"help", config.ErrHelp, exitOK},
		{"cancelled", fmt.Errorf("ingest: %w", context.Canceled), exitCancelled},
		{"missing input", fmt.Errorf("%w: open .nfsdb", pipeline.ErrInputUnavailable), exitInputUnavailable},
		{"other", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "trace.log")
	out := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(in, []byte("header\n0: 10,0,0,5!Exit|status=0\n"), 0o644))

	assert.Equal(t, exitOK, run([]string{"etrace-parser", in, out, "--no-progress", "--no-stat"}))
	_, err := os.Stat(out)
	assert.NoError(t, err)

	assert.Equal(t, exitInputUnavailable, run([]string{"etrace-parser", filepath.Join(dir, "missing.log"), out}))
	assert.Equal(t, exitFailure, run([]string{"etrace-parser", "--bogus"}))
	assert.Equal(t, exitOK, run([]string{"etrace-parser", "--help"}))
}
