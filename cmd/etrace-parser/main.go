// etrace-parser turns a kernel execution trace log into a database of exec
// incarnations, their file accesses and the pipes between them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mrzor/etrace-parser/internal/config"
	"github.com/mrzor/etrace-parser/internal/otel"
	"github.com/mrzor/etrace-parser/internal/pipeline"
)

// Version information injected at build time.
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitOK = iota
	exitFailure
	exitCancelled
	exitInputUnavailable
)

func main() {
	os.Exit(run(os.Args))
}

// exitCode maps the error of a run to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, config.ErrHelp):
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitCancelled
	case errors.Is(err, pipeline.ErrInputUnavailable):
		return exitInputUnavailable
	default:
		return exitFailure
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}

// setupOTEL initializes the OTEL provider and returns a tracer and cleanup function.
func setupOTEL(logger *zap.Logger) (trace.Tracer, func(), error) {
	otelCfg, err := config.ParseOTELConfig(nil)
	if err != nil {
		return nil, nil, err
	}

	tp, err := otel.InitProvider(otelCfg, fmt.Sprintf("%s (%s)", version, commit), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OTEL provider: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otel.ShutdownProvider(shutdownCtx, tp); err != nil {
			logger.Warn("error shutting down OTEL provider", zap.Error(err))
		}
	}

	return otel.Tracer(tp), cleanup, nil
}

func run(args []string) int {
	cfg, err := config.ParseArgs(args)
	if errors.Is(err, config.ErrHelp) {
		fmt.Print(config.Usage(args[0]))
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, config.Usage(args[0]))
		return exitFailure
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		return exitFailure
	}
	defer func() {
		_ = logger.Sync() //nolint:errcheck // stderr sync fails on some terminals
	}()

	fs := afero.NewOsFs()
	if err := cfg.Load(fs, nil); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tracer trace.Tracer
	if cfg.Spans {
		var cleanup func()
		tracer, cleanup, err = setupOTEL(logger)
		if err != nil {
			logger.Error("tracing setup failed", zap.Error(err))
			return exitFailure
		}
		defer cleanup()
	}

	logger.Info("starting etrace-parser",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("input", cfg.Input),
		zap.String("output", cfg.Output))

	p := pipeline.New(cfg, fs, tracer, logger)
	p.ProgressOut = os.Stdout
	err = p.Run(ctx)
	code := exitCode(err)
	switch code {
	case exitOK:
	case exitCancelled:
		logger.Warn("interrupted, no output written")
		return code
	default:
		logger.Error("parse failed", zap.Error(err))
		return code
	}

	if cfg.Stats {
		if err := p.Stats.Report(os.Stdout); err != nil {
			logger.Error("failed to print statistics", zap.Error(err))
			return exitFailure
		}
	}
	return exitOK
}
