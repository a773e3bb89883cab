// Package bootstrap wires all dependencies of the treelite commands.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/crflynn/treelite/adapters/idgen"
	"github.com/crflynn/treelite/adapters/memory"
	"github.com/crflynn/treelite/adapters/metrics"
	"github.com/crflynn/treelite/app"
	"github.com/crflynn/treelite/config"
	"github.com/crflynn/treelite/core/capability"
	"github.com/crflynn/treelite/core/deepcopy"
	"github.com/crflynn/treelite/core/exporter"
	"github.com/crflynn/treelite/core/formatter"
	"github.com/crflynn/treelite/domain/entry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// App holds the wired application.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	// Metrics
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	// Ownership accounting
	Tracker   *memory.Tracker
	Exporters *exporter.Registry

	// Registries
	Variants   *capability.Registry
	Formatters *formatter.Registry

	// Services
	Verifier *app.VerifyService
}

// Options overrides the default outputs.
type Options struct {
	// LogOutput receives log lines (default: os.Stderr).
	LogOutput io.Writer

	// MetricsOutput receives the metrics exposition on Shutdown when
	// metrics are enabled (default: os.Stdout).
	MetricsOutput io.Writer
}

// New creates and initializes the application.
func New(cfg *config.Config) (*App, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates and initializes the application with custom outputs.
func NewWithOptions(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.MetricsOutput == nil {
		opts.MetricsOutput = os.Stdout
	}

	logger := setupLogger(cfg.Logging, opts.LogOutput)

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Registry:   prometheus.NewRegistry(),
		Tracker:    memory.NewTracker(),
		Exporters:  exporter.NewRegistry(),
		Variants:   capability.NewRegistry(),
		Formatters: formatter.DefaultRegistry,
	}
	a.Metrics = metrics.NewWithRegistry(a.Registry)

	if err := entry.Register(a.Variants); err != nil {
		return nil, fmt.Errorf("register variants: %w", err)
	}

	if _, ok := a.Formatters.Get(cfg.Format.Output); !ok {
		return nil, fmt.Errorf("unknown formatter %q (available: %v)", cfg.Format.Output, a.Formatters.List())
	}

	if err := a.initExporters(opts); err != nil {
		return nil, fmt.Errorf("init exporters: %w", err)
	}

	a.Verifier = app.NewVerifyService(a.Variants, a.Tracker, a.Exporters.Observer(), logger).
		WithIDGenerator(idgen.UUID{})

	logger.Debug().
		Int("variants", a.Variants.Len()).
		Strs("formatters", a.Formatters.List()).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("treelite initialized")

	return a, nil
}

func (a *App) initExporters(opts Options) error {
	if err := a.Exporters.Register(exporter.NewLogExporter(exporter.LogConfig{
		Logger: a.Logger,
		Level:  zerolog.DebugLevel,
	})); err != nil {
		return err
	}

	promCfg := exporter.PrometheusConfig{
		Gatherer: a.Registry,
		Observer: a.Metrics,
	}
	if a.Config.Metrics.Enabled {
		promCfg.Output = opts.MetricsOutput
	}
	return a.Exporters.Register(exporter.NewPrometheusExporter(promCfg))
}

// Observer returns the observer handles should report to: the tracker
// followed by every registered exporter.
func (a *App) Observer() deepcopy.Observer {
	return deepcopy.Observers(a.Tracker, a.Exporters.Observer())
}

// FormatOptions returns the formatter options derived from the configuration.
func (a *App) FormatOptions() formatter.FormatOptions {
	return formatter.FormatOptions{TextWidth: a.Config.Format.Width}
}

// VerifyOptions returns the verification options derived from the configuration.
func (a *App) VerifyOptions() app.VerifyOptions {
	return app.VerifyOptions{
		Iterations: a.Config.Verify.Iterations,
		Workers:    a.Config.Verify.Workers,
	}
}

// Formatter returns the configured formatter, or the named one when name is set.
func (a *App) Formatter(name string) (formatter.Formatter, error) {
	if name == "" {
		name = a.Config.Format.Output
	}
	f, ok := a.Formatters.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown formatter %q (available: %v)", name, a.Formatters.List())
	}
	return f, nil
}

// Shutdown flushes every exporter.
func (a *App) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return a.Exporters.Flush(ctx)
}

func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
