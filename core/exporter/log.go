package exporter

import (
	"context"
	"sync"

	"github.com/crflynn/treelite/core/deepcopy"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogExporter writes ownership events to a logger.
// Useful for debugging and development.
type LogExporter struct {
	logger zerolog.Logger
	level  zerolog.Level

	mu     sync.Mutex
	counts map[deepcopy.Op]int
}

// LogConfig configures the log exporter.
type LogConfig struct {
	// Logger is the zerolog logger to use.
	Logger zerolog.Logger

	// Level is the level events are logged at (default: debug).
	Level zerolog.Level
}

// NewLogExporter creates a new log exporter.
func NewLogExporter(cfg LogConfig) *LogExporter {
	level := cfg.Level
	if level == zerolog.NoLevel {
		level = zerolog.DebugLevel
	}
	return &LogExporter{
		logger: cfg.Logger,
		level:  level,
		counts: make(map[deepcopy.Op]int),
	}
}

// Name returns the exporter name.
func (e *LogExporter) Name() string {
	return "log"
}

// Observe logs one event.
func (e *LogExporter) Observe(ev deepcopy.Event) {
	e.mu.Lock()
	e.counts[ev.Op]++
	e.mu.Unlock()

	l := e.logger.WithLevel(e.level).
		Str("op", ev.Op.String()).
		Str("kind", ev.Kind).
		Str("id", ev.ID.String())
	if ev.Parent != uuid.Nil {
		l = l.Str("parent", ev.Parent.String())
	}
	l.Msg("ownership event")
}

// Counts returns the number of events seen per operation.
func (e *LogExporter) Counts() map[deepcopy.Op]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[deepcopy.Op]int, len(e.counts))
	for op, n := range e.counts {
		out[op] = n
	}
	return out
}

// Flush logs a summary of the events seen so far.
func (e *LogExporter) Flush(ctx context.Context) error {
	counts := e.Counts()

	ev := e.logger.Info()
	for _, op := range []deepcopy.Op{
		deepcopy.OpNew, deepcopy.OpAdopt, deepcopy.OpCopy,
		deepcopy.OpMove, deepcopy.OpRelease, deepcopy.OpTake,
	} {
		ev = ev.Int(op.String(), counts[op])
	}
	ev.Msg("ownership summary")
	return nil
}

// NoopExporter discards all events.
// Useful as a placeholder or for testing.
type NoopExporter struct{}

// NewNoopExporter creates a new noop exporter.
func NewNoopExporter() *NoopExporter {
	return &NoopExporter{}
}

// Name returns the exporter name.
func (e *NoopExporter) Name() string {
	return "noop"
}

// Observe discards the event.
func (e *NoopExporter) Observe(ev deepcopy.Event) {}

// Flush is a no-op.
func (e *NoopExporter) Flush(ctx context.Context) error {
	return nil
}

// Ensure interface compliance.
var (
	_ Exporter = (*LogExporter)(nil)
	_ Exporter = (*NoopExporter)(nil)
)
