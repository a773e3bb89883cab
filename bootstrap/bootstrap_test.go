package bootstrap_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/crflynn/treelite/bootstrap"
	"github.com/crflynn/treelite/config"
	"github.com/crflynn/treelite/core/deepcopy"
	"github.com/crflynn/treelite/domain/entry"
)

func newApp(t *testing.T, mutate func(*config.Config)) (*bootstrap.App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	var logs, metricsOut bytes.Buffer
	a, err := bootstrap.NewWithOptions(cfg, bootstrap.Options{LogOutput: &logs, MetricsOutput: &metricsOut})
	if err != nil {
		t.Fatalf("NewWithOptions error: %v", err)
	}
	return a, &logs, &metricsOut
}

func TestNew_WiresComponents(t *testing.T) {
	a, _, _ := newApp(t, nil)

	if a.Metrics == nil || a.Registry == nil {
		t.Error("metrics should be initialized")
	}
	if a.Tracker == nil {
		t.Error("Tracker should not be nil")
	}
	if a.Verifier == nil {
		t.Error("Verifier should not be nil")
	}
	if a.Variants.Len() != 2 {
		t.Errorf("Variants.Len() = %d, want 2", a.Variants.Len())
	}
	if _, ok := a.Exporters.Get("log"); !ok {
		t.Error("log exporter not registered")
	}
	if _, ok := a.Exporters.Get("prometheus"); !ok {
		t.Error("prometheus exporter not registered")
	}
	if a.FormatOptions().TextWidth != 80 {
		t.Errorf("TextWidth = %d, want 80", a.FormatOptions().TextWidth)
	}
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	a, err := bootstrap.NewWithOptions(nil, bootstrap.Options{LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("NewWithOptions error: %v", err)
	}
	if a.Config.Format.Output != "array" {
		t.Errorf("Format.Output = %s, want array", a.Config.Format.Output)
	}
}

func TestNew_UnknownFormatter(t *testing.T) {
	cfg := config.Default()
	cfg.Format.Output = "xml"

	if _, err := bootstrap.NewWithOptions(cfg, bootstrap.Options{LogOutput: &bytes.Buffer{}}); err == nil {
		t.Error("expected error for unknown formatter")
	}
}

func TestApp_Formatter(t *testing.T) {
	a, _, _ := newApp(t, nil)

	f, err := a.Formatter("")
	if err != nil || f.Name() != "array" {
		t.Errorf("Formatter(\"\") = %v, %v, want array", f, err)
	}
	if f, err := a.Formatter("json"); err != nil || f.Name() != "json" {
		t.Errorf("Formatter(json) = %v, %v", f, err)
	}
	if _, err := a.Formatter("nope"); err == nil {
		t.Error("Formatter(nope) should fail")
	}
}

func TestApp_ObserverFeedsTrackerAndMetrics(t *testing.T) {
	a, _, metricsOut := newApp(t, func(cfg *config.Config) {
		cfg.Metrics.Enabled = true
	})

	h := deepcopy.New[entry.Data](entry.NewFloat(1), deepcopy.WithObserver(a.Observer()))
	c := h.Copy()
	c.Release()

	if a.Tracker.Live() != 1 {
		t.Errorf("Tracker.Live() = %d, want 1", a.Tracker.Live())
	}
	h.Release()

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}

	out := metricsOut.String()
	if !strings.Contains(out, `treelite_allocations_total{kind="*entry.Entry",op="copy"} 1`) {
		t.Errorf("metrics output missing copy allocation:\n%s", out)
	}
	if !strings.Contains(out, `treelite_live_objects{kind="*entry.Entry"} 0`) {
		t.Errorf("metrics output missing live gauge:\n%s", out)
	}
}

func TestApp_MetricsDisabledWritesNothing(t *testing.T) {
	a, _, metricsOut := newApp(t, nil)

	deepcopy.New(entry.NewFloat(1), deepcopy.WithObserver(a.Observer())).Release()

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}
	if metricsOut.Len() != 0 {
		t.Errorf("metrics output should be empty, got:\n%s", metricsOut.String())
	}
}

func TestApp_VerifierRuns(t *testing.T) {
	a, _, _ := newApp(t, nil)

	report, err := a.Verifier.Run(context.Background(), a.VerifyOptions())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if err := report.Err(); err != nil {
		t.Errorf("verification failed: %v", err)
	}
}
