package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))

	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "treelite dev\n") || !strings.Contains(out, "go:") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "", "version", "--short")
	if err != nil {
		t.Fatalf("version --short error: %v", err)
	}
	if out != "dev\n" {
		t.Errorf("short output = %q, want %q", out, "dev\n")
	}
}

func TestFormatCmd_Args(t *testing.T) {
	out, err := execute(t, "", "format", "0.5", "1", "2.25")
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	want := "values[] = {\n  0.5, 1, 2.25,\n};\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestFormatCmd_StdinWrapped(t *testing.T) {
	out, err := execute(t, "1000000, inf\n-inf nan\n", "format", "--name", "t", "--width", "14")
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	want := "t[] = {\n  1e+06, inf, \n  -inf, nan,\n};\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestFormatCmd_InvalidValue(t *testing.T) {
	if _, err := execute(t, "", "format", "1", "abc"); err == nil {
		t.Error("expected error for invalid value")
	}
}

func TestFormatCmd_JSON(t *testing.T) {
	out, err := execute(t, "", "format", "-o", "json", "1", "2")
	if err != nil {
		t.Fatalf("format error: %v", err)
	}
	if !strings.Contains(out, "1") || !strings.Contains(out, "2") {
		t.Errorf("output = %q", out)
	}
}

func TestSearchCmd(t *testing.T) {
	out, err := execute(t, "", "search", "-t", "1,2,3", "2", "2.5", "0")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, " ") != "VALUE INDEX CODE" {
		t.Errorf("header = %q", lines[0])
	}
	if fields := strings.Fields(lines[1]); strings.Join(fields, " ") != "2 1 2" {
		t.Errorf("row 2 = %q", lines[1])
	}
	if fields := strings.Fields(lines[2]); strings.Join(fields, " ") != "2.5 not found 3" {
		t.Errorf("row 2.5 = %q", lines[2])
	}
	if fields := strings.Fields(lines[3]); strings.Join(fields, " ") != "0 not found -10" {
		t.Errorf("row 0 = %q", lines[3])
	}
}

func TestSearchCmd_Unsorted(t *testing.T) {
	if _, err := execute(t, "", "search", "-t", "3,1", "1"); err == nil {
		t.Error("expected error for unsorted thresholds")
	}
}

func TestVariantsCmd(t *testing.T) {
	out, err := execute(t, "", "variants")
	if err != nil {
		t.Fatalf("variants error: %v", err)
	}
	if !strings.Contains(out, "*entry.Entry") || !strings.Contains(out, "*entry.Row") {
		t.Errorf("output missing variants:\n%s", out)
	}
}

func TestValidateCmd(t *testing.T) {
	out, err := execute(t, "", "validate", "--check-variants")
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if !strings.Contains(out, "Configuration is valid.") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Clone contract") {
		t.Errorf("output missing clone contract check: %q", out)
	}
}

func TestValidateCmd_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := execute(t, "", "validate", "--config", path); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestVerifyCmd(t *testing.T) {
	out, err := execute(t, "", "verify", "--iterations", "20", "--workers", "2", "--metrics")
	if err != nil {
		t.Fatalf("verify error: %v\n%s", err, out)
	}

	if !strings.Contains(out, "entry") || !strings.Contains(out, "row") {
		t.Errorf("report missing variants:\n%s", out)
	}
	if strings.Contains(out, "leaked") || strings.Contains(out, "violated") {
		t.Errorf("report shows failures:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE treelite_allocations_total counter") {
		t.Errorf("output missing metrics exposition:\n%s", out)
	}
	if !strings.Contains(out, `treelite_allocations_total{kind="*entry.Row",op="copy"} 20`) {
		t.Errorf("output missing row copy count:\n%s", out)
	}
}
