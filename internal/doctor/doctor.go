// Package doctor provides environment preflight checks for taibun.
package doctor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/go-taibun/internal/text"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// ProbeFunc reports whether a component is usable.
type ProbeFunc func() error

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// SynthLabel names the synthesis backend in output, e.g. "remote http://host:5000".
	SynthLabel string
	// SynthProbe checks the synthesis backend is reachable.
	SynthProbe ProbeFunc
	// SkipSynth skips the synthesis check (conversion-only deployments).
	SkipSynth bool
	// LogFile is checked for a writable parent directory when set.
	LogFile string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

type engineCase struct {
	in      string
	sandhi  bool
	variant text.Variant
	want    string
}

var engineCases = []engineCase{
	{in: "--lah", want: "lah0"},
	{in: "ńg", want: "ng2"},
	{in: "bak", want: "bak4"},
	{in: "guá sī Tâi-oân-lâng。", want: "gua2 si7 Tai5-oan5-lang5"},
	{in: "ti am", sandhi: true, want: "ti7 am1"},
	{in: "Tâi-oân", sandhi: true, variant: text.VariantChuan, want: "Tai3-oan5"},
}

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- conversion engine ------------------------------------------------
	if err := checkEngine(); err != nil {
		res.fail(fmt.Sprintf("conversion engine: %v", err))
		fmt.Fprintf(w, "%s conversion engine: %v\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s conversion engine: %d self-test cases\n", PassMark, len(engineCases))
	}

	// ---- synthesis backend ------------------------------------------------
	switch {
	case cfg.SkipSynth:
		fmt.Fprintf(w, "%s synthesis backend: skipped\n", PassMark)
	case cfg.SynthProbe == nil:
		res.fail("synthesis backend: no probe configured")
		fmt.Fprintf(w, "%s synthesis backend: no probe configured\n", FailMark)
	default:
		if err := cfg.SynthProbe(); err != nil {
			res.fail(fmt.Sprintf("synthesis backend %s: %v", cfg.SynthLabel, err))
			fmt.Fprintf(w, "%s synthesis backend %s: unreachable (%v)\n", FailMark, cfg.SynthLabel, err)
		} else {
			fmt.Fprintf(w, "%s synthesis backend: %s\n", PassMark, cfg.SynthLabel)
		}
	}

	// ---- log file ---------------------------------------------------------
	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := checkWritableDir(dir); err != nil {
			res.fail(fmt.Sprintf("log directory %q: %v", dir, err))
			fmt.Fprintf(w, "%s log directory %s: not writable\n", FailMark, dir)
		} else {
			fmt.Fprintf(w, "%s log directory: %s\n", PassMark, dir)
		}
	}

	return res
}

func checkEngine() error {
	for _, c := range engineCases {
		got := text.ToNumericToneWithSandhi(c.in, c.sandhi, c.variant)
		if got != c.want {
			return fmt.Errorf("%q converted to %q, want %q", c.in, got, c.want)
		}
	}
	return nil
}

// checkWritableDir creates and removes a probe file in dir.
func checkWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	f, err := os.CreateTemp(dir, ".taibun-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
