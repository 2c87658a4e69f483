package campaign

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/calvinalkan/bughunt/pkg/difftest"
)

// Report is the JSON document written to [Config.ReportPath].
type Report struct {
	Target       string `json:"target"`
	Policy       string `json:"policy"`
	Seed         uint64 `json:"seed"`
	Runs         int64  `json:"runs"`
	Ops          int64  `json:"ops"`
	Skipped      int64  `json:"skipped"`
	DurationMS   int64  `json:"duration_ms"`    //nolint:tagliatelle // snake_case for report file
	PeakRSSBytes int64  `json:"peak_rss_bytes"` //nolint:tagliatelle // snake_case for report file

	Failure *FailureReport `json:"failure,omitempty"`
}

// FailureReport describes the failing run in a [Report].
type FailureReport struct {
	Run       int    `json:"run"`
	Input     string `json:"input_hex"` //nolint:tagliatelle // snake_case for report file
	Kind      string `json:"kind,omitempty"`
	Position  int    `json:"position"`
	Op        string `json:"op,omitempty"`
	Invariant string `json:"invariant,omitempty"`
	Message   string `json:"message"`
}

// NewReport builds a report from a campaign result and the error Run
// returned.
func NewReport(cfg Config, result Result, err error) Report {
	report := Report{
		Target:       result.Target,
		Policy:       cfg.Policy,
		Seed:         cfg.Seed,
		Runs:         result.Runs,
		Ops:          result.Ops,
		Skipped:      result.Skipped,
		DurationMS:   result.Duration.Milliseconds(),
		PeakRSSBytes: result.PeakRSS,
	}

	var runErr *RunError
	if !errors.As(err, &runErr) {
		return report
	}

	failure := &FailureReport{
		Run:     runErr.Run,
		Input:   hex.EncodeToString(runErr.Input),
		Message: runErr.Err.Error(),
	}

	var f *difftest.Failure
	if errors.As(runErr.Err, &f) {
		failure.Kind = f.Kind.String()
		failure.Position = f.Position
		failure.Invariant = f.Invariant

		if f.Op != nil {
			failure.Op = fmt.Sprint(f.Op)
		}
	}

	report.Failure = failure

	return report
}

// WriteReport writes report to path atomically, creating the parent
// directory if needed.
func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	data = append(data, '\n')

	err = atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}
