package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bughunt/internal/campaign"
	"github.com/calvinalkan/bughunt/pkg/difftest"
)

// RunCmd returns the run command.
func RunCmd(cfg *campaign.Config, workDir string) *Command {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	bindTargetFlags(fs, cfg)

	return &Command{
		Flags:   fs,
		Usage:   "run [flags] <file>...",
		Short:   "Replay corpus files through a target",
		MinArgs: 1,
		Long: `Replay each file as one input. Bounded inputs run until the stream is
exhausted; cyclic inputs are read as a counted program. Exits 1 if any input
fails.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execRun(o, cfg, workDir, args)
		},
	}
}

func execRun(o *IO, cfg *campaign.Config, workDir string, files []string) error {
	if len(files) == 0 {
		return errNoInputFiles
	}

	err := cfg.Validate()
	if err != nil {
		return err
	}

	harness, err := campaign.NewHarness(*cfg)
	if err != nil {
		return err
	}

	failed := 0

	for _, file := range files {
		data, readErr := os.ReadFile(resolvePath(workDir, file)) //nolint:gosec // path is intentionally user-controlled
		if readErr != nil {
			return fmt.Errorf("read %s: %w", file, readErr)
		}

		stats, runErr := campaign.Execute(harness, data, cfg.StreamPolicy(), cfg.MaxBytes)
		if runErr != nil {
			failed++

			o.Printf("FAIL %s: %v\n", file, runErr)
			printFailureDetail(o, runErr)

			continue
		}

		o.Printf("ok   %s ops=%d skipped=%d\n", file, stats.Ops, stats.Skipped)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errInputsFailed, failed, len(files))
	}

	return nil
}

// printFailureDetail prints the state and diff carried by a failure.
func printFailureDetail(o *IO, err error) {
	var failure *difftest.Failure
	if !errors.As(err, &failure) {
		return
	}

	o.Printf("     state: %s\n", failure.State)

	if failure.Detail == "" {
		return
	}

	for line := range strings.SplitSeq(strings.TrimRight(failure.Detail, "\n"), "\n") {
		o.Printf("     %s\n", line)
	}
}
