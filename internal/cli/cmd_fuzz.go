package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	"github.com/calvinalkan/bughunt/internal/campaign"
)

const metricsInterval = 5 * time.Second

// FuzzCmd returns the fuzz command.
func FuzzCmd(cfg *campaign.Config, workDir string) *Command {
	fs := flag.NewFlagSet("fuzz", flag.ContinueOnError)
	bindCampaignFlags(fs, cfg)

	crashDir := fs.String("crash-dir", "", "Save the failing input into `dir`")

	return &Command{
		Flags: fs,
		Usage: "fuzz [flags]",
		Short: "Run a random campaign",
		Long: `Generate --runs reproducible random inputs from --seed and run them on
--workers goroutines. Stops at the first failure. Logs are JSON on stderr.

With --policy=cyclic every run replays up to 65535 operations, so a single
run can take seconds. Lower --runs, or pass --content-check=false to skip the
full contents comparison after each operation.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execFuzz(ctx, o, cfg, workDir, *crashDir)
		},
	}
}

func execFuzz(ctx context.Context, o *IO, cfg *campaign.Config, workDir, crashDir string) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}

	logCfg := cfg.Log
	logCfg.File = resolvePath(workDir, logCfg.File)

	logger, logCloser, err := campaign.NewLogger(o.ErrOut(), logCfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync()
		_ = logCloser.Close()
	}()

	scope, scopeCloser := tally.NewRootScope(tally.ScopeOptions{
		Prefix:   "bughunt",
		Reporter: campaign.NewLogReporter(logger),
	}, metricsInterval)

	defer func() { _ = scopeCloser.Close() }()

	c, err := campaign.New(*cfg, logger, campaign.NewMetrics(scope))
	if err != nil {
		return err
	}

	result, runErr := c.Run(ctx)

	o.Printf("target=%s runs=%d ops=%d skipped=%d duration=%s\n",
		result.Target, result.Runs, result.Ops, result.Skipped, result.Duration.Round(time.Millisecond))

	if cfg.ReportPath != "" {
		reportErr := campaign.WriteReport(resolvePath(workDir, cfg.ReportPath), campaign.NewReport(*cfg, result, runErr))
		if reportErr != nil {
			return reportErr
		}
	}

	var failed *campaign.RunError
	if errors.As(runErr, &failed) {
		o.Printf("FAIL run %d: %v\n", failed.Run, failed.Err)
		printFailureDetail(o, failed.Err)

		if crashDir != "" {
			path, saveErr := saveCrash(resolvePath(workDir, crashDir), cfg.Target, failed)
			if saveErr != nil {
				logger.Error("save crash input", zap.Error(saveErr))
			} else {
				o.Printf("input saved to %s\n", path)
			}
		}
	}

	return runErr
}

func saveCrash(dir, target string, failed *campaign.RunError) (string, error) {
	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		return "", fmt.Errorf("create crash dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("crash-%s-%d.bin", target, failed.Run))

	err = atomic.WriteFile(path, bytes.NewReader(failed.Input))
	if err != nil {
		return "", fmt.Errorf("write crash input: %w", err)
	}

	return path, nil
}
