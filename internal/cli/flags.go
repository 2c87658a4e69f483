package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bughunt/internal/campaign"
)

// Flags are bound straight into the loaded config, so anything set on the
// command line overrides the config file and everything else keeps the file
// or default value.

func bindTargetFlags(fs *flag.FlagSet, cfg *campaign.Config) {
	fs.StringVarP(&cfg.Target, "target", "t", cfg.Target, "Target to run (see 'bughunt schema')")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "Stream policy: bounded or cyclic")
	fs.IntVar(&cfg.MaxBytes, "max-bytes", cfg.MaxBytes, "Bytes a bounded stream may read")
	fs.StringVar(&cfg.Hasher, "hasher", cfg.Hasher, "Map hash: awful or xxhash")
	fs.Uint8Var(&cfg.HashModulus, "hash-modulus", cfg.HashModulus, "Modulus of the awful hash (0 disables)")
	fs.BoolVar(&cfg.ContentCheck, "content-check", cfg.ContentCheck, "Compare full contents after every operation")
}

func bindCampaignFlags(fs *flag.FlagSet, cfg *campaign.Config) {
	bindTargetFlags(fs, cfg)
	fs.IntVarP(&cfg.Runs, "runs", "n", cfg.Runs, "Number of random inputs")
	fs.IntVar(&cfg.InputSize, "input-size", cfg.InputSize, "Bytes per random input")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Seed for input generation")
	fs.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Concurrent workers")
	fs.Int64Var(&cfg.Memory.LimitBytes, "memory-limit", cfg.Memory.LimitBytes, "Soft memory limit in bytes (0 keeps current)")
	fs.IntVar(&cfg.Memory.GCPercent, "gc-percent", cfg.Memory.GCPercent, "GC target percentage (negative keeps current)")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "Also write JSON logs to `file` (rotated)")
	fs.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "Write a JSON report to `file`")
}
