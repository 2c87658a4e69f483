package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bughunt/internal/campaign"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *campaign.Config, source string) *Command {
	fs := flag.NewFlagSet("print-config", flag.ContinueOnError)
	bindCampaignFlags(fs, cfg)

	return &Command{
		Flags: fs,
		Usage: "print-config [flags]",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration, after flags, and the file it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execPrintConfig(o, cfg, source)
		},
	}
}

func execPrintConfig(o *IO, cfg *campaign.Config, source string) error {
	err := cfg.Validate()
	if err != nil {
		o.Warn("config is invalid", err.Error())
	}

	formatted, err := campaign.FormatConfig(*cfg)
	if err != nil {
		return err
	}

	o.Println(formatted)
	o.Println("")
	o.Println("# Sources:")

	if source == "" {
		o.Println("#   (using defaults only)")
	} else {
		o.Println("#   config:", source)
	}

	return nil
}
