package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bughunt/internal/campaign"
)

// SchemaCmd returns the schema command.
func SchemaCmd(cfg *campaign.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("schema", flag.ContinueOnError),
		Usage: "schema [target]",
		Short: "Show a target's operation variants",
		Long: `Print the operation variants of a target in discriminant order, with the
number of the 256 discriminant byte values that select each one. Without an
argument, lists the registered targets.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return execListTargets(o, cfg)
			}

			return execSchema(o, cfg, args[0])
		},
	}
}

func execListTargets(o *IO, cfg *campaign.Config) error {
	for _, name := range campaign.TargetNames() {
		marker := " "
		if name == cfg.Target {
			marker = "*"
		}

		o.Printf("%s %s\n", marker, name)
	}

	return nil
}

func execSchema(o *IO, cfg *campaign.Config, target string) error {
	c := *cfg
	c.Target = target

	harness, err := campaign.NewHarness(c)
	if err != nil {
		return err
	}

	schema := harness.Schema()
	if schema == nil {
		o.Printf("%s: no operation schema (one fixed-shape case per input)\n", harness.Name())

		return nil
	}

	o.Printf("family:   %s\n", schema.Family())
	o.Printf("variants: %d\n", schema.Len())
	o.Printf("uniform:  %v\n", schema.Uniform())
	o.Println()

	weights := schema.Weights()

	for i, name := range schema.Names() {
		bar := strings.Repeat("#", weights[i]/4)
		o.Printf("%3d  %-16s %3d/256  %s\n", i, name, weights[i], bar)
	}

	if !schema.Uniform() {
		o.Println()
		o.Printf("note: 256 %% %d != 0, earlier variants are selected slightly more often\n", schema.Len())
	}

	return nil
}
