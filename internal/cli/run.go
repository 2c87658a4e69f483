package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bughunt/internal/campaign"
)

// envConfig names the environment variable consulted when no --config flag
// is given.
const envConfig = "BUGHUNT_CONFIG"

var (
	errMissingArgs   = errors.New("missing arguments")
	errNoInputFiles  = errors.New("no input files")
	errInputsFailed  = errors.New("inputs failed")
	errInputTooShort = errors.New("input too short for run header")
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. When it delivers a signal the command context is
// cancelled, which stops a running campaign at the next run boundary.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globalFlags := flag.NewFlagSet("bughunt", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.SetOutput(&strings.Builder{})

	workDir := globalFlags.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globalFlags.StringP("config", "c", "", "Use specified config `file`")
	help := globalFlags.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globalFlags.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalFlags(errOut, globalFlags)

		return 1
	}

	if *workDir == "" {
		*workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}
	}

	if *configPath == "" {
		*configPath = env[envConfig]
	}

	cfg, source, err := campaign.LoadConfig(*workDir, *configPath)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	commands := []*Command{
		RunCmd(&cfg, *workDir),
		FuzzCmd(&cfg, *workDir),
		StepCmd(&cfg, *workDir, in),
		SchemaCmd(&cfg),
		PrintConfigCmd(&cfg, source),
	}

	rest := globalFlags.Args()
	if *help || len(rest) == 0 {
		printUsage(out, globalFlags, commands)

		return 0
	}

	var cmd *Command

	for _, c := range commands {
		if c.Name() == rest[0] {
			cmd = c
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", rest[0])
		printUsage(errOut, globalFlags, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(out, errOut)

	code := cmd.Run(ctx, o, rest[1:])
	if code != 0 {
		return code
	}

	return o.Finish()
}

func resolvePath(workDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printGlobalFlags(w io.Writer, globalFlags *flag.FlagSet) {
	fprintln(w, "Global flags:")

	var buf strings.Builder
	globalFlags.SetOutput(&buf)
	globalFlags.PrintDefaults()
	globalFlags.SetOutput(&strings.Builder{})

	_, _ = io.WriteString(w, buf.String())
}

func printUsage(w io.Writer, globalFlags *flag.FlagSet, commands []*Command) {
	fprintln(w, `bughunt - differential property testing for containers

Usage: bughunt [global flags] <command> [args]`)
	fprintln(w)
	printGlobalFlags(w, globalFlags)
	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}
