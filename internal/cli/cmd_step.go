package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bughunt/internal/campaign"
	"github.com/calvinalkan/bughunt/pkg/bytestream"
	"github.com/calvinalkan/bughunt/pkg/difftest"
)

const (
	stepPrompt = "step> "

	// runLimit stops "run" on cyclic inputs, which never exhaust.
	runLimit = 1 << 16
)

// StepCmd returns the step command.
func StepCmd(cfg *campaign.Config, workDir string, in io.Reader) *Command {
	fs := flag.NewFlagSet("step", flag.ContinueOnError)
	bindTargetFlags(fs, cfg)

	return &Command{
		Flags:   fs,
		Usage:   "step [flags] <file>",
		Short:   "Single-step an input interactively",
		MinArgs: 1,
		Long: `Decode the input one operation at a time and show what each did to the
model and the container under test. Type 'help' at the prompt for commands.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execStep(o, cfg, workDir, in, args[0])
		},
	}
}

// prompter reads REPL lines. *liner.State satisfies it on a terminal.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

func newPrompter(in io.Reader) prompter {
	if in == os.Stdin && liner.TerminalSupported() {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		state.SetCompleter(completeStep)

		return state
	}

	return &scanPrompter{scanner: bufio.NewScanner(in)}
}

// scanPrompter reads lines from a non-terminal reader without echoing a
// prompt.
type scanPrompter struct {
	scanner *bufio.Scanner
}

func (p *scanPrompter) Prompt(string) (string, error) {
	if !p.scanner.Scan() {
		err := p.scanner.Err()
		if err == nil {
			err = io.EOF
		}

		return "", err
	}

	return p.scanner.Text(), nil
}

func (*scanPrompter) AppendHistory(string) {}

func (*scanPrompter) Close() error { return nil }

var stepCommands = []string{"next", "run", "state", "stats", "setup", "help", "quit"}

func completeStep(line string) []string {
	var out []string

	for _, c := range stepCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}

	return out
}

func execStep(o *IO, cfg *campaign.Config, workDir string, in io.Reader, file string) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}

	harness, err := campaign.NewHarness(*cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(resolvePath(workDir, file)) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	stream, err := bytestream.New(data, cfg.StreamPolicy(), cfg.MaxBytes)
	if err != nil {
		return err
	}

	stepper, err := harness.Open(stream)
	if errors.Is(err, bytestream.ErrExhausted) {
		return fmt.Errorf("%w: %s", errInputTooShort, file)
	}

	if err != nil {
		return err
	}

	r := &stepREPL{o: o, stepper: stepper, target: cfg.Target}

	return r.run(newPrompter(in))
}

type stepREPL struct {
	o       *IO
	stepper difftest.Stepper
	target  string
	done    bool
}

func (r *stepREPL) run(p prompter) error {
	defer func() { _ = p.Close() }()

	r.o.Printf("%s: setup %+v, %s\n", r.target, r.stepper.Setup(), r.stepper.Observe())
	r.o.Println("Type 'help' for available commands.")

	for {
		line, err := p.Prompt(stepPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			line = "next"
		}

		p.AppendHistory(line)

		fields := strings.Fields(line)

		switch strings.ToLower(fields[0]) {
		case "quit", "exit", "q":
			return nil
		case "help", "?", "h":
			r.printHelp()
		case "next", "n":
			count := 1

			if len(fields) > 1 {
				count, err = strconv.Atoi(fields[1])
				if err != nil || count <= 0 {
					r.o.Printf("invalid count %q\n", fields[1])

					continue
				}
			}

			r.step(count)
		case "run", "r", "c":
			r.step(runLimit)
		case "state", "s":
			r.o.Println(r.stepper.Observe())
		case "stats":
			stats := r.stepper.Stats()
			r.o.Printf("ops=%d skipped=%d by_kind=%v\n", stats.Ops, stats.Skipped, stats.ByKind)
		case "setup":
			r.o.Printf("%+v\n", r.stepper.Setup())
		default:
			r.o.Printf("unknown command: %s (type 'help' for commands)\n", fields[0])
		}
	}
}

// step advances up to count operations.
func (r *stepREPL) step(count int) {
	if r.done {
		r.o.Println("input finished")

		return
	}

	for range count {
		step, err := r.stepper.Next()
		if errors.Is(err, bytestream.ErrExhausted) {
			r.done = true
			r.o.Println("input exhausted")

			return
		}

		if err != nil {
			r.done = true

			if step.Op != nil {
				r.o.Printf("#%d %s\n", step.Position, step.Op)
			}

			r.o.Printf("FAIL %v\n", err)
			printFailureDetail(r.o, err)

			return
		}

		r.o.Printf("#%d %s -> %s | %s\n", step.Position, step.Op, step.Effect, step.Post)
	}
}

func (r *stepREPL) printHelp() {
	r.o.Println("Commands:")
	r.o.Println("  next [n]    Apply the next n operations (default 1, also on empty line)")
	r.o.Println("  run         Apply operations until the input ends or fails")
	r.o.Println("  state       Show the current model/container snapshot")
	r.o.Println("  stats       Show operation counters")
	r.o.Println("  setup       Show the decoded run header")
	r.o.Println("  help        Show this help")
	r.o.Println("  quit        Exit")
}
