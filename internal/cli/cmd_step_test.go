package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/bughunt/internal/cli"
	"github.com/calvinalkan/bughunt/pkg/difftest"
)

func Test_Step_Applies_Operations_When_Commands_Read(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("in.bin", mapInput(t,
		u8Insert{Key: 4, Value: 40},
		u8Insert{Key: 4, Value: 41},
		difftest.Remove[uint8]{Key: 4},
		difftest.Clear{},
	))

	stdout, stderr, code := c.RunWithInput("next 2\nstate\n\nstats\nrun\nnext\nquit\n", "step", "in.bin")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	cli.AssertContains(t, stdout, "hashmap: setup {HashSeed:3 Capacity:2}")
	cli.AssertContains(t, stdout, "#0 Insert(4, 40) -> applied")
	cli.AssertContains(t, stdout, "#1 Insert(4, 41) -> applied")
	cli.AssertContains(t, stdout, "model(len=1 empty=false)")
	cli.AssertContains(t, stdout, "#2 Remove(4) -> applied")
	cli.AssertContains(t, stdout, "ops=3 skipped=0")
	cli.AssertContains(t, stdout, "#3 Clear() -> applied")
	cli.AssertContains(t, stdout, "input exhausted")
	cli.AssertContains(t, stdout, "input finished")
}

func Test_Step_Prints_Help_When_Asked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("in.bin", mapInput(t))

	stdout := c.MustRun("step", "in.bin")
	assert.NotContains(t, stdout, "Commands:")

	stdout, _, code := c.RunWithInput("help\nbogus\nnext zero\n", "step", "in.bin")
	require.Equal(t, 0, code)

	cli.AssertContains(t, stdout, "Commands:")
	cli.AssertContains(t, stdout, "unknown command: bogus")
	cli.AssertContains(t, stdout, `invalid count "zero"`)
}

func Test_Step_Stops_When_Cyclic_Run_Hits_Limit(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("cyc.bin", []byte{0x01, 0x00})

	stdout, stderr, code := c.RunWithInput("run\n", "step", "--target=deque", "--policy=cyclic", "--content-check=false", "cyc.bin")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	assert.NotContains(t, stdout, "input exhausted")
	assert.Equal(t, 1<<16, strings.Count(stdout, " -> "))
}

func Test_Step_Fails_When_Input_Shorter_Than_Header(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("short.bin", []byte{0x01})

	_, stderr := c.MustFail("step", "short.bin")
	cli.AssertContains(t, stderr, "input too short for run header")
}

func Test_Step_Fails_When_Target_Not_Steppable(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("r.bin", []byte{0x00, 0x00, 0x00, 0x00})

	_, stderr := c.MustFail("step", "-t", "repeat", "r.bin")
	cli.AssertContains(t, stderr, "error:")
}
