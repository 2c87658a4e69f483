// Package proptest produces shrinkable difftest programs with rapid.
//
// Where the fuzz entry points decode programs from opaque bytes, the
// generators here draw the structured input directly: a hash seed, a capacity
// hint and an operation list. rapid shrinks a failing program towards fewer
// operations and smaller values, which usually leaves a reproducer of a few
// lines.
//
// Variant selection is weighted explicitly instead of by discriminant modulo,
// so the op mix carries no modulo bias.
package proptest

import (
	"fmt"
	"math"

	"pgregory.net/rapid"

	"github.com/calvinalkan/bughunt/pkg/bytestream"
	"github.com/calvinalkan/bughunt/pkg/difftest"
)

// GenConfig tunes the generated programs.
type GenConfig struct {
	// MaxOps bounds the program length. Default: 200.
	MaxOps int

	// KeySpace draws map keys and element values from [0, KeySpace) so keys
	// repeat and collide. Default: 16.
	KeySpace int

	// MaxIndex bounds positional deque indices; values past the length are
	// intentional. Default: 24.
	MaxIndex int

	// MaxReserve bounds non-overflowing Reserve requests. Default: 4096.
	MaxReserve int

	// OverflowReserveRate is the percentage of Reserve ops whose N is close
	// to MaxUint64 and must be skipped. Default: 20.
	OverflowReserveRate int

	// Weights maps operation names to relative weights. Names not listed
	// get weight 1; weight 0 disables an operation.
	Weights map[string]int
}

// DefaultGenConfig returns the config used by the package tests.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		MaxOps:              200,
		KeySpace:            16,
		MaxIndex:            24,
		MaxReserve:          4096,
		OverflowReserveRate: 20,
		Weights: map[string]int{
			"Insert":    4,
			"Remove":    2,
			"Get":       2,
			"PushBack":  3,
			"PushFront": 3,
			"InsertAt":  2,
		},
	}
}

// ChurnGenConfig favors Clear, ShrinkToFit and Reserve to stress capacity
// transitions.
func ChurnGenConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Weights = map[string]int{
		"Insert":      3,
		"PushBack":    3,
		"Clear":       2,
		"ShrinkToFit": 3,
		"Reserve":     3,
	}

	return cfg
}

func (cfg GenConfig) withDefaults() GenConfig {
	def := DefaultGenConfig()

	if cfg.MaxOps <= 0 {
		cfg.MaxOps = def.MaxOps
	}

	if cfg.KeySpace <= 0 {
		cfg.KeySpace = def.KeySpace
	}

	if cfg.MaxIndex <= 0 {
		cfg.MaxIndex = def.MaxIndex
	}

	if cfg.MaxReserve <= 0 {
		cfg.MaxReserve = def.MaxReserve
	}

	if cfg.OverflowReserveRate < 0 || cfg.OverflowReserveRate > 100 {
		cfg.OverflowReserveRate = def.OverflowReserveRate
	}

	return cfg
}

func (cfg GenConfig) weight(name string) int {
	w, ok := cfg.Weights[name]
	if !ok {
		return 1
	}

	return max(w, 0)
}

// Reserves generates Reserve ops. Overflowing requests sit within a small
// distance of MaxUint64 so shrinking keeps them overflowing.
func Reserves(cfg GenConfig) *rapid.Generator[difftest.Reserve] {
	cfg = cfg.withDefaults()

	return rapid.Custom(func(t *rapid.T) difftest.Reserve {
		if rapid.IntRange(0, 99).Draw(t, "reserve_overflow_roll") < cfg.OverflowReserveRate {
			gap := rapid.Uint64Range(0, 1<<16).Draw(t, "reserve_gap")

			return difftest.Reserve{N: math.MaxUint64 - gap}
		}

		return difftest.Reserve{N: uint64(rapid.IntRange(0, cfg.MaxReserve).Draw(t, "reserve_n"))}
	})
}

// MapOps generates operations for map targets keyed by K with values V.
func MapOps[K, V bytestream.Integer](cfg GenConfig) *rapid.Generator[difftest.Operation] {
	cfg = cfg.withDefaults()

	keys := smallIntegers[K](cfg.KeySpace)
	values := integers[V]()
	reserves := Reserves(cfg)

	return weighted(cfg, []choice{
		{name: "Insert", gen: func(t *rapid.T) difftest.Operation {
			return difftest.Insert[K, V]{Key: keys.Draw(t, "key"), Value: values.Draw(t, "value")}
		}},
		{name: "Remove", gen: func(t *rapid.T) difftest.Operation {
			return difftest.Remove[K]{Key: keys.Draw(t, "key")}
		}},
		{name: "Get", gen: func(t *rapid.T) difftest.Operation {
			return difftest.Get[K]{Key: keys.Draw(t, "key")}
		}},
		{name: "ShrinkToFit", gen: constant(difftest.ShrinkToFit{})},
		{name: "Clear", gen: constant(difftest.Clear{})},
		{name: "Reserve", gen: func(t *rapid.T) difftest.Operation {
			return reserves.Draw(t, "reserve")
		}},
	})
}

// DequeOps generates operations for deque targets of T.
func DequeOps[T bytestream.Integer](cfg GenConfig) *rapid.Generator[difftest.Operation] {
	cfg = cfg.withDefaults()

	values := smallIntegers[T](cfg.KeySpace)
	indices := rapid.Uint16Range(0, uint16(min(cfg.MaxIndex, math.MaxUint16)))
	reserves := Reserves(cfg)

	return weighted(cfg, []choice{
		{name: "PushBack", gen: func(t *rapid.T) difftest.Operation {
			return difftest.PushBack[T]{Value: values.Draw(t, "value")}
		}},
		{name: "PopBack", gen: constant(difftest.PopBack{})},
		{name: "PushFront", gen: func(t *rapid.T) difftest.Operation {
			return difftest.PushFront[T]{Value: values.Draw(t, "value")}
		}},
		{name: "PopFront", gen: constant(difftest.PopFront{})},
		{name: "Clear", gen: constant(difftest.Clear{})},
		{name: "ShrinkToFit", gen: constant(difftest.ShrinkToFit{})},
		{name: "InsertAt", gen: func(t *rapid.T) difftest.Operation {
			return difftest.InsertAt[T]{Index: indices.Draw(t, "index"), Value: values.Draw(t, "value")}
		}},
		{name: "RemoveAt", gen: func(t *rapid.T) difftest.Operation {
			return difftest.RemoveAt{Index: indices.Draw(t, "index")}
		}},
		{name: "SwapRemoveBack", gen: func(t *rapid.T) difftest.Operation {
			return difftest.SwapRemoveBack{Index: indices.Draw(t, "index")}
		}},
		{name: "Reserve", gen: func(t *rapid.T) difftest.Operation {
			return reserves.Draw(t, "reserve")
		}},
	})
}

// Setups generates run headers. The capacity hint stays within a byte, as
// it does when decoded from fuzz input.
func Setups() *rapid.Generator[difftest.Setup] {
	return rapid.Custom(func(t *rapid.T) difftest.Setup {
		return difftest.Setup{
			HashSeed: rapid.Uint8().Draw(t, "hash_seed"),
			Capacity: rapid.IntRange(0, math.MaxUint8).Draw(t, "capacity"),
		}
	})
}

// Programs combines a setup with up to cfg.MaxOps operations from ops.
func Programs(cfg GenConfig, ops *rapid.Generator[difftest.Operation]) *rapid.Generator[difftest.Program] {
	cfg = cfg.withDefaults()
	setups := Setups()
	lists := rapid.SliceOfN(ops, 0, cfg.MaxOps)

	return rapid.Custom(func(t *rapid.T) difftest.Program {
		return difftest.Program{
			Setup: setups.Draw(t, "setup"),
			Ops:   lists.Draw(t, "ops"),
		}
	})
}

// Property returns a rapid property that replays generated programs through
// target and fails on the first discrepancy or invariant violation. Use it
// with [rapid.Check] or [rapid.MakeFuzz].
func Property[P difftest.Pair](target *difftest.Target[P], programs *rapid.Generator[difftest.Program]) func(*rapid.T) {
	return func(t *rapid.T) {
		program := programs.Draw(t, "program")

		_, err := target.RunProgram(program)
		if err != nil {
			t.Fatalf("%s", describe(program, err))
		}
	}
}

func describe(program difftest.Program, err error) string {
	msg := fmt.Sprintf("setup %+v: %v", program.Setup, err)

	if failure, ok := err.(*difftest.Failure); ok && failure.Detail != "" {
		msg += "\n" + failure.Detail
	}

	return msg
}

type choice struct {
	name string
	gen  func(t *rapid.T) difftest.Operation
}

// weighted picks among choices proportionally to their configured weights.
// Shrinking moves towards earlier choices.
func weighted(cfg GenConfig, choices []choice) *rapid.Generator[difftest.Operation] {
	var (
		enabled []choice
		bounds  []int
		total   int
	)

	for _, c := range choices {
		w := cfg.weight(c.name)
		if w == 0 {
			continue
		}

		total += w
		enabled = append(enabled, c)
		bounds = append(bounds, total)
	}

	if total == 0 {
		panic("proptest: every operation has weight 0")
	}

	return rapid.Custom(func(t *rapid.T) difftest.Operation {
		roll := rapid.IntRange(0, total-1).Draw(t, "op_roll")

		for i, bound := range bounds {
			if roll < bound {
				return enabled[i].gen(t)
			}
		}

		return enabled[len(enabled)-1].gen(t)
	})
}

func constant(op difftest.Operation) func(*rapid.T) difftest.Operation {
	return func(*rapid.T) difftest.Operation {
		return op
	}
}

// smallIntegers draws T from [0, n).
func smallIntegers[T bytestream.Integer](n int) *rapid.Generator[T] {
	return rapid.Custom(func(t *rapid.T) T {
		return T(rapid.IntRange(0, n-1).Draw(t, "small"))
	})
}

// integers draws T from its full range.
func integers[T bytestream.Integer]() *rapid.Generator[T] {
	return rapid.Custom(func(t *rapid.T) T {
		return T(rapid.Uint64().Draw(t, "bits"))
	})
}
