package campaign

import (
	"fmt"
	"hash"
	"slices"

	"github.com/calvinalkan/bughunt/pkg/difftest"
	"github.com/calvinalkan/bughunt/pkg/hashmap"
)

// Hasher names accepted by [Config.Hasher].
const (
	HasherAwful  = "awful"
	HasherXXHash = "xxhash"
)

type targetFactory func(cfg Config) difftest.Harness

// targets maps target names to harness constructors. Map targets use narrow
// key types so random inputs revisit the same keys.
var targets = map[string]targetFactory{
	"hashmap": func(cfg Config) difftest.Harness {
		return difftest.MapTarget[uint8, uint8](difftest.MapOptions{
			Hasher:       hasherFor(cfg),
			ContentCheck: cfg.ContentCheck,
		}).Harness()
	},
	"hashmap-wide": func(cfg Config) difftest.Harness {
		return difftest.MapTarget[uint16, uint32](difftest.MapOptions{
			Hasher:       hasherFor(cfg),
			ContentCheck: cfg.ContentCheck,
		}).Harness()
	},
	"deque": func(cfg Config) difftest.Harness {
		return difftest.DequeTarget[uint8](difftest.DequeOptions{ContentCheck: cfg.ContentCheck}).Harness()
	},
	"deque-wide": func(cfg Config) difftest.Harness {
		return difftest.DequeTarget[uint64](difftest.DequeOptions{ContentCheck: cfg.ContentCheck}).Harness()
	},
	"repeat": func(cfg Config) difftest.Harness {
		return difftest.RepeatHarness(difftest.RepeatOptions{MaxBytes: cfg.MaxBytes})
	},
}

// TargetNames returns the registered target names, sorted.
func TargetNames() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func knownTarget(name string) bool {
	_, ok := targets[name]

	return ok
}

// NewHarness builds the harness cfg.Target names.
func NewHarness(cfg Config) (difftest.Harness, error) {
	factory, ok := targets[cfg.Target]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTarget, cfg.Target)
	}

	return factory(cfg), nil
}

func hasherFor(cfg Config) difftest.HasherFactory {
	if cfg.Hasher == HasherXXHash {
		return func(uint8) func() hash.Hash64 {
			return hashmap.DefaultHasher
		}
	}

	return difftest.AwfulHasher(cfg.HashModulus)
}
