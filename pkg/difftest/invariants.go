package difftest

import "fmt"

// Invariant names. Failures report these verbatim.
const (
	InvCapacityCoversLength = "capacity >= length"
	InvLengthMatches        = "length matches"
	InvEmptinessMatches     = "emptiness matches"
	InvClearEmpties         = "clear empties and keeps capacity"
	InvShrinkKeepsLength    = "shrink keeps length and never grows"
	InvSkippedReserveInert  = "skipped reserve changes nothing"
	InvFrontMatches         = "front matches"
	InvBackMatches          = "back matches"
	InvContentsMatch        = "contents match"
)

// CommonInvariants returns the predicates every container family must
// satisfy. They only look at the step snapshots.
func CommonInvariants[P Pair]() []Invariant[P] {
	return []Invariant[P]{
		{
			Name: InvCapacityCoversLength,
			Check: func(_ P, step Step) error {
				if step.Post.SUTCap < step.Post.ModelLen {
					return fmt.Errorf("sut capacity %d < model length %d", step.Post.SUTCap, step.Post.ModelLen)
				}

				return nil
			},
		},
		{
			Name: InvLengthMatches,
			Check: func(_ P, step Step) error {
				if step.Post.SUTLen != step.Post.ModelLen {
					return fmt.Errorf("sut length %d != model length %d", step.Post.SUTLen, step.Post.ModelLen)
				}

				return nil
			},
		},
		{
			Name: InvEmptinessMatches,
			Check: func(_ P, step Step) error {
				if step.Post.SUTEmpty != step.Post.ModelEmpty {
					return fmt.Errorf("sut empty=%v, model empty=%v", step.Post.SUTEmpty, step.Post.ModelEmpty)
				}

				return nil
			},
		},
		{
			Name: InvClearEmpties,
			Check: func(_ P, step Step) error {
				if _, ok := step.Op.(Clear); !ok {
					return nil
				}

				if step.Post.ModelLen != 0 || step.Post.SUTLen != 0 {
					return fmt.Errorf("lengths after clear: model=%d sut=%d", step.Post.ModelLen, step.Post.SUTLen)
				}

				if step.Post.SUTCap != step.Pre.SUTCap {
					return fmt.Errorf("clear changed capacity %d -> %d", step.Pre.SUTCap, step.Post.SUTCap)
				}

				return nil
			},
		},
		{
			Name: InvShrinkKeepsLength,
			Check: func(_ P, step Step) error {
				if _, ok := step.Op.(ShrinkToFit); !ok {
					return nil
				}

				if step.Post.SUTLen != step.Pre.SUTLen || step.Post.ModelLen != step.Pre.ModelLen {
					return fmt.Errorf("shrink changed length: sut %d -> %d, model %d -> %d",
						step.Pre.SUTLen, step.Post.SUTLen, step.Pre.ModelLen, step.Post.ModelLen)
				}

				if step.Post.SUTCap > step.Pre.SUTCap {
					return fmt.Errorf("shrink grew capacity %d -> %d", step.Pre.SUTCap, step.Post.SUTCap)
				}

				return nil
			},
		},
		{
			Name: InvSkippedReserveInert,
			Check: func(_ P, step Step) error {
				if _, ok := step.Op.(Reserve); !ok || step.Effect != EffectSkipped {
					return nil
				}

				if step.Post != step.Pre {
					return fmt.Errorf("skipped reserve changed state: %s -> %s", step.Pre, step.Post)
				}

				return nil
			},
		},
	}
}
