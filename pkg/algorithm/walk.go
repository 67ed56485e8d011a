package algorithm

import "github.com/openrankprotocol/openrank-go/pkg/trust"

// WalkLength is the default number of deterministic propagation steps the
// fixed-length walk applies.
const WalkLength = 10

// WalkParams carries the one tunable a sub-job may override; a zero
// Length falls back to WalkLength.
type WalkParams struct {
	Length int
}

func (p WalkParams) length() int {
	if p.Length == 0 {
		return WalkLength
	}
	return p.Length
}

// propagate computes x'[to] = sum_from x[from] * L[from][to], with no
// pre-trust injection (unlike the positive-trust iterate step).
func propagate(l trust.LocalTrust, x trust.Seed) trust.Seed {
	y := make(trust.Seed)
	for from, xi := range x {
		if xi == 0 {
			continue
		}
		row, ok := l[from]
		if !ok {
			continue
		}
		for to, weight := range row.Trust {
			y[to] += xi * weight
		}
	}
	return y
}

// RunFixedWalk applies exactly params.Length deterministic propagation
// steps starting from the normalized seed vector, normalizing after each
// step. There is no restart, damping, or convergence check. l and s must
// already be normalized.
func RunFixedWalk(l trust.LocalTrust, s trust.Seed, params WalkParams) trust.Seed {
	x := s.Clone()
	for i := 0; i < params.length(); i++ {
		x = trust.NormalizeVector(propagate(l, x))
	}
	return x
}

// RunFixedWalkAveraged returns the average of numWalks walks over
// identical inputs. Since the walk is fully deterministic, every run
// produces the same vector and the average equals a single run, so it
// calls RunFixedWalk once and does not use numWalks; this entry point
// exists for interface symmetry with algorithms that do have per-walk
// randomness.
func RunFixedWalkAveraged(l trust.LocalTrust, s trust.Seed, params WalkParams, numWalks int) trust.Seed {
	return RunFixedWalk(l, s, params)
}
