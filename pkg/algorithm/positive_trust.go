// Package algorithm implements the two ranking algorithms that run over a
// pre-processed, normalized trust graph: EigenTrust-style positive-trust
// power iteration and a SybilRank-style fixed-length random walk.
package algorithm

import (
	"fmt"

	"github.com/openrankprotocol/openrank-go/pkg/trust"
)

// PreTrustWeight is the default weight given to the seed vector on every
// positive-trust iteration step.
const PreTrustWeight = 0.5

// Delta is the default L1 convergence threshold for the positive-trust run
// and its one-step convergence check.
const Delta = 0.01

// MaxIterations bounds the positive-trust run loop. The algorithm is not
// formally guaranteed to terminate; this cap turns a hang into a logged
// failure on graphs that don't converge in practice.
const MaxIterations = 128

// ErrDidNotConverge is returned by Run if MaxIterations is exhausted
// without the delta threshold being met.
var ErrDidNotConverge = fmt.Errorf("algorithm: positive-trust run did not converge within MaxIterations")

// PositiveTrustParams carries the two tunables a sub-job may override;
// the zero value of each falls back to the package defaults.
type PositiveTrustParams struct {
	Alpha float32 // pre-trust weight; 0 means PreTrustWeight
	Delta float32 // convergence threshold; 0 means Delta
}

func (p PositiveTrustParams) alpha() float32 {
	if p.Alpha == 0 {
		return PreTrustWeight
	}
	return p.Alpha
}

func (p PositiveTrustParams) delta() float32 {
	if p.Delta == 0 {
		return Delta
	}
	return p.Delta
}

// iterate maps x to x' = alpha*s + (1-alpha)*(x propagated along L).
func iterate(l trust.LocalTrust, s trust.Seed, x trust.Seed, alpha float32) trust.Seed {
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

	indices := make(map[uint64]bool, len(y)+len(s))
	for idx := range s {
		indices[idx] = true
	}
	for idx := range y {
		indices[idx] = true
	}

	out := make(trust.Seed, len(indices))
	for idx := range indices {
		v := alpha*s[idx] + (1-alpha)*y[idx]
		if v != 0 {
			out[idx] = v
		}
	}
	return out
}

func l1Distance(a, b trust.Seed) float32 {
	var total float32
	seen := make(map[uint64]bool, len(a)+len(b))
	for idx, av := range a {
		seen[idx] = true
		bv := b[idx]
		d := av - bv
		if d < 0 {
			d = -d
		}
		total += d
	}
	for idx, bv := range b {
		if seen[idx] {
			continue
		}
		d := bv
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// RunPositiveTrust executes the full power-iteration loop: starting from
// the normalized seed vector, it repeatedly iterates two steps at a time
// and measures their L1 distance, returning once it falls within delta.
// l and s must already be normalized (trust.NormalizeLocalTrust /
// trust.NormalizeVector).
func RunPositiveTrust(l trust.LocalTrust, s trust.Seed, params PositiveTrustParams) (trust.Seed, error) {
	alpha := params.alpha()
	delta := params.delta()

	x := s.Clone()
	for i := 0; i < MaxIterations; i++ {
		x1 := trust.NormalizeVector(iterate(l, s, x, alpha))
		x2 := trust.NormalizeVector(iterate(l, s, x1, alpha))

		if l1Distance(x2, x1) <= delta {
			return x1, nil
		}
		x = x2
	}
	return nil, ErrDidNotConverge
}

// ConvergenceCheck implements the one-step variant used by the
// challenger: it iterates the candidate vector once, normalizes, and
// reports whether the result is within delta of the candidate. l and s
// must already be normalized.
func ConvergenceCheck(l trust.LocalTrust, s trust.Seed, candidate trust.Seed, params PositiveTrustParams) bool {
	next := trust.NormalizeVector(iterate(l, s, candidate, params.alpha()))
	return l1Distance(next, candidate) <= params.delta()
}
