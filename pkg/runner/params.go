package runner

import (
	"fmt"
	"strconv"
)

// ParamsFromJobDescription resolves a sub-job's algorithm and parameters
// from its AlgoID and Params map (blob.JobDescription), per the
// richer sub-job shape adopted for spec.md §9's Open Question: alpha,
// delta, and length are optional overrides read out of Params by name,
// falling back to the package-level defaults when absent or empty.
func ParamsFromJobDescription(algoID uint32, params map[string]string) (Algorithm, Params, error) {
	algo := Algorithm(algoID)

	var out Params
	if alpha, ok := params["alpha"]; ok && alpha != "" {
		v, err := strconv.ParseFloat(alpha, 32)
		if err != nil {
			return 0, Params{}, fmt.Errorf("runner: parse alpha %q: %w", alpha, err)
		}
		out.PositiveTrust.Alpha = float32(v)
	}
	if delta, ok := params["delta"]; ok && delta != "" {
		v, err := strconv.ParseFloat(delta, 32)
		if err != nil {
			return 0, Params{}, fmt.Errorf("runner: parse delta %q: %w", delta, err)
		}
		out.PositiveTrust.Delta = float32(v)
	}
	if length, ok := params["length"]; ok && length != "" {
		v, err := strconv.Atoi(length)
		if err != nil {
			return 0, Params{}, fmt.Errorf("runner: parse length %q: %w", length, err)
		}
		out.Walk.Length = v
	}

	switch algo {
	case AlgorithmPositiveTrust, AlgorithmFixedWalk:
		return algo, out, nil
	default:
		return 0, Params{}, fmt.Errorf("runner: unknown algorithm id %d", algoID)
	}
}
