package decoder

import "math"

// sampleFunc returns the jth received soft sample of the current trellis
// step (0 <= j < n), regardless of whether the caller is reading muxed or
// non-muxed input (component H resolves that layout before calling down
// into the metric kernel).
type sampleFunc func(j int) float32

// pruneBound computes the early-skip bound for the current trellis step:
// the maximum possible branch-metric contribution is n * max|r_j|, so no
// incumbent can be beaten by more than twice that span. It is recomputed
// per step from the step's own samples (spec.md §4.F, Q4) rather than
// hard-coded to 2n, so it stays exact even when soft samples exceed unit
// magnitude; for |r_j| <= 1 it reduces to exactly 2n.
func pruneBound(n int, sample sampleFunc) float64 {
	maxAbs := 1.0
	for j := 0; j < n; j++ {
		if a := math.Abs(float64(sample(j))); a > maxAbs {
			maxAbs = a
		}
	}
	return 2 * float64(n) * maxAbs
}

// branchMetric adds the branch's contribution to fromMetric and reports
// whether the candidate can possibly beat the incumbent toMetric. The skip
// is an optimization only: when it returns skip=true, the caller must leave
// the "to" state's record untouched, which is exactly what an exhaustive
// compare would have done anyway. Evaluation itself is a plain dot product
// of received samples against the branch's ±1 expected output pattern.
func branchMetric(fromMetric, toMetric float64, expected []float32, sample sampleFunc, bound float64) (metric float64, skip bool) {
	if toMetric-fromMetric > bound {
		return 0, true
	}
	metric = fromMetric
	for j, e := range expected {
		metric += float64(sample(j)) * float64(e)
	}
	return metric, false
}
