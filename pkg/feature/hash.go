package feature

import "hash/fnv"

// Bucket maps a (seed, hash attribute value) pair into [0, 1).
//
// The scheme is a cross-SDK compatibility contract and must not change:
// FNV-1a 32-bit over value+seed, reduced modulo 1000 and scaled by 1/1000.
// Every SDK in the field reproduces this computation bit-for-bit, so a user
// receives the same experiment variation no matter where the evaluation runs.
func Bucket(seed, value string) float64 {
	h := fnv.New32a()
	h.Write([]byte(value + seed))
	return float64(h.Sum32()%1000) / 1000
}

// bucketRange is the half-open interval [Start, End) of bucket space assigned
// to one variation.
type bucketRange struct {
	Start float64
	End   float64
}

// bucketRanges computes the cumulative traffic-split ranges for an experiment
// rule. Ranges follow variation declaration order; coverage shrinks each
// variation's share proportionally, leaving the tail of each slot unassigned.
func bucketRanges(numVariations int, coverage float64, weights []float64) []bucketRange {
	if coverage < 0 {
		coverage = 0
	}
	if coverage > 1 {
		coverage = 1
	}

	if len(weights) != numVariations || !weightsValid(weights) {
		weights = equalWeights(numVariations)
	}

	ranges := make([]bucketRange, numVariations)
	cumulative := 0.0
	for i, w := range weights {
		ranges[i] = bucketRange{Start: cumulative, End: cumulative + coverage*w}
		cumulative += w
	}
	return ranges
}

func weightsValid(weights []float64) bool {
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return false
		}
		total += w
	}
	return total > 0.99 && total < 1.01
}

func equalWeights(n int) []float64 {
	if n <= 0 {
		return nil
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}

// chooseVariation returns the index of the variation whose range contains the
// bucket, or -1 when the bucket falls outside every range (the user is not in
// the experiment).
func chooseVariation(bucket float64, ranges []bucketRange) int {
	for i, r := range ranges {
		if bucket >= r.Start && bucket < r.End {
			return i
		}
	}
	return -1
}
