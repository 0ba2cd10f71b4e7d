package audio

import "math"

// isSilent classifies a block as silent when its RMS energy is below
// threshold, or when more than 80% of its samples fall below threshold
// (catches blocks that are mostly quiet apart from a few transients).
// Either condition alone suffices; over-detecting silence only delays
// phrase emission, it never drops audio.
func isSilent(block []float32, threshold float32) bool {
	if len(block) == 0 {
		return true
	}

	var sum float64
	quiet := 0
	for _, s := range block {
		sum += float64(s) * float64(s)
		if abs32(s) < threshold {
			quiet++
		}
	}

	rms := math.Sqrt(sum / float64(len(block)))
	if rms < float64(threshold) {
		return true
	}

	return float64(quiet)/float64(len(block)) > 0.8
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
