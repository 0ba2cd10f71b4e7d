package audio

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	resampling "github.com/tphakala/go-audio-resampling"
)

// Resampler converts device-rate sample blocks to the target rate. The
// conversion strategy is fixed at construction: band-limited when the
// resampling library accepts the rate pair, linear interpolation otherwise,
// identity when the rates already match.
type Resampler interface {
	Resample(samples []float32) ([]float32, error)
}

// newResampler picks a strategy for the given rate pair once, at pipeline
// start, rather than branching per block.
func newResampler(fromRate, toRate int, log zerolog.Logger) Resampler {
	if fromRate == toRate {
		return identityResampler{}
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(fromRate),
		OutputRate: float64(toRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		log.Warn().Err(err).
			Int("from", fromRate).
			Int("to", toRate).
			Msg("Band-limited resampler unavailable, falling back to linear interpolation")
		return &linearResampler{from: fromRate, to: toRate}
	}

	return &bandlimitedResampler{rs: rs}
}

// identityResampler returns its input unchanged.
type identityResampler struct{}

func (identityResampler) Resample(samples []float32) ([]float32, error) {
	return samples, nil
}

// bandlimitedResampler wraps the streaming resampler. It keeps filter
// state across blocks, so one instance serves one continuous stream.
type bandlimitedResampler struct {
	rs  resampling.Resampler
	in  []float64
	out []float32
}

func (r *bandlimitedResampler) Resample(samples []float32) ([]float32, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	if cap(r.in) < len(samples) {
		r.in = make([]float64, len(samples))
	}
	r.in = r.in[:len(samples)]
	for i, s := range samples {
		r.in[i] = float64(s)
	}

	processed, err := r.rs.Process(r.in)
	if err != nil {
		return nil, fmt.Errorf("resample block: %w", err)
	}

	out := make([]float32, len(processed))
	for i, s := range processed {
		out[i] = float32(s)
	}
	return out, nil
}

// linearResampler interpolates over evenly spaced sample positions. Less
// accurate than the band-limited path but has no library dependency on
// the rate pair being supported.
type linearResampler struct {
	from int
	to   int
}

func (r *linearResampler) Resample(samples []float32) ([]float32, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	n := int(math.Round(float64(len(samples)) * float64(r.to) / float64(r.from)))
	if n <= 0 {
		return nil, nil
	}

	out := make([]float32, n)
	if n == 1 {
		out[0] = samples[0]
		return out, nil
	}

	step := float64(len(samples)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j] + frac*(samples[j+1]-samples[j])
	}
	return out, nil
}
