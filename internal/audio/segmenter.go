package audio

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Emission trigger defaults. The minimum-content floor stops the
// segmenter from emitting near-empty phrases on leading silence; the
// overlap carries trailing audio into the next phrase so a word split
// across a boundary is not lost.
const (
	minPhraseDuration = 1.5
	overlapDuration   = 0.3
	maxEmitInterval   = 6 * time.Second
	queueReadTimeout  = 100 * time.Millisecond
)

// segmenter consumes device-rate blocks from the queue, resamples them to
// the target rate, and accumulates samples until one of three triggers
// fires: a long enough silence run, a full buffer, or too much wall-clock
// time since the last emission. It is the sole owner of its buffer and
// silence counter; no locking is needed for them.
type segmenter struct {
	queue *BlockQueue
	res   Resampler
	emit  EmitFunc
	log   zerolog.Logger

	targetRate        int
	silenceThreshold  float32
	minSilenceSamples int
	maxBufferSamples  int
	minPhraseSamples  int
	overlapSamples    int

	buffer     []float32
	silenceRun int
	lastEmit   time.Time

	now func() time.Time
}

func newSegmenter(opts Options, deviceRate int, queue *BlockQueue, emit EmitFunc, log zerolog.Logger) *segmenter {
	return &segmenter{
		queue:             queue,
		res:               newResampler(deviceRate, opts.TargetSampleRate, log),
		emit:              emit,
		log:               log,
		targetRate:        opts.TargetSampleRate,
		silenceThreshold:  opts.SilenceThreshold,
		minSilenceSamples: int(opts.MinSilenceDuration * float64(opts.TargetSampleRate)),
		maxBufferSamples:  int(opts.MaxBufferDuration * float64(opts.TargetSampleRate)),
		minPhraseSamples:  int(minPhraseDuration * float64(opts.TargetSampleRate)),
		overlapSamples:    int(overlapDuration * float64(opts.TargetSampleRate)),
		now:               time.Now,
	}
}

// run is the segmenter goroutine body. It exits when running flips false,
// within one queue-read timeout.
func (s *segmenter) run(running *atomic.Bool, done chan<- struct{}) {
	defer close(done)

	s.lastEmit = s.now()
	for running.Load() {
		block, ok := s.queue.Dequeue(queueReadTimeout)
		if !ok {
			s.flushIdle()
			continue
		}
		s.consume(block)
	}
}

// consume resamples one block into the rolling buffer, updates the
// silence run, and evaluates the emission triggers in priority order.
func (s *segmenter) consume(block []float32) {
	resampled, err := s.res.Resample(block)
	if err != nil {
		s.log.Error().Err(&TransformError{Err: err}).Msg("Dropping block")
		return
	}

	s.buffer = append(s.buffer, resampled...)

	// Silence is classified on the post-resample block so the threshold
	// always applies in target-rate units.
	if isSilent(resampled, s.silenceThreshold) {
		s.silenceRun += len(resampled)
	} else {
		s.silenceRun = 0
	}

	switch {
	case s.silenceRun >= s.minSilenceSamples && len(s.buffer) >= s.minPhraseSamples:
		s.log.Debug().
			Float64("buffer_sec", s.seconds(len(s.buffer))).
			Float64("silence_sec", s.seconds(s.silenceRun)).
			Msg("Emitting phrase: silence boundary")
		s.emitPhrase()
	case len(s.buffer) >= s.maxBufferSamples:
		s.log.Debug().
			Float64("buffer_sec", s.seconds(len(s.buffer))).
			Msg("Emitting phrase: buffer full")
		s.emitPhrase()
	case s.now().Sub(s.lastEmit) >= maxEmitInterval && len(s.buffer) >= s.minPhraseSamples:
		s.log.Debug().
			Float64("buffer_sec", s.seconds(len(s.buffer))).
			Msg("Emitting phrase: time elapsed")
		s.emitPhrase()
	}
}

// emitPhrase hands the buffer to the consumer, minus a trailing overlap
// carried into the next phrase. A buffer shorter than the overlap is
// emitted whole.
func (s *segmenter) emitPhrase() {
	var phrase []float32
	if len(s.buffer) > s.overlapSamples {
		phrase = s.buffer[:len(s.buffer)-s.overlapSamples]
		keep := make([]float32, s.overlapSamples)
		copy(keep, s.buffer[len(s.buffer)-s.overlapSamples:])
		s.buffer = keep
	} else {
		phrase = s.buffer
		s.buffer = nil
	}

	s.silenceRun = 0
	s.lastEmit = s.now()

	if len(phrase) == 0 {
		return
	}
	if err := s.emit(phrase); err != nil {
		s.log.Error().Err(err).Msg("Phrase consumer failed")
	}
}

// flushIdle runs on queue-read timeout. When input has gone quiet and the
// buffer holds either a full phrase or anything older than the time
// trigger, the whole buffer is emitted so the last utterance of a stream
// is not stranded.
func (s *segmenter) flushIdle() {
	if len(s.buffer) == 0 {
		return
	}
	if len(s.buffer) < s.minPhraseSamples && s.now().Sub(s.lastEmit) < maxEmitInterval {
		return
	}

	phrase := s.buffer
	s.buffer = nil
	s.silenceRun = 0
	s.lastEmit = s.now()

	s.log.Debug().
		Float64("buffer_sec", s.seconds(len(phrase))).
		Msg("Emitting phrase: input idle")
	if err := s.emit(phrase); err != nil {
		s.log.Error().Err(err).Msg("Phrase consumer failed")
	}
}

func (s *segmenter) seconds(samples int) float64 {
	return float64(samples) / float64(s.targetRate)
}
