package audio

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	// blockDuration is the fixed length of each hardware callback block.
	blockDuration = 0.5
	// joinTimeout bounds how long Stop waits for the segmenter goroutine.
	joinTimeout = 3 * time.Second
)

// Options configures the capture pipeline.
type Options struct {
	// TargetSampleRate is the output rate of emitted phrases (16000 for
	// whisper).
	TargetSampleRate int
	// ChunkDuration is a legacy knob retained for configuration
	// compatibility; phrase boundaries no longer depend on it.
	ChunkDuration float64
	// SilenceThreshold is the amplitude level below which a block counts
	// as silent (0.0-1.0).
	SilenceThreshold float32
	// MinSilenceDuration is how many seconds of consecutive silence end
	// a phrase.
	MinSilenceDuration float64
	// MaxBufferDuration caps how many seconds accumulate before an
	// emission is forced.
	MaxBufferDuration float64
	// QueueCapacity bounds the block queue between the capture callback
	// and the segmenter.
	QueueCapacity int
}

func (o Options) withDefaults() Options {
	if o.TargetSampleRate <= 0 {
		o.TargetSampleRate = 16000
	}
	if o.ChunkDuration <= 0 {
		o.ChunkDuration = 3.0
	}
	if o.SilenceThreshold <= 0 {
		o.SilenceThreshold = 0.015
	}
	if o.MinSilenceDuration <= 0 {
		o.MinSilenceDuration = 1.0
	}
	if o.MaxBufferDuration <= 0 {
		o.MaxBufferDuration = 10.0
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = 64
	}
	return o
}

// Pipeline owns one capture source, one block queue, and one segmenter
// goroutine. Start and Stop are idempotent, but not safe to call from two
// goroutines at once; callers serialize lifecycle operations.
type Pipeline struct {
	opts  Options
	dev   Device
	src   Source
	queue *BlockQueue
	emit  EmitFunc
	log   zerolog.Logger

	running atomic.Bool
	done    chan struct{}
}

// NewPipeline builds a pipeline capturing from dev and delivering phrases
// to emit.
func NewPipeline(opts Options, dev Device, emit EmitFunc, log zerolog.Logger) *Pipeline {
	opts = opts.withDefaults()
	queue := NewBlockQueue(opts.QueueCapacity)
	p := &Pipeline{
		opts:  opts,
		dev:   dev,
		queue: queue,
		emit:  emit,
		log:   log,
	}
	p.src = NewCaptureSource(dev, queue, log)
	return p
}

// newPipeline wires an explicit source. Used by tests.
func newPipeline(opts Options, dev Device, src Source, emit EmitFunc, log zerolog.Logger) *Pipeline {
	opts = opts.withDefaults()
	return &Pipeline{
		opts:  opts,
		dev:   dev,
		src:   src,
		queue: NewBlockQueue(opts.QueueCapacity),
		emit:  emit,
		log:   log,
	}
}

// Start opens the capture stream and spawns the segmenter goroutine.
// Calling Start while already running logs a warning and does nothing.
// It returns ErrNoDevice when no device descriptor was resolved.
func (p *Pipeline) Start() error {
	if p.running.Load() {
		p.log.Warn().Msg("Audio capture already running")
		return nil
	}
	if p.dev.SampleRate <= 0 {
		return ErrNoDevice
	}

	if err := p.src.Start(); err != nil {
		return err
	}

	p.running.Store(true)
	p.done = make(chan struct{})

	seg := newSegmenter(p.opts, p.dev.SampleRate, p.queue, p.emit, p.log)
	go seg.run(&p.running, p.done)

	p.log.Info().
		Str("device", p.dev.Name).
		Int("device_rate", p.dev.SampleRate).
		Int("target_rate", p.opts.TargetSampleRate).
		Msg("Audio capture started")
	return nil
}

// Stop halts capture, waits for the segmenter to exit, and drains the
// queue. It never fails: a segmenter that outlives the join timeout is
// logged and abandoned. Stop before Start, or a second Stop, is a no-op.
func (p *Pipeline) Stop() {
	if !p.running.Swap(false) {
		p.log.Debug().Msg("Stop called but not recording")
		return
	}

	// Flag is already down, so the segmenter exits on its next loop
	// check, within one queue-read timeout.
	if err := p.src.Stop(); err != nil {
		p.log.Warn().Err(err).Msg("Error stopping capture stream")
	}

	select {
	case <-p.done:
	case <-time.After(joinTimeout):
		p.log.Warn().Msg("Segmenter did not exit within join timeout")
	}

	if n := p.queue.Drain(); n > 0 {
		p.log.Debug().Int("blocks", n).Msg("Discarded residual queued blocks")
	}
	if n := p.queue.Dropped(); n > 0 {
		p.log.Debug().Uint64("blocks", n).Msg("Blocks dropped on queue overflow this session")
	}

	p.log.Info().Msg("Audio capture stopped")
}

// Run starts the pipeline, blocks until ctx is cancelled, then stops it.
// Stop runs even if Start-to-cancel is interrupted by a panic upstream.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Start(); err != nil {
		return err
	}
	defer p.Stop()

	<-ctx.Done()
	return ctx.Err()
}

// Recording reports whether the pipeline is currently capturing.
func (p *Pipeline) Recording() bool { return p.running.Load() }

// DroppedBlocks returns how many blocks were dropped on queue overflow.
func (p *Pipeline) DroppedBlocks() uint64 { return p.queue.Dropped() }
