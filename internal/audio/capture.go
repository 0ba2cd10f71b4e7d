package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// Initialize sets up the portaudio runtime. Call once before resolving
// devices or starting pipelines.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return nil
}

// Terminate tears down the portaudio runtime.
func Terminate() error {
	return portaudio.Terminate()
}

// CaptureSource wraps a portaudio input stream opened at the device's
// native rate with 0.5s blocks. The stream callback runs on portaudio's
// own thread and must never block: blocks are offered to the queue
// non-blockingly and dropped with a warning when it is full.
type CaptureSource struct {
	dev      Device
	queue    *BlockQueue
	log      zerolog.Logger
	channels int
	stream   *portaudio.Stream
}

// NewCaptureSource builds a source feeding dev's samples into queue.
func NewCaptureSource(dev Device, queue *BlockQueue, log zerolog.Logger) *CaptureSource {
	return &CaptureSource{
		dev:      dev,
		queue:    queue,
		log:      log,
		channels: 1,
	}
}

// Start opens and starts the input stream at the device's native sample
// rate. The target rate is never requested here; resampling happens on
// the segmenter side.
func (c *CaptureSource) Start() error {
	devices, err := portaudio.Devices()
	if err != nil {
		return &StreamError{Op: "enumerate", Err: err}
	}
	if c.dev.Index < 0 || c.dev.Index >= len(devices) {
		return &StreamError{Op: "open", Err: fmt.Errorf("device index %d out of range", c.dev.Index)}
	}
	info := devices[c.dev.Index]

	blockSize := int(float64(c.dev.SampleRate) * blockDuration)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: c.channels,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(c.dev.SampleRate),
		FramesPerBuffer: blockSize,
	}

	stream, err := portaudio.OpenStream(params, c.onBlock)
	if err != nil {
		return &StreamError{Op: "open", Err: err}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return &StreamError{Op: "start", Err: err}
	}

	c.stream = stream
	return nil
}

// onBlock is the real-time stream callback.
func (c *CaptureSource) onBlock(in []float32) {
	block := firstChannel(in, c.channels)
	if !c.queue.TryEnqueue(block) {
		c.log.Warn().Msg("Audio queue full, dropping block")
	}
}

// Stop halts and closes the stream.
func (c *CaptureSource) Stop() error {
	if c.stream == nil {
		return nil
	}
	stream := c.stream
	c.stream = nil

	stopErr := stream.Stop()
	closeErr := stream.Close()
	if stopErr != nil {
		return &StreamError{Op: "stop", Err: stopErr}
	}
	if closeErr != nil {
		return &StreamError{Op: "close", Err: closeErr}
	}
	return nil
}

// firstChannel copies the first channel out of an interleaved buffer.
// Mono input is still copied: the portaudio buffer is reused across
// callbacks, the queue needs an owned slice.
func firstChannel(in []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(in))
		copy(out, in)
		return out
	}
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		out[i] = in[i*channels]
	}
	return out
}
