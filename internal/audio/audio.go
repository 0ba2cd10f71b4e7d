// Package audio implements the loopback capture pipeline: a portaudio
// input stream feeding fixed-duration blocks through a bounded queue into
// a phrase segmenter that emits contiguous spans of 16kHz mono samples.
package audio

import (
	"errors"
	"fmt"
)

// ErrNoDevice is returned by Start when no capturable input device was
// resolved for the pipeline.
var ErrNoDevice = errors.New("no capturable audio input device")

// Device describes a resolved capture device. SampleRate is the native
// rate negotiated with the hardware, not the pipeline's target rate.
type Device struct {
	Index      int
	Name       string
	SampleRate int
}

// StreamError wraps a hardware stream failure (open, start, stop, read).
type StreamError struct {
	Op  string
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("audio stream %s: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// TransformError wraps a per-block resample failure. Blocks that fail to
// transform are dropped; the segmenter keeps running.
type TransformError struct {
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("audio transform: %v", e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// Source is a continuous producer of device-rate sample blocks. Start
// opens the hardware stream and begins pushing blocks; Stop halts and
// closes it. Implementations must never block their capture callback.
type Source interface {
	Start() error
	Stop() error
}

// EmitFunc receives one phrase of target-rate mono samples. It is always
// invoked from the single segmenter goroutine, never concurrently with
// itself, and never after Stop returns. Errors are logged and the
// segmenter keeps running.
type EmitFunc func(phrase []float32) error
