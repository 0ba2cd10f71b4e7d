package audio

import (
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// Names that indicate a device records another process's output rather
// than a microphone. Covers WASAPI loopback, VB-Audio, PulseAudio
// monitors, and BlackHole.
var loopbackKeywords = []string{
	"loopback", "stereo mix", "what u hear",
	"vb-audio", "vb cable", "vbaudio", "cable", "virtual cable", "voicemeeter",
	"blackhole", "black hole",
	"monitor", "pulse",
}

// Rates to probe, in order, when the device rejects both the target rate
// and its own reported default.
var fallbackRates = []int{48000, 44100, 96000, 192000, 32000, 16000}

// ResolveDevice picks a capture device and negotiates its native sample
// rate. With an explicit index the device is used as-is (after bounds and
// input-capability checks); otherwise loopback-looking devices are
// preferred, then the default input, then the first input. Returns
// ErrNoDevice when nothing can capture.
func ResolveDevice(index *int, targetRate int, log zerolog.Logger) (Device, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return Device{}, &StreamError{Op: "enumerate", Err: err}
	}

	var pick int
	switch {
	case index != nil:
		if *index < 0 || *index >= len(devices) {
			return Device{}, fmt.Errorf("invalid device index %d: %w", *index, ErrNoDevice)
		}
		if devices[*index].MaxInputChannels <= 0 {
			return Device{}, fmt.Errorf("device %q has no input channels: %w", devices[*index].Name, ErrNoDevice)
		}
		pick = *index
		log.Info().Str("device", devices[pick].Name).Msg("Using specified device")
	default:
		found, ok := findLoopbackDevice(devices, log)
		if !ok {
			return Device{}, ErrNoDevice
		}
		pick = found
	}

	info := devices[pick]
	rate := negotiateSampleRate(info, targetRate, log)
	log.Info().
		Str("device", info.Name).
		Int("device_rate", rate).
		Int("target_rate", targetRate).
		Msg("Resolved capture device")

	return Device{Index: pick, Name: info.Name, SampleRate: rate}, nil
}

// findLoopbackDevice returns the index of the best capture candidate.
func findLoopbackDevice(devices []*portaudio.DeviceInfo, log zerolog.Logger) (int, bool) {
	firstInput := -1
	for i, d := range devices {
		if d.MaxInputChannels <= 0 {
			continue
		}
		if firstInput < 0 {
			firstInput = i
		}
		if isLoopbackName(d.Name) {
			log.Info().Str("device", d.Name).Msg("Found loopback device")
			return i, true
		}
	}

	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		for i, d := range devices {
			if d == def {
				log.Warn().Str("device", d.Name).
					Msg("No loopback device found, using default input (may be a microphone)")
				return i, true
			}
		}
	}

	if firstInput >= 0 {
		log.Warn().Str("device", devices[firstInput].Name).
			Msg("No loopback or default input, using first input device (may be a microphone)")
		return firstInput, true
	}
	return -1, false
}

func isLoopbackName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range loopbackKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// negotiateSampleRate finds a rate the hardware accepts: the target rate
// first, then the device default, then a list of common rates. When every
// probe fails the device default is returned anyway and the stream open
// will surface the real error.
func negotiateSampleRate(info *portaudio.DeviceInfo, targetRate int, log zerolog.Logger) int {
	defaultRate := int(info.DefaultSampleRate)
	if defaultRate <= 0 {
		defaultRate = 44100
	}

	if supportsRate(info, targetRate) {
		log.Info().Int("rate", targetRate).Msg("Device supports target rate")
		return targetRate
	}

	if supportsRate(info, defaultRate) {
		log.Info().Int("rate", defaultRate).Msg("Using device default sample rate")
		return defaultRate
	}

	for _, rate := range fallbackRates {
		if rate == targetRate || rate == defaultRate {
			continue
		}
		if supportsRate(info, rate) {
			log.Info().Int("rate", rate).Msg("Using fallback sample rate")
			return rate
		}
	}

	log.Warn().Int("rate", defaultRate).Msg("Could not verify any sample rate, using device default")
	return defaultRate
}

// supportsRate probes a rate by opening and immediately closing a short
// test stream.
func supportsRate(info *portaudio.DeviceInfo, rate int) bool {
	if rate <= 0 {
		return false
	}
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: 1,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(rate),
		FramesPerBuffer: 1024,
	}
	stream, err := portaudio.OpenStream(params, func([]float32) {})
	if err != nil {
		return false
	}
	stream.Close()
	return true
}
