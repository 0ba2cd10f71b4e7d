package whisper

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/petems/loopscribe/internal/config"
)

// Transcriber converts one phrase of 16kHz mono float32 samples to text.
// An empty string with a nil error means the phrase held no usable speech.
type Transcriber interface {
	Transcribe(samples []float32) (string, error)
	Close() error
}

// Phrases from the model's own prompting that occasionally leak into the
// output and must be stripped.
var promptPhrases = []string{
	"this is a conversation",
	"transcribe complete sentences and phrases",
	"transcribe complete sentences",
	"wait for sentence endings",
}

var spaceRun = regexp.MustCompile(`\s+`)

type whisperTranscriber struct {
	model    whisper.Model
	language string
	threads  int
	mu       sync.Mutex
}

// New creates a whisper.cpp-backed Transcriber, downloading the model
// file on first use.
func New(cfg config.WhisperConfig) (Transcriber, error) {
	modelPath := filepath.Join(config.ModelsPath(), cfg.Model+".bin")

	// Check if model exists, download if needed
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := downloadModel(cfg.Model, modelPath); err != nil {
			return nil, fmt.Errorf("failed to download model: %w", err)
		}
	}

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return &whisperTranscriber{
		model:    model,
		language: cfg.Language,
		threads:  cfg.Threads,
	}, nil
}

// Transcribe runs one whisper pass over the phrase. The model is not
// reentrant, so calls serialize on the transcriber lock.
func (w *whisperTranscriber) Transcribe(samples []float32) (string, error) {
	if skipAsSilent(samples) {
		return "", nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model == nil {
		return "", fmt.Errorf("transcriber closed")
	}

	context, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create context: %w", err)
	}

	if w.threads > 0 {
		context.SetThreads(uint(w.threads))
	}
	if w.language != "auto" && w.language != "" {
		context.SetLanguage(w.language)
	}
	context.SetTranslate(false)

	if err := context.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process failed: %w", err)
	}

	var parts []string
	for {
		segment, err := context.NextSegment()
		if err != nil {
			break // EOF
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return cleanTranscript(strings.Join(parts, " ")), nil
}

func (w *whisperTranscriber) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.model != nil {
		w.model.Close()
		w.model = nil
	}
	return nil
}

// skipAsSilent reports whether the phrase is too quiet to bother the
// model with.
func skipAsSilent(samples []float32) bool {
	if len(samples) == 0 {
		return true
	}
	var sum float64
	for _, s := range samples {
		if s < 0 {
			sum -= float64(s)
		} else {
			sum += float64(s)
		}
	}
	return sum/float64(len(samples)) < 0.001
}

// cleanTranscript strips leaked prompt phrases and collapses whitespace.
func cleanTranscript(text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range promptPhrases {
		for {
			idx := strings.Index(lower, phrase)
			if idx < 0 {
				break
			}
			end := idx + len(phrase)
			if end < len(text) && text[end] == '.' {
				end++
			}
			text = text[:idx] + text[end:]
			lower = strings.ToLower(text)
		}
	}
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}
