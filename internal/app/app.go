// Package app wires phrase emissions from the audio pipeline into
// transcription, question screening, and automatic answering.
package app

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/loopscribe/internal/question"
)

// Transcriber converts one phrase of samples to text.
type Transcriber interface {
	Transcribe(samples []float32) (string, error)
}

// Answerer produces an answer for a detected question.
type Answerer interface {
	Generate(ctx context.Context, question, conversation string) (string, error)
}

const (
	// transcriptLimit bounds the rolling conversation history, roughly
	// five minutes of phrases.
	transcriptLimit = 100
	// contextExchanges is how many recent transcript entries ground each
	// answer.
	contextExchanges = 3
)

type Config struct {
	Transcriber   Transcriber
	Detector      *question.Detector
	Answerer      Answerer
	AutoAnswer    bool
	AnswerTimeout time.Duration
	Logger        zerolog.Logger

	// OnTranscript and OnAnswer are optional notification hooks; both
	// may be nil.
	OnTranscript func(text string)
	OnAnswer     func(question, answer string)
}

// App consumes phrases on a single worker goroutine. HandlePhrase is the
// pipeline's emission callback: it only enqueues, so the segmenter is
// never stalled by transcription or LLM latency.
type App struct {
	cfg Config
	log zerolog.Logger

	phrases chan []float32
	done    chan struct{}
	closed  atomic.Bool

	mu         sync.Mutex
	transcript []string
}

func New(cfg Config) *App {
	if cfg.AnswerTimeout <= 0 {
		cfg.AnswerTimeout = 30 * time.Second
	}
	a := &App{
		cfg:     cfg,
		log:     cfg.Logger,
		phrases: make(chan []float32, 4),
		done:    make(chan struct{}),
	}
	go a.worker()
	return a
}

// HandlePhrase enqueues one emitted phrase for processing. It never
// blocks; phrases arriving faster than transcription drains them are
// dropped with a warning.
func (a *App) HandlePhrase(phrase []float32) error {
	if a.closed.Load() {
		return nil
	}
	select {
	case a.phrases <- phrase:
	default:
		a.log.Warn().Int("samples", len(phrase)).Msg("Transcription backlog full, dropping phrase")
	}
	return nil
}

// Close stops the worker after the current phrase finishes. Stop the
// audio pipeline first; HandlePhrase must not be called after Close.
func (a *App) Close() {
	if a.closed.Swap(true) {
		return
	}
	close(a.phrases)
	<-a.done
}

// RecentContext returns the last few transcript entries joined for use
// as answer grounding.
func (a *App) RecentContext(entries int) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if entries > len(a.transcript) {
		entries = len(a.transcript)
	}
	return strings.Join(a.transcript[len(a.transcript)-entries:], " ")
}

// Transcript returns a copy of the rolling conversation history.
func (a *App) Transcript() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.transcript...)
}

// ClearTranscript empties the conversation history.
func (a *App) ClearTranscript() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcript = nil
	a.log.Info().Msg("Conversation buffer cleared")
}

func (a *App) worker() {
	defer close(a.done)

	for phrase := range a.phrases {
		a.processPhrase(phrase)
	}
}

func (a *App) processPhrase(phrase []float32) {
	text, err := a.cfg.Transcriber.Transcribe(phrase)
	if err != nil {
		a.log.Error().Err(err).Msg("Transcription failed")
		return
	}
	if text == "" {
		return
	}

	a.record(text)
	a.log.Info().Str("text", text).Msg("Transcribed")
	if a.cfg.OnTranscript != nil {
		a.cfg.OnTranscript(text)
	}

	if !a.cfg.AutoAnswer || a.cfg.Detector == nil || a.cfg.Answerer == nil {
		return
	}

	for _, q := range a.cfg.Detector.Extract(text) {
		a.answer(q)
	}
}

func (a *App) answer(q question.Question) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.AnswerTimeout)
	defer cancel()

	answer, err := a.cfg.Answerer.Generate(ctx, q.Text, a.RecentContext(contextExchanges))
	if err != nil {
		a.log.Error().Err(err).Str("question", q.Text).Msg("Answer generation failed")
		return
	}
	if answer == "" {
		a.log.Warn().Str("question", q.Text).Msg("Empty answer from model")
		return
	}

	a.log.Info().
		Str("question", q.Text).
		Float64("confidence", q.Confidence).
		Msg("Question answered")
	if a.cfg.OnAnswer != nil {
		a.cfg.OnAnswer(q.Text, answer)
	}
}

func (a *App) record(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.transcript = append(a.transcript, text)
	if len(a.transcript) > transcriptLimit {
		a.transcript = a.transcript[len(a.transcript)-transcriptLimit:]
	}
}
