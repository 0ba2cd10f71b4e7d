package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petems/loopscribe/internal/answer"
	"github.com/petems/loopscribe/internal/app"
	"github.com/petems/loopscribe/internal/audio"
	"github.com/petems/loopscribe/internal/config"
	"github.com/petems/loopscribe/internal/logging"
	"github.com/petems/loopscribe/internal/question"
	"github.com/petems/loopscribe/internal/whisper"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	// Load config from XDG/Library/AppData
	cfg, err := config.Load()
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.LogLevel)
	log.Info().Str("version", Version).Str("commit", Commit).Msg("loopscribe starting")

	if err := audio.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize audio subsystem")
	}
	defer audio.Terminate()

	// Resolve the loopback capture device and its native rate once.
	dev, err := audio.ResolveDevice(cfg.Audio.DeviceIndex, cfg.Audio.TargetSampleRate, log)
	if err != nil {
		log.Fatal().Err(err).Msg("No usable capture device")
	}

	transcriber, err := whisper.New(cfg.Whisper)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize whisper")
	}
	defer transcriber.Close()

	answerer, err := answer.New(
		cfg.Answer.APIKey,
		cfg.Answer.Model,
		cfg.Answer.MaxTokens,
		answer.WithBaseURL(cfg.Answer.BaseURL),
		answer.WithTimeout(time.Duration(cfg.Answer.TimeoutS)*time.Second),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize answer generator")
	}

	application := app.New(app.Config{
		Transcriber:   transcriber,
		Detector:      question.New(cfg.Detector.Sensitivity),
		Answerer:      answerer,
		AutoAnswer:    cfg.AutoAnswer,
		AnswerTimeout: time.Duration(cfg.Answer.TimeoutS) * time.Second,
		Logger:        log,
		OnAnswer: func(q, ans string) {
			fmt.Printf("\nQ: %s\nA: %s\n", q, ans)
		},
	})

	pipeline := audio.NewPipeline(audio.Options{
		TargetSampleRate:   cfg.Audio.TargetSampleRate,
		ChunkDuration:      cfg.Audio.ChunkDuration,
		SilenceThreshold:   cfg.Audio.SilenceThreshold,
		MinSilenceDuration: cfg.Audio.MinSilenceDuration,
		MaxBufferDuration:  cfg.Audio.MaxBufferDuration,
	}, dev, application.HandlePhrase, log)

	if err := pipeline.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start audio capture")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down...")
	pipeline.Stop()
	application.Close()
}
