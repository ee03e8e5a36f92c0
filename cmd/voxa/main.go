// Command voxa runs an interactive voice-assistant session in the terminal.
// It wires the turn pipeline to Deepgram transcription, an OpenAI-compatible
// streaming model, OpenAI speech synthesis and the system's audio devices.
// Missing credentials degrade gracefully: without a synthesis or audio setup
// the session still works as a text conversation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	pipeline "github.com/ferrostad/voxa-core/core"
	"github.com/ferrostad/voxa-core/core/audio/miniaudio"
	"github.com/ferrostad/voxa-core/core/events"
	openaillm "github.com/ferrostad/voxa-core/core/llms/openai"
	"github.com/ferrostad/voxa-core/core/speechtotext/deepgram"
	openaitts "github.com/ferrostad/voxa-core/core/texttospeech/openai"
	"github.com/ferrostad/voxa-core/internal/config"
	"github.com/ferrostad/voxa-core/internal/observe"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "voxa:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "voxa",
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := observe.ServeMetrics(ctx, cfg.MetricsAddr); err != nil {
				slog.Warn("Metrics endpoint failed", "error", err)
			}
		}()
	}

	opts := []pipeline.Option{
		pipeline.WithInstructions(cfg.Instructions),
		pipeline.WithPlaybackSpeed(cfg.PlaybackSpeed),
		pipeline.WithSilenceTimeout(cfg.SilenceTimeout),
		pipeline.WithAutoListen(cfg.AutoListen),
	}

	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, pipeline.WithStreamingLLM(openaillm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)))

		voice, err := openaitts.ParseVoice(cfg.Voice)
		if err != nil {
			return err
		}
		synthesizer, err := openaitts.NewTextToSpeechClient(voice)
		if err != nil {
			return fmt.Errorf("failed to build synthesizer: %w", err)
		}
		opts = append(opts, pipeline.WithSynthesizerClient(synthesizer), pipeline.WithVoice(cfg.Voice))
	} else {
		slog.Warn("OPENAI_API_KEY not set, no model or synthesis available")
	}

	if cfg.DeepgramAPIKey != "" {
		opts = append(opts, pipeline.WithSpeechToTextClient(deepgram.NewTranscriptionClient()))
	} else {
		slog.Warn("DEEPGRAM_API_KEY not set, voice input disabled")
	}

	if audioClient, err := miniaudio.NewClient(); err != nil {
		slog.Warn("Audio devices unavailable, running text-only", "error", err)
	} else {
		opts = append(opts, pipeline.WithAudioInput(audioClient), pipeline.WithAudioOutput(audioClient))
	}

	p := pipeline.New(opts...)
	defer p.Close()

	eventCh := make(chan events.Event, 128)
	p.Run(ctx, pipeline.WithEventCallback(func(event events.Event) {
		select {
		case eventCh <- event:
		default:
		}
	}))

	program := tea.NewProgram(newSessionModel(p, cfg, eventCh), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("session ended with error: %w", err)
	}

	return nil
}
