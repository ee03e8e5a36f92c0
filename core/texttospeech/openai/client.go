// Package openai synthesizes speech through OpenAI's one-shot speech
// endpoint. Each call carries the full text payload and returns the complete
// audio for it, which keeps retries and cancellation simple at the cost of
// time-to-first-byte on long inputs.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/ferrostad/voxa-core/core/texttospeech"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultURL     = "https://api.openai.com/v1/audio/speech"
	defaultModel   = "tts-1"
	defaultFormat  = "wav"
	defaultTimeout = 60 * time.Second
)

type Client struct {
	apiKey string

	model   string
	url     string
	voice   openaiVoice
	timeout time.Duration
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.url = url
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithTimeout bounds each synthesis request end to end.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewTextToSpeechClient(voice openaiVoice, opts ...Option) (*Client, error) {
	apiKey, ok := os.LookupEnv("OPENAI_API_KEY")
	if !ok {
		return nil, fmt.Errorf("openai api key not found")
	}

	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice")
	}

	client := &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		url:     defaultURL,
		voice:   voice,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

func (c *Client) SetVoice(voice openaiVoice) {
	if !slices.Contains(GetAvailableVoices(), voice) {
		logger.Warn("Ignoring invalid voice", "voice", voice)
		return
	}
	c.voice = voice
}

type speechRequestBody struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
}

// Synthesize requests the full speech audio for text. The returned bytes
// include the provider's container header when the format carries one.
func (c *Client) Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) ([]byte, error) {
	options := &texttospeech.SynthesisOptions{
		Voice:  string(c.voice),
		Format: defaultFormat,
		Speed:  texttospeech.DefaultSpeed,
	}
	for _, opt := range opts {
		opt(options)
	}

	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", c.model),
		attribute.String("request.voice", options.Voice),
		attribute.Float64("request.speed", options.Speed),
		attribute.Int("request.text_length", len(text)),
	)

	reqBody := speechRequestBody{
		Model:          c.model,
		Input:          text,
		Voice:          options.Voice,
		ResponseFormat: options.Format,
		Speed:          texttospeech.ClampSpeed(options.Speed),
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := &http.Client{
		Timeout: c.timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		),
	}
	resp, err := client.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, err := io.ReadAll(resp.Body); err == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}

		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading speech audio: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("response.audio_bytes", len(audio)))
	return audio, nil
}
