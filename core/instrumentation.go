package pipeline

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/ferrostad/voxa-core/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	turnsStartedCounter, _ = meter.Int64Counter("voxa.turns.started",
		metric.WithDescription("Turns that entered the listening phase"))
	turnsCompletedCounter, _ = meter.Int64Counter("voxa.turns.completed",
		metric.WithDescription("Turns that drained playback naturally"))
	turnsCancelledCounter, _ = meter.Int64Counter("voxa.turns.cancelled",
		metric.WithDescription("Turns torn down by explicit cancellation"))
	turnDurationHistogram, _ = meter.Float64Histogram("voxa.turns.duration",
		metric.WithDescription("Listen-to-drain duration of completed turns"),
		metric.WithUnit("s"))

	fetchLatencyHistogram, _ = meter.Float64Histogram("voxa.tts.fetch_latency",
		metric.WithDescription("Latency of single-flight synthesis fetches"),
		metric.WithUnit("s"))
	fetchFailuresCounter, _ = meter.Int64Counter("voxa.tts.fetch_failures",
		metric.WithDescription("Synthesis fetches that failed and were skipped"))
	decodeRejectsCounter, _ = meter.Int64Counter("voxa.tts.decode_rejects",
		metric.WithDescription("Synthesis payloads rejected by the frame decoder"))

	framesPlayedCounter, _ = meter.Int64Counter("voxa.playback.frames_played",
		metric.WithDescription("Frames whose playback completed"))
)
