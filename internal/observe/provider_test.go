package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitProviderInstallsGlobalsAndShutsDown(t *testing.T) {
	ctx := context.Background()

	shutdown, err := InitProvider(ctx, ProviderConfig{ServiceName: "voxa-test"})
	if err != nil {
		t.Fatalf("expected provider init to succeed, got %v", err)
	}

	meter := otel.GetMeterProvider().Meter("test")
	counter, err := meter.Int64Counter("voxa.test.counter")
	if err != nil {
		t.Fatalf("expected instrument creation to succeed, got %v", err)
	}
	counter.Add(ctx, 1)

	_, span := otel.GetTracerProvider().Tracer("test").Start(ctx, "test span")
	span.End()

	if err := shutdown(ctx); err != nil {
		t.Fatalf("expected shutdown to succeed, got %v", err)
	}
}
