package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpanWithoutInit(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test-span",
		attribute.String("strategy", "4"),
		attribute.Int("iteration", 1),
	)
	if span == nil {
		t.Fatal("StartSpan returned nil span")
	}
	if ctx == nil {
		t.Fatal("StartSpan returned nil context")
	}
	span.End()
}

func TestInitDisabled(t *testing.T) {
	err := Init(Config{ServiceName: "test", Enabled: false})
	if err != nil {
		t.Fatalf("Init with disabled tracing failed: %v", err)
	}
}

func TestInitUnknownExporter(t *testing.T) {
	err := Init(Config{ServiceName: "test", Enabled: true, ExporterType: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected error for unknown exporter type")
	}
}

func TestInitStdoutExporter(t *testing.T) {
	err := Init(Config{ServiceName: "test", Enabled: true, ExporterType: "stdout"})
	if err != nil {
		t.Fatalf("Init with stdout exporter failed: %v", err)
	}
	t.Cleanup(func() { _ = Shutdown(context.Background()) })
}

func TestShutdownWithoutInit(t *testing.T) {
	tracerProvider = nil
	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown without init failed: %v", err)
	}
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "Authorization=Bearer abc", want: map[string]string{"Authorization": "Bearer abc"}},
		{name: "multiple", input: "a=1,b=2", want: map[string]string{"a": "1", "b": "2"}},
		{name: "spaces", input: " a = 1 , b = 2 ", want: map[string]string{"a": "1", "b": "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseHeaders(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseHeaders(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseHeaders(%q)[%q] = %q, want %q", tt.input, k, got[k], v)
				}
			}
		})
	}
}
