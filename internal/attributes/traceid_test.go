package attributes

import (
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestTraceIDFromString_ValidHex(t *testing.T) {
	traceID, warnings, err := TraceIDFromString("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("TraceIDFromString() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings for valid trace ID, got %d", len(warnings))
	}

	expected, _ := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	if traceID != expected {
		t.Errorf("traceID = %v, want %v", traceID, expected)
	}
}

func TestTraceIDFromString_Hashed(t *testing.T) {
	traceID, warnings, err := TraceIDFromString("nightly-build-1234")
	if err != nil {
		t.Fatalf("TraceIDFromString() error = %v", err)
	}
	if !traceID.IsValid() {
		t.Error("hashed trace ID should be valid")
	}
	if len(warnings) != 2 {
		t.Fatalf("Expected 2 warning attributes, got %d", len(warnings))
	}
	if warnings[0].Value.AsString() != "nightly-build-1234" {
		t.Errorf("warnings[0] = %q, want the input", warnings[0].Value.AsString())
	}

	again, _, _ := TraceIDFromString("nightly-build-1234")
	if again != traceID {
		t.Error("hashing must be deterministic")
	}
}

func TestTraceIDFromString_Empty(t *testing.T) {
	traceID, warnings, err := TraceIDFromString("")
	if err != nil {
		t.Fatalf("TraceIDFromString() error = %v", err)
	}
	if traceID.IsValid() || warnings != nil {
		t.Errorf("empty input should give the zero ID, got %v %v", traceID, warnings)
	}
}

func TestRootSpanID(t *testing.T) {
	traceID, _, _ := TraceIDFromString("0123456789abcdef0123456789abcdef")
	id := RootSpanID(traceID)
	if !id.IsValid() {
		t.Error("root span ID should be valid")
	}
	if RootSpanID(traceID) != id {
		t.Error("root span ID must be stable")
	}
}
