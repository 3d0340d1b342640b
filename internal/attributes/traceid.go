package attributes

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDFromString converts s into a trace ID. A 32 character hex string
// is used as is; anything else is hashed with SHA-256 and a warning
// attribute is returned for the root span. An empty s yields the zero ID,
// which lets the SDK pick a random one.
func TraceIDFromString(s string) (trace.TraceID, []attribute.KeyValue, error) {
	if s == "" {
		return trace.TraceID{}, nil, nil
	}

	if len(s) == 32 {
		if traceID, err := trace.TraceIDFromHex(s); err == nil {
			return traceID, nil, nil
		}
	}

	hash := sha256.Sum256([]byte(s))
	traceID, err := trace.TraceIDFromHex(hex.EncodeToString(hash[:16]))
	if err != nil {
		return trace.TraceID{}, nil, fmt.Errorf("failed to create trace ID from hash: %w", err)
	}

	warnings := []attribute.KeyValue{
		attribute.String("_trace_id_input", s),
		attribute.String("_trace_id_invalid_warning", fmt.Sprintf("%q is not a valid 32-char hex trace ID, used SHA-256 hash instead", s)),
	}
	return traceID, warnings, nil
}

// RootSpanID derives a stable span ID for the synthetic root of a trace.
func RootSpanID(traceID trace.TraceID) trace.SpanID {
	hash := sha256.Sum256(traceID[:])
	var id trace.SpanID
	copy(id[:], hash[:8])
	return id
}
