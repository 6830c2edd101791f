package tracing

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// manualPrefix marks trace ids minted locally because no span was recording.
const manualPrefix = "man-"

// GetStartingTraceID returns the trace id of the span in ctx. Without a valid
// span, e.g. when tracing is disabled, it mints a prefixed uuid so that log
// lines of one request still correlate.
func GetStartingTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return manualPrefix + uuid.NewString()
}
