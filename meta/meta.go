// Package meta provides functionality for managing request metadata through context.
package meta

import "context"

// ContextKey is a type for keys used in context values for metadata.
type ContextKey string

const (
	// TraceID represents a unique identifier for tracing requests across services.
	TraceID ContextKey = "trace_id"

	// ActorID is the identity provider subject of the caller.
	ActorID ContextKey = "actor_id"

	// ActorUsername is the preferred username of the caller.
	ActorUsername ContextKey = "actor_username"

	// IPAddress contains the client's IP address.
	IPAddress ContextKey = "ip_address"

	// UserAgent contains the user agent string from the request.
	UserAgent ContextKey = "user_agent"

	// ServiceName identifies the name of current running service.
	ServiceName ContextKey = "service_name"

	// ServiceVersion indicates the version of the service.
	ServiceVersion ContextKey = "service_version"

	// Operation names the use case being executed, e.g. "spells.bulk".
	Operation ContextKey = "operation"
)

// allKeys lists every key ExtractMetaFromContext looks for.
var allKeys = []ContextKey{ //nolint:gochecknoglobals // fixed lookup table
	TraceID,
	ActorID,
	ActorUsername,
	IPAddress,
	UserAgent,
	ServiceName,
	ServiceVersion,
	Operation,
}

// InjectMetaToContext adds metadata from the provided map to the context.
// Empty values are skipped.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // finite number of keys
		}
	}
	return ctx
}

// ExtractMetaFromContext returns all non-empty metadata values found in ctx.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string)
	for _, k := range allKeys {
		if v := Find(ctx, k); v != "" {
			data[k] = v
		}
	}
	return data
}

// Find returns the string stored under key, or "" when absent.
func Find(ctx context.Context, key ContextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// Actor returns the caller identity stored in ctx and whether one is present.
func Actor(ctx context.Context) (id, username string, ok bool) {
	id = Find(ctx, ActorID)
	return id, Find(ctx, ActorUsername), id != ""
}

// WithActor returns a copy of ctx carrying the caller identity.
func WithActor(ctx context.Context, id, username string) context.Context {
	return InjectMetaToContext(ctx, map[ContextKey]string{
		ActorID:       id,
		ActorUsername: username,
	})
}
