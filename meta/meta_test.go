package meta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/tabletop/meta"
)

func TestInjectMetaToContext(t *testing.T) {
	tests := []struct {
		name     string
		initial  context.Context
		data     map[meta.ContextKey]string
		key      meta.ContextKey
		expected any
	}{
		{
			name:     "inject single value",
			initial:  t.Context(),
			data:     map[meta.ContextKey]string{meta.TraceID: "abc-123"},
			key:      meta.TraceID,
			expected: "abc-123",
		},
		{
			name:     "skip empty values",
			initial:  t.Context(),
			data:     map[meta.ContextKey]string{meta.TraceID: "t", meta.ActorID: ""},
			key:      meta.ActorID,
			expected: nil,
		},
		{
			name:     "overwrite existing value",
			initial:  context.WithValue(t.Context(), meta.TraceID, "old"),
			data:     map[meta.ContextKey]string{meta.TraceID: "new"},
			key:      meta.TraceID,
			expected: "new",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := meta.InjectMetaToContext(tc.initial, tc.data)
			assert.Equal(t, tc.expected, ctx.Value(tc.key))
		})
	}
}

func TestExtractMetaFromContext(t *testing.T) {
	ctx := context.WithValue(t.Context(), meta.TraceID, "trace-1")
	ctx = context.WithValue(ctx, meta.ActorID, "")
	ctx = context.WithValue(ctx, meta.ServiceName, 42)
	ctx = context.WithValue(ctx, meta.ContextKey("custom"), "ignored")
	ctx = context.WithValue(ctx, meta.Operation, "spells.bulk")

	got := meta.ExtractMetaFromContext(ctx)

	assert.Equal(t, map[meta.ContextKey]string{
		meta.TraceID:   "trace-1",
		meta.Operation: "spells.bulk",
	}, got)
}

func TestActor(t *testing.T) {
	_, _, ok := meta.Actor(t.Context())
	assert.False(t, ok)

	ctx := meta.WithActor(t.Context(), "sub-1", "merlin")
	id, username, ok := meta.Actor(ctx)
	assert.True(t, ok)
	assert.Equal(t, "sub-1", id)
	assert.Equal(t, "merlin", username)
}
