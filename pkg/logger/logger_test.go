package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_UsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "debug", Output: &buf, Service: "svc"})
	ctx := WithContext(context.Background(), l)

	FromContext(ctx).Debug().Str("k", "v").Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"k":"v"`)
	assert.Contains(t, out, `"service":"svc"`)
	assert.Contains(t, out, `"level":"debug"`)
}

func TestFromContext_FallsBackToSingleton(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.NotNil(t, FromContext(context.Background()))

	var buf bytes.Buffer
	Init(Options{Level: "info", Output: &buf})
	FromContext(context.Background()).Info().Msg("from singleton")
	assert.Contains(t, buf.String(), "from singleton")
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Output: &buf})

	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
