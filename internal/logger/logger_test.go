package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(redact bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewWithCore(core, redact), logs
}

func TestRedaction(t *testing.T) {
	l, logs := observed(true)
	l.Info("answer saved",
		"question_id", "q1",
		"own_name", "Ana",
		"answer_text", "me siento cansada",
		"session_id", "0b7d",
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "q1", fields["question_id"])
	assert.Equal(t, redacted, fields["own_name"])
	assert.Equal(t, redacted, fields["answer_text"])
	assert.True(t, strings.HasPrefix(fields["session_id"].(string), "hash:"))
	assert.NotContains(t, fields["session_id"], "0b7d")
}

func TestRedactionDisabled(t *testing.T) {
	l, logs := observed(false)
	l.Warn("x", "own_name", "Ana")
	assert.Equal(t, "Ana", logs.All()[0].ContextMap()["own_name"])
}

func TestWithCarriesRedaction(t *testing.T) {
	l, logs := observed(true)
	l.With("cared_name", "Luis").Debug("captured")
	assert.Equal(t, redacted, logs.All()[0].ContextMap()["cared_name"])
}

func TestNestedMap(t *testing.T) {
	l, logs := observed(true)
	l.Error("failed", "detail", map[string]any{"Name": "Ana", "kind": "free_text"})

	detail := logs.All()[0].ContextMap()["detail"].(map[string]any)
	assert.Equal(t, redacted, detail["Name"])
	assert.Equal(t, "free_text", detail["kind"])
}

func TestOddKeyValues(t *testing.T) {
	l, logs := observed(true)
	assert.NotPanics(t, func() { l.Info("odd", "dangling") })
	assert.Equal(t, 1, logs.Len())
}

func TestHashIsSalted(t *testing.T) {
	a := redactor{enabled: true, salt: "a"}.hash("user-1")
	b := redactor{enabled: true, salt: "b"}.hash("user-1")
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("hash:")+12)
}

func TestNew(t *testing.T) {
	l, err := New(Options{Mode: ModeTest})
	require.NoError(t, err)
	l.Info("discarded")

	_, err = New(Options{Mode: ModeDev, Level: "loud"})
	assert.Error(t, err)

	l, err = New(Options{Mode: ModeProd, Level: "warn"})
	require.NoError(t, err)
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel))
}
