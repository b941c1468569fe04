package logger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"worker": "send-order-notification"})

	log.Debug("dropped", nil)
	log.Warn("provider slow", map[string]interface{}{
		"channel": "sms",
		"error":   fmt.Errorf("gateway timeout"),
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	ctx := entry.ContextMap()
	assert.Equal(t, "send-order-notification", ctx["worker"])
	assert.Equal(t, "sms", ctx["channel"])
	assert.Equal(t, "gateway timeout", ctx["error"])
}

func TestNew_LevelFallback(t *testing.T) {
	l := New("chatty", "console", "stderr")
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l = New("debug", "json", "stderr")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
