package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapForwardsFieldsInKeyOrder(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := Wrap(zap.New(core))

	log.Info("command processed", map[string]interface{}{"status": "success", "intent": "open-url"})
	log.Error("save failed", errors.New("boom"), map[string]interface{}{"store": "mongo"})

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "command processed", entries[0].Message)
	require.Len(t, entries[0].Context, 2)
	assert.Equal(t, "intent", entries[0].Context[0].Key)
	assert.Equal(t, "status", entries[0].Context[1].Key)

	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty", "console")
	require.Error(t, err)
}

func TestNewBuildsJSONLogger(t *testing.T) {
	log, err := New("warn", "json")
	require.NoError(t, err)
	assert.False(t, log.Zap().Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Zap().Core().Enabled(zap.WarnLevel))
}
