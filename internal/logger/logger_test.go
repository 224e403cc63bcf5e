package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromCore(core).With(String("component", "catalog"))

	log.Info("version saved", Int("version", 11), Error(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "catalog", fields["component"])
	assert.EqualValues(t, 11, fields["version"])
	assert.Equal(t, "boom", fields["error"])
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := FromCore(core)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warnf("shown %d", 1)
	log.Error("shown")

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, "shown 1", logs.All()[0].Message)
}

func TestNewAcceptsUnknownLevel(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New("verbose", false)
		_ = New("debug", true)
	})
}
