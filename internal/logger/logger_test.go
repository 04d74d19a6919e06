package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	log, err := New("production", "warn", "")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))

	log, err = New("development", "", "json")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New("production", "loud", "")
	assert.ErrorContains(t, err, "parse log level")

	_, err = New("production", "info", "xml")
	assert.ErrorContains(t, err, "unknown log format")
}
