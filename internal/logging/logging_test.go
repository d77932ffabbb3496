package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.LogConfig
		enabled zapcore.Level
		off     zapcore.Level
	}{
		{"default is info", types.LogConfig{}, zapcore.InfoLevel, zapcore.DebugLevel},
		{"debug", types.LogConfig{Level: "debug"}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"warn development", types.LogConfig{Level: "WARN", Development: true}, zapcore.WarnLevel, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.off))
		})
	}
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(types.LogConfig{Level: "loud"})
	assert.ErrorContains(t, err, `"loud"`)
}
