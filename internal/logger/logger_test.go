package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/timeclock/internal/config"
)

func TestBuild_Levels(t *testing.T) {
	tests := []struct {
		name  string
		obs   config.Observability
		debug bool
		info  bool
	}{
		{name: "json info", obs: config.Observability{LogLevel: "info", LogEncoding: "json"}, info: true},
		{name: "console debug", obs: config.Observability{LogLevel: "DEBUG", LogEncoding: "console"}, debug: true, info: true},
		{name: "bad level falls back to info", obs: config.Observability{LogLevel: "loud", LogEncoding: "json"}, info: true},
		{name: "error only", obs: config.Observability{LogLevel: "error", LogEncoding: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Build(tt.obs)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.info, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}
