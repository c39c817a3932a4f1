package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	for level, want := range map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"bogus": zapcore.InfoLevel,
	} {
		l, err := New(level)
		require.NoError(t, err)
		require.True(t, l.Core().Enabled(want), level)
		require.False(t, l.Core().Enabled(want-1), level)
	}
}

func TestInit_ReturnsLogger(t *testing.T) {
	t.Parallel()

	l := Init("warn")
	require.NotNil(t, l)
	require.True(t, l.Core().Enabled(zapcore.WarnLevel))
	require.False(t, l.Core().Enabled(zapcore.InfoLevel))
}
