package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derror "github.com/msto63/dcmd/foundation/core/error"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" WARN ", LevelWarn, false},
		{"ftl", LevelFatal, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelWarn, Format: FormatText, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")
	logger.Audit("always")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WRN]")
	assert.Contains(t, out, "always")
}

func TestLogger_JSONContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf}).
		WithName("dispatch").
		WithSession("s-1").
		WithField("component", "registry")

	logger.Info("command registered", Fields{"name": "greet"})

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "info", data["level"])
	assert.Equal(t, "dispatch", data["logger"])
	assert.Equal(t, "s-1", data["session_id"])
	assert.Equal(t, "registry", data["component"])
	assert.Equal(t, "greet", data["name"])
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithConfig(Config{Level: LevelInfo, Format: FormatText, Output: &buf})
	_ = parent.WithField("child", true)

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "child")
}

func TestLogger_CriticalDoesNotExit(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelInfo, Format: FormatText, Output: &buf})

	logger.Critical("command panicked", errors.New("boom"))

	assert.Contains(t, buf.String(), "[FTL]")
	assert.Contains(t, buf.String(), `error="boom"`)
}

func TestLogger_LogErrorUsesSeverity(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelTrace, Format: FormatText, Output: &buf})

	logger.LogError(derror.New("no such command").WithCode(derror.CodeNotFound))

	line := buf.String()
	assert.True(t, strings.Contains(line, "[INF]") || strings.Contains(line, "[WRN]"), line)
	assert.Contains(t, line, "error_code=NOT_FOUND")
}

func TestTimer_StopOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithConfig(Config{Level: LevelDebug, Format: FormatText, Output: &buf})

	timer := logger.StartTimer("invoke")
	first := timer.Stop()
	second := timer.Stop()

	assert.Equal(t, first, second)
	assert.Equal(t, 1, strings.Count(buf.String(), "invoke completed"))
}
