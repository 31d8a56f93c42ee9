package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fnrepo/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestLogger_PrettyLevels(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	lg := logger.New()
	lg.SetOutput(&buf)

	lg.Info("cache ready")
	lg.Warn("revision changed")

	out := buf.String()
	assert.Contains(t, out, "cache ready\n")
	assert.Contains(t, out, "! revision changed\n")
}

func TestLogger_ErrorPretty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	lg := logger.New()
	lg.SetOutput(&buf)

	base := zerr.New("definition compilation failed")
	err := zerr.With(zerr.Wrap(base, "skipping FX spot"), "definition", "fx.spot")
	lg.Error(err)

	out := buf.String()
	assert.Contains(t, out, "✗ Error: skipping FX spot [definition=fx.spot]")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "→ definition compilation failed")
}

func TestLogger_ErrorNilIsIgnored(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New()
	lg.SetOutput(&buf)

	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSONMode(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New()
	lg.SetOutput(&buf)
	lg.SetJSON(true)

	lg.Info("resolved")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "resolved", record["msg"])

	buf.Reset()
	lg.Error(errors.New("boom"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
}

func TestLogger_SetOutputKeepsMode(t *testing.T) {
	lg := logger.New()
	lg.SetJSON(true)

	var buf bytes.Buffer
	lg.SetOutput(&buf)
	lg.Warn("still json")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
