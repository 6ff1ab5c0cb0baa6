package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newLogHandler(&buf))

	logger := &cliLogger{log: log}
	logger.Info("converted 3 files", "convert")

	line := buf.String()
	require.NotEmpty(t, line)
	assert.Regexp(t, `^\[\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\] \[convert\] converted 3 files`, line)
	assert.NotContains(t, line, "module=")
}
