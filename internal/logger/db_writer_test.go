package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestDBLogWriterDropsEntriesAfterClose(t *testing.T) {
	writer := NewDBLogWriter(nil, "test")
	writer.Close()

	assert.NotPanics(t, func() {
		writer.AddLog(LogEntry{Level: zapcore.ErrorLevel, Message: "late shutdown log", Time: time.Now()})
	})
	assert.NotPanics(t, writer.Close, "a second Close is a no-op")
}
