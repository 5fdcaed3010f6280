package logger

import (
	"go.uber.org/zap/zapcore"
)

// DBCore wraps an existing core and forwards entries at or above minLevel to a LogSink.
type DBCore struct {
	zapcore.Core
	sink     LogSink
	minLevel zapcore.Level
	fields   []zapcore.Field
}

// LogSink receives mirrored entries. AddLog must not block.
type LogSink interface {
	AddLog(entry LogEntry)
}

func NewDBCore(baseCore zapcore.Core, sink LogSink, minLevel zapcore.Level) zapcore.Core {
	return &DBCore{
		Core:     baseCore,
		sink:     sink,
		minLevel: minLevel,
	}
}

func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &DBCore{
		Core:     c.Core.With(fields),
		sink:     c.sink,
		minLevel: c.minLevel,
		fields:   merged,
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= c.minLevel {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range c.fields {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}

		c.sink.AddLog(LogEntry{
			Level:   entry.Level,
			Message: entry.Message,
			Caller:  entry.Caller.Function,
			Fields:  enc.Fields,
			Time:    entry.Time,
		})
	}

	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
