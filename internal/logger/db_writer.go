package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to the worker
type LogEntry struct {
	Level   zapcore.Level
	Message string
	Caller  string
	Fields  map[string]interface{}
	Time    time.Time
}

type logRecord struct {
	Level       string                 `bson:"level"`
	Message     string                 `bson:"message"`
	Caller      string                 `bson:"caller,omitempty"`
	Fields      map[string]interface{} `bson:"fields,omitempty"`
	Environment string                 `bson:"environment"`
	CreatedAt   time.Time              `bson:"created_at"`
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	collection  *mongo.Collection
	logChan     chan LogEntry
	environment string
	done        chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDBLogWriter(collection *mongo.Collection, environment string) *DBLogWriter {
	writer := &DBLogWriter{
		collection:  collection,
		logChan:     make(chan LogEntry, 1000),
		environment: environment,
		done:        make(chan struct{}),
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by the zap core
func (w *DBLogWriter) AddLog(entry LogEntry) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}

	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop rather than block the caller
		fmt.Fprintln(os.Stderr, "DB log channel full, dropping log:", entry.Message)
	}
}

// Close stops accepting entries and waits for the buffered ones to be written.
// Entries added after Close are dropped.
func (w *DBLogWriter) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.logChan)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *DBLogWriter) processLogs() {
	defer close(w.done)
	for entry := range w.logChan {
		record := logRecord{
			Level:       entry.Level.String(),
			Message:     entry.Message,
			Caller:      entry.Caller,
			Fields:      entry.Fields,
			Environment: w.environment,
			CreatedAt:   entry.Time.UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		// Insert errors are ignored to keep the app running
		_, _ = w.collection.InsertOne(ctx, record)
		cancel()
	}
}
