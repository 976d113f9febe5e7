package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// LogWriter persists log entries to role_manager_logs, implementing
// logging.DBWriter without internal/logging needing to import store
// (and to keep the interface narrow).
type LogWriter struct {
	store Port
}

// NewLogWriter wraps a Port as a logging.DBWriter.
func NewLogWriter(s Port) *LogWriter {
	return &LogWriter{store: s}
}

// WriteLog inserts one entry. payload is stored as JSON; a marshal
// failure degrades to an empty object rather than losing the log line.
func (w *LogWriter) WriteLog(ctx context.Context, level, message string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}
	_, err = w.store.Execute(ctx,
		`INSERT INTO role_manager_logs (level, message, payload) VALUES ($1, $2, $3)`,
		level, message, data,
	)
	if err != nil {
		return fmt.Errorf("store: write log: %w", err)
	}
	return nil
}
