package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPort struct {
	Memory
	lastSQL  string
	lastArgs []any
}

func (p *capturingPort) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	p.lastSQL = sql
	p.lastArgs = args
	return 1, nil
}

func TestLogWriterInsertsPayloadAsJSON(t *testing.T) {
	port := &capturingPort{}
	w := NewLogWriter(port)

	err := w.WriteLog(context.Background(), "WARNING", "cache warmup failed", map[string]any{"user_id": int64(7)})
	require.NoError(t, err)

	assert.Contains(t, port.lastSQL, "INSERT INTO role_manager_logs")
	require.Len(t, port.lastArgs, 3)
	assert.Equal(t, "WARNING", port.lastArgs[0])
	assert.Equal(t, "cache warmup failed", port.lastArgs[1])
	assert.JSONEq(t, `{"user_id":7}`, string(port.lastArgs[2].([]byte)))
}
