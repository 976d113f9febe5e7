package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Memory is a minimal in-memory Port used by tests for components that talk
// to the store through the generic Port contract rather than a narrow
// repository interface (today: just the version counter, whose entire
// vocabulary is two statements against role_manager_config). It is not a
// SQL engine — it recognizes the handful of statement shapes the engine
// actually issues against that table.
type Memory struct {
	mu     sync.Mutex
	config map[string]int64
}

// NewMemory seeds the config table the way the schema's INSERT does.
func NewMemory() *Memory {
	return &Memory{config: map[string]int64{"permissions_version": 1}}
}

func (m *Memory) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	return 0, fmt.Errorf("store/memory: Execute not supported for: %s", sql)
}

func (m *Memory) QueryRow(ctx context.Context, sql string, args ...any) Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, _ := args[0].(string)
	switch {
	case strings.Contains(sql, "UPDATE role_manager_config"):
		m.config[key]++
		return memRow{val: m.config[key]}
	case strings.Contains(sql, "SELECT value FROM role_manager_config"):
		v, ok := m.config[key]
		if !ok {
			return memRow{err: fmt.Errorf("store/memory: no config row %q", key)}
		}
		return memRow{val: v}
	default:
		return memRow{err: fmt.Errorf("store/memory: unsupported query: %s", sql)}
	}
}

func (m *Memory) QueryRows(ctx context.Context, sql string, args ...any) (Rows, error) {
	return nil, fmt.Errorf("store/memory: QueryRows not supported for: %s", sql)
}

func (m *Memory) WithTx(ctx context.Context, iso IsoLevel, fn func(Tx) error) error {
	return fn(m)
}

type memRow struct {
	val int64
	err error
}

func (r memRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	p, ok := dest[0].(*int64)
	if !ok {
		return fmt.Errorf("store/memory: unsupported scan target")
	}
	*p = r.val
	return nil
}
