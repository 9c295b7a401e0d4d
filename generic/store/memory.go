// Package store provides LineStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/tjwilli6/Fitness/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds any number of named logs in memory.
type Memory struct {
	mu   sync.RWMutex
	logs map[string][]string
}

func NewMemory() *Memory {
	return &Memory{logs: make(map[string][]string)}
}

// Log returns a LineStore view of the named log.
func (m *Memory) Log(name string) generic.LineStore {
	return &memoryLog{parent: m, name: name}
}

// Lines returns a copy of the named log's lines.
func (m *Memory) Lines(name string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.logs[name]...)
}

type memoryLog struct {
	parent *Memory
	name   string
}

func (l *memoryLog) Name() string { return l.name }

// Append adds one line. Append-only.
func (l *memoryLog) Append(_ context.Context, line string) error {
	l.parent.mu.Lock()
	defer l.parent.mu.Unlock()
	l.parent.logs[l.name] = append(l.parent.logs[l.name], line)
	return nil
}

func (l *memoryLog) ReadAll(_ context.Context) ([]string, error) {
	l.parent.mu.RLock()
	defer l.parent.mu.RUnlock()
	return append([]string(nil), l.parent.logs[l.name]...), nil
}

func (l *memoryLog) RemoveLast(_ context.Context) (string, error) {
	l.parent.mu.Lock()
	defer l.parent.mu.Unlock()

	lines := l.parent.logs[l.name]
	if len(lines) == 0 {
		return "", generic.ErrEmptyLog
	}
	last := lines[len(lines)-1]
	l.parent.logs[l.name] = lines[:len(lines)-1]
	return last, nil
}

func (l *memoryLog) Exists(_ context.Context) (bool, error) {
	l.parent.mu.RLock()
	defer l.parent.mu.RUnlock()
	return len(l.parent.logs[l.name]) > 0, nil
}
