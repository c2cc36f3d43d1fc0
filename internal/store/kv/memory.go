package kv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Memory is a volatile key-value store. Values are copied on the way in and
// out so callers never share buffers with the store.
type Memory struct {
	mu    sync.Mutex
	items map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{items: map[string][]byte{}}
}

// NewMemoryFromDir seeds the store from <base>/<key>.json files. Missing or
// unreadable files are skipped.
func NewMemoryFromDir(base string, keys ...string) *Memory {
	m := NewMemory()
	for _, key := range keys {
		b, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		m.items[key] = b
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), value...)
	return nil
}

// Keys returns the stored keys, for diagnostics.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.items))
	for k := range m.items {
		out = append(out, k)
	}
	return out
}
