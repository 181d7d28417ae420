package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"phetools/internal/template"
)

// Compile-time contract assertion.
var _ Repository = (*Memory)(nil)

// Memory keeps cohort templates in a map. Templates are stored as their
// serialized form so reads never alias a caller's value.
type Memory struct {
	mu      sync.RWMutex
	cohorts map[string][]byte
}

// NewMemory constructs an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{cohorts: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, name string, tpl template.TemplateDTO) error {
	if name == "" {
		return fmt.Errorf("cohort name must not be empty")
	}
	payload, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("encode cohort %s: %w", name, err)
	}
	m.mu.Lock()
	m.cohorts[name] = payload
	m.mu.Unlock()
	return nil
}

func (m *Memory) Load(_ context.Context, name string) (template.TemplateDTO, error) {
	m.mu.RLock()
	payload, ok := m.cohorts[name]
	m.mu.RUnlock()
	if !ok {
		return template.TemplateDTO{}, fmt.Errorf("cohort %s: %w", name, ErrNotFound)
	}
	var tpl template.TemplateDTO
	if err := json.Unmarshal(payload, &tpl); err != nil {
		return template.TemplateDTO{}, fmt.Errorf("decode cohort %s: %w", name, err)
	}
	return tpl, nil
}

func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	names := make([]string, 0, len(m.cohorts))
	for name := range m.cohorts {
		names = append(names, name)
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cohorts[name]; !ok {
		return fmt.Errorf("cohort %s: %w", name, ErrNotFound)
	}
	delete(m.cohorts, name)
	return nil
}

func (m *Memory) Close() error { return nil }

// exportState clones the raw payload map for snapshotting backends.
func (m *Memory) exportState() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.cohorts))
	for name, payload := range m.cohorts {
		out[name] = append([]byte(nil), payload...)
	}
	return out
}

// importState replaces the in-memory contents with the given payloads.
func (m *Memory) importState(state map[string][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cohorts = make(map[string][]byte, len(state))
	for name, payload := range state {
		m.cohorts[name] = append([]byte(nil), payload...)
	}
}
