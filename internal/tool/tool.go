// Package tool defines the search tools exposed to the model and the
// registry that executes them.
package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/harunnryd/kouza/internal/model/contract"
)

// Source points the user at where an answer came from.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// Tool represents an executable capability offered to the model.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// SourceTracker is implemented by tools that record which documents
// backed their last execution.
type SourceTracker interface {
	LastSources() []Source
	ResetSources()
}

// Manager holds the registered tools and dispatches execution by name.
type Manager struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewManager() *Manager {
	return &Manager{tools: make(map[string]Tool)}
}

func (m *Manager) Register(t Tool) {
	if t.Name() == "" {
		panic("tool: empty tool name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools[t.Name()] = t
}

// Definitions returns the tool catalog in a stable order.
func (m *Manager) Definitions() []contract.ToolDef {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.tools))
	for name := range m.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]contract.ToolDef, 0, len(names))
	for _, name := range names {
		t := m.tools[name]
		defs = append(defs, contract.ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// Execute runs a tool by name. An unknown name yields a result the model
// can read rather than a hard failure.
func (m *Manager) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	m.mu.RLock()
	t, ok := m.tools[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}
	return t.Execute(ctx, args)
}

// LastSources collects sources from every tracking tool, in registration
// name order.
func (m *Manager) LastSources() []Source {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.tools))
	for name := range m.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var sources []Source
	for _, name := range names {
		if tracker, ok := m.tools[name].(SourceTracker); ok {
			sources = append(sources, tracker.LastSources()...)
		}
	}
	return sources
}

// ResetSources clears tracked sources on every tracking tool.
func (m *Manager) ResetSources() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.tools {
		if tracker, ok := t.(SourceTracker); ok {
			tracker.ResetSources()
		}
	}
}
