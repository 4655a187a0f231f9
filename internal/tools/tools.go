// Package tools defines the Tool interface, the Registry that tracks
// availability per tool, and the Dispatcher that turns tool calls into
// Observations the research loop can always continue past.
package tools

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shennong-ai/shennong/internal/provider"
)

// Status is a tool's availability. Tools that are degraded or unavailable
// are withheld from the model but stay listed for introspection.
type Status string

const (
	StatusReady       Status = "ready"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
)

// Tool is one capability the agent can invoke.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// funcTool adapts a plain function plus metadata into a Tool. Most domain
// tools are thin dataset lookups, so this avoids a struct type per tool.
type funcTool struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

func (t *funcTool) Name() string           { return t.name }
func (t *funcTool) Description() string    { return t.description }
func (t *funcTool) Schema() map[string]any { return t.schema }
func (t *funcTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	return t.fn(ctx, args)
}

type entry struct {
	tool   Tool
	status Status
}

// Registry stores tools by unique name with their availability status.
// Reads dominate after startup; mutation (registration, status changes)
// is serialized behind the lock.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]entry
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]entry)}
}

// Register adds a tool as ready. Registering an existing name replaces
// the prior entry, which is how a tool is re-registered after a degraded
// load is repaired.
func (r *Registry) Register(tool Tool) error {
	return r.RegisterWithStatus(tool, StatusReady)
}

// RegisterWithStatus adds a tool with an explicit initial status.
func (r *Registry) RegisterWithStatus(tool Tool, status Status) error {
	if tool == nil {
		return errors.New("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return errors.New("tool name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = entry{tool: tool, status: status}
	return nil
}

// Lookup returns a tool and its status by name.
func (r *Registry) Lookup(name string) (Tool, Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return nil, "", false
	}
	return e.tool, e.status, true
}

// SetStatus updates a tool's availability.
func (r *Registry) SetStatus(name string, status Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byName[name]
	if !ok {
		return false
	}
	e.status = status
	r.byName[name] = e
	return true
}

// ToolInfo is one introspection row.
type ToolInfo struct {
	Name        string
	Description string
	Status      Status
}

// List returns every registered tool with its status, in name order.
func (r *Registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolInfo, 0, len(r.byName))
	for name, e := range r.byName {
		out = append(out, ToolInfo{Name: name, Description: e.tool.Description(), Status: e.status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ReadyDefinitions converts ready tools into model-facing definitions,
// excluding any name in the suppressed set.
func (r *Registry) ReadyDefinitions(suppressed map[string]bool) []provider.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name, e := range r.byName {
		if e.status != StatusReady || suppressed[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]provider.ToolDefinition, 0, len(names))
	for _, name := range names {
		tool := r.byName[name].tool
		defs = append(defs, provider.ToolDefinition{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Schema(),
		})
	}
	return defs
}
