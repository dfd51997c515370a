// Package registry holds the named tool table that connectors register
// into and agents invoke through.
package registry

import (
	"sync"
	"time"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/domain/events"

	"go.uber.org/zap"
)

// Entry pairs a registered handler with its schema.
type Entry struct {
	Name    string
	Handler entities.ToolHandler
	Schema  entities.Schema
}

// ToolRegistry maps tool names to handlers and schemas. Registration order
// is preserved for listings. Every invocation is published as a tool call
// event for subscribers (audit log, server-sent events).
type ToolRegistry struct {
	mu     sync.RWMutex
	tools  map[string]*Entry
	order  []string
	logger *zap.Logger
}

var _ entities.Registry = (*ToolRegistry)(nil)

func NewToolRegistry(logger *zap.Logger) *ToolRegistry {
	return &ToolRegistry{
		tools:  make(map[string]*Entry),
		logger: logger,
	}
}

// Register adds a tool. The name must be non-empty, match the schema's
// name, and not collide with an existing tool.
func (r *ToolRegistry) Register(name string, handler entities.ToolHandler, schema entities.Schema) error {
	if name == "" {
		return errs.ValidationErrorf("tool name is required")
	}
	if handler == nil {
		return errs.ValidationErrorf("tool %s has no handler", name)
	}
	if schema.Name != name {
		return errs.ValidationErrorf("schema name %q does not match tool name %q", schema.Name, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return errs.DuplicateErrorf("tool already registered: %s", name)
	}
	r.tools[name] = &Entry{Name: name, Handler: handler, Schema: schema}
	r.order = append(r.order, name)
	r.logger.Debug("Tool registered", zap.String("tool", name))
	return nil
}

// Get returns a registered tool by name.
func (r *ToolRegistry) Get(name string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.tools[name]
	if !ok {
		return nil, errs.NotFoundErrorf("tool not found: %s", name)
	}
	return entry, nil
}

// List returns all tools in registration order.
func (r *ToolRegistry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*Entry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, r.tools[name])
	}
	return entries
}

// Schemas returns the function-calling schemas of all tools in
// registration order.
func (r *ToolRegistry) Schemas() []entities.Schema {
	entries := r.List()
	schemas := make([]entities.Schema, 0, len(entries))
	for _, entry := range entries {
		schemas = append(schemas, entry.Schema)
	}
	return schemas
}

// Invoke runs a tool by name with the given JSON arguments and publishes a
// tool call event with the outcome.
func (r *ToolRegistry) Invoke(name, arguments string) (string, error) {
	entry, err := r.Get(name)
	if err != nil {
		return "", err
	}

	start := time.Now()
	result, err := entry.Handler(arguments)
	elapsed := time.Since(start)

	errorMsg := ""
	if err != nil {
		errorMsg = err.Error()
		r.logger.Warn("Tool call failed",
			zap.String("tool", name),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		r.logger.Info("Tool call completed",
			zap.String("tool", name),
			zap.Duration("elapsed", elapsed))
	}
	events.PublishToolCallEvent(entities.NewToolCallEvent(name, arguments, result, errorMsg, nil))

	return result, err
}
