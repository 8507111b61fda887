package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownTool is returned by Invoke when no tool is registered under the
// requested name.
var ErrUnknownTool = errors.New("unknown tool")

// ErrNotFound marks a tool failure caused by a reference to a record that
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidArgs marks a tool failure caused by the caller's arguments.
// Handlers wrap it so transports can distinguish validation failures from
// internal errors.
var ErrInvalidArgs = errors.New("invalid arguments")

// InvalidArgsf builds a validation error wrapping ErrInvalidArgs.
func InvalidArgsf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidArgs}, args...)...)
}

// Handler executes a tool call. Args is the raw JSON object from the caller;
// the result must be JSON-serializable.
type Handler func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Tool is a registered tool with its public description.
type Tool struct {
	Name        string
	Description string
	Handler     Handler
}

// Registry maps tool names to handlers. Registration happens at startup;
// invocation is concurrency-safe.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func New() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering the same name twice is an error.
func (r *Registry) Register(name, description string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = Tool{Name: name, Description: description, Handler: h}
	return nil
}

// MustRegister is Register that panics on duplicate names. Used during
// startup wiring where a duplicate is a programming error.
func (r *Registry) MustRegister(name, description string, h Handler) {
	if err := r.Register(name, description, h); err != nil {
		panic(err)
	}
}

// Invoke dispatches a tool call by name.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	return tool.Handler(ctx, args)
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tools returns all registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Decode unmarshals raw tool arguments into a typed request struct, mapping
// malformed input to a validation error.
func Decode(args json.RawMessage, into interface{}) error {
	if err := json.Unmarshal(args, into); err != nil {
		return InvalidArgsf("%v", err)
	}
	return nil
}
