package runtime

import (
	"sort"
	"strings"
)

// Store is an immutable mapping from variable names to values. Updates
// produce a new Store; a Store handed out is never modified afterwards.
type Store struct {
	values map[string]Value
}

// NewStore copies the provided bindings into a fresh store.
func NewStore(bindings map[string]Value) Store {
	values := make(map[string]Value, len(bindings))
	for k, v := range bindings {
		values[k] = v
	}
	return Store{values: values}
}

// Get retrieves a binding.
func (s Store) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// With returns a copy of the store with name bound to value.
func (s Store) With(name string, value Value) Store {
	values := make(map[string]Value, len(s.values)+1)
	for k, v := range s.values {
		values[k] = v
	}
	values[name] = value
	return Store{values: values}
}

// Len reports the number of bindings.
func (s Store) Len() int { return len(s.values) }

// Snapshot returns a copy of the current bindings.
func (s Store) Snapshot() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both stores hold the same bindings.
func (s Store) Equal(other Store) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for k, v := range s.values {
		ov, ok := other.values[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// String renders the store as "{x: IntVal 1, y: BoolVal True}" with sorted keys.
func (s Store) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(Show(s.values[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// Context is the mutable state threaded through one evaluation: the current
// store snapshot and the output log. It is owned by a single run.
type Context struct {
	store Store
	log   []string
}

// NewContext starts a run from the given store with an empty log.
func NewContext(initial Store) *Context {
	if initial.values == nil {
		initial = NewStore(nil)
	}
	return &Context{store: initial}
}

// Read looks up a binding in the current store.
func (c *Context) Read(name string) (Value, bool) {
	return c.store.Get(name)
}

// Write replaces the store with one that binds name to value.
func (c *Context) Write(name string, value Value) {
	c.store = c.store.With(name, value)
}

// Append adds a line to the end of the log.
func (c *Context) Append(line string) {
	c.log = append(c.log, line)
}

// Store returns the current store snapshot.
func (c *Context) Store() Store { return c.store }

// Lines returns a copy of the log entries in emission order.
func (c *Context) Lines() []string {
	out := make([]string, len(c.log))
	copy(out, c.log)
	return out
}

// RenderLog joins the log entries with newlines, terminating the last entry.
func (c *Context) RenderLog() string {
	return RenderLog(c.log)
}

// RenderLog joins lines with a trailing newline after each entry.
func RenderLog(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
