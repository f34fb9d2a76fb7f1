package settings

import (
	"fmt"
	"strings"
)

// Registry is the ordered, immutable schema of a settings object.
type Registry struct {
	fields []Field
	index  map[string]int
}

// NewRegistry validates the declarations and freezes them in the given order.
// Names must be non-empty and unique regardless of case.
func NewRegistry(fields ...Field) (*Registry, error) {
	r := &Registry{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty field name", ErrInvalidRegistry)
		}
		if name != f.Name {
			return nil, fmt.Errorf("%w: field name %q has surrounding whitespace", ErrInvalidRegistry, f.Name)
		}
		key := strings.ToLower(name)
		if _, dup := r.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidRegistry, name)
		}
		r.index[key] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on invalid declarations. It is
// intended for package-level schema variables.
func MustRegistry(fields ...Field) *Registry {
	r, err := NewRegistry(fields...)
	if err != nil {
		panic(err)
	}
	return r
}

// Describe returns the fields in declaration order.
func (r *Registry) Describe() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len reports the number of declared fields.
func (r *Registry) Len() int {
	return len(r.fields)
}

// Lookup finds a field by exact canonical name.
func (r *Registry) Lookup(name string) (Field, bool) {
	i, ok := r.index[strings.ToLower(name)]
	if !ok || r.fields[i].Name != name {
		return Field{}, false
	}
	return r.fields[i], true
}

// LookupFold finds a field by name ignoring case.
func (r *Registry) LookupFold(name string) (Field, bool) {
	i, ok := r.index[strings.ToLower(name)]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}
