package settings

// OriginDefault is the origin recorded for fields filled from their declared default.
const OriginDefault = "default"

// Resolved holds the outcome of one resolution pass. It is never modified
// after Resolve returns it.
type Resolved struct {
	order   []string
	values  map[string]string
	origins map[string]string
}

func newResolved(capacity int) *Resolved {
	return &Resolved{
		order:   make([]string, 0, capacity),
		values:  make(map[string]string, capacity),
		origins: make(map[string]string, capacity),
	}
}

func (r *Resolved) commit(name, value, origin string) {
	r.values[name] = value
	r.origins[name] = origin
}

// Get returns the value for a field and whether it was resolved.
func (r *Resolved) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the value for a field, or the empty string.
func (r *Resolved) Value(name string) string {
	return r.values[name]
}

// Origin names the source that supplied a field.
func (r *Resolved) Origin(name string) string {
	return r.origins[name]
}

// Fields lists resolved field names in declaration order.
func (r *Resolved) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Map returns a copy of the resolved values.
func (r *Resolved) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Origins returns a copy of the field-to-source mapping.
func (r *Resolved) Origins() map[string]string {
	out := make(map[string]string, len(r.origins))
	for k, v := range r.origins {
		out[k] = v
	}
	return out
}
