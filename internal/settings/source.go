package settings

import "context"

// Values is a partial mapping from canonical field name to raw value. A field
// the source has no value for is simply absent.
type Values map[string]string

// Source is one link in a resolution chain.
//
// Fetch receives the full registry and may return values for any field,
// including ones already resolved by earlier sources. Ordinary "not found"
// conditions must be reported as absence, not as errors. An error wrapping
// ErrSourceDegraded marks the source as unusable for this pass; any other error
// aborts the pass.
type Source interface {
	Name() string
	Fetch(ctx context.Context, reg *Registry) (Values, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc struct {
	SourceName string
	Func       func(ctx context.Context, reg *Registry) (Values, error)
}

func (s SourceFunc) Name() string { return s.SourceName }

func (s SourceFunc) Fetch(ctx context.Context, reg *Registry) (Values, error) {
	return s.Func(ctx, reg)
}
