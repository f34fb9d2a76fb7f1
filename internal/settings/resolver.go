package settings

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Resolver runs resolution passes over a chain of sources.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a Resolver. A nil logger disables logging.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// Resolve consults every source in order and keeps, for each field, the first
// value produced. It fails with a *MissingRequiredFieldError if a required field
// is still unresolved afterwards, or with a *SourceError as soon as a source
// fails fatally. No partial result is returned on failure.
func (r *Resolver) Resolve(ctx context.Context, reg *Registry, sources ...Source) (*Resolved, error) {
	fields := reg.Describe()
	result := newResolved(len(fields))
	unresolved := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		unresolved[f.Name] = struct{}{}
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		values, err := src.Fetch(ctx, reg)
		if err != nil {
			if errors.Is(err, ErrSourceDegraded) {
				r.logger.Debug("source degraded, skipping",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				continue
			}
			return nil, &SourceError{Source: src.Name(), Err: err}
		}

		for name, value := range values {
			if _, ok := reg.Lookup(name); !ok {
				r.logger.Debug("ignoring undeclared field",
					zap.String("source", src.Name()),
					zap.String("field", name),
				)
				continue
			}
			if _, pending := unresolved[name]; !pending {
				continue
			}
			result.commit(name, value, src.Name())
			delete(unresolved, name)
			r.logger.Debug("field resolved",
				zap.String("source", src.Name()),
				zap.String("field", name),
			)
		}
	}

	var missing []string
	for _, f := range fields {
		if _, pending := unresolved[f.Name]; !pending {
			result.order = append(result.order, f.Name)
			continue
		}
		if def, ok := f.Default(); ok {
			result.commit(f.Name, def, OriginDefault)
			result.order = append(result.order, f.Name)
			continue
		}
		if f.Required {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredFieldError{Fields: missing}
	}

	return result, nil
}

// Resolve runs a single pass with a resolver that does not log.
func Resolve(ctx context.Context, reg *Registry, sources ...Source) (*Resolved, error) {
	return NewResolver(nil).Resolve(ctx, reg, sources...)
}
