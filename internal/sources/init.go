package sources

import (
	"context"

	"github.com/christo-olivier/gsm-settings/internal/settings"
)

// Init supplies values passed in by the embedding program, typically from
// command-line flags.
type Init struct {
	values map[string]string
	opts   options
}

// NewInit creates an Init source over a copy of values.
func NewInit(values map[string]string, opts ...Option) *Init {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Init{values: copied, opts: newOptions(opts)}
}

func (s *Init) Name() string { return NameInit }

func (s *Init) Fetch(_ context.Context, reg *settings.Registry) (settings.Values, error) {
	return s.opts.collect(reg, s.values), nil
}
