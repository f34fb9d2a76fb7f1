package sources

import (
	"context"
	"os"
	"strings"

	"github.com/christo-olivier/gsm-settings/internal/settings"
)

// Env reads fields from the process environment. A field named my_value is
// matched by MY_VALUE, my_value or any other casing unless case sensitivity is
// enabled.
type Env struct {
	opts    options
	environ func() []string
}

// NewEnv creates an environment source.
func NewEnv(opts ...Option) *Env {
	return &Env{opts: newOptions(opts), environ: os.Environ}
}

func (s *Env) Name() string { return NameEnv }

func (s *Env) Fetch(_ context.Context, reg *settings.Registry) (settings.Values, error) {
	pairs := make(map[string]string)
	for _, kv := range s.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		pairs[key] = value
	}
	return s.opts.collect(reg, pairs), nil
}
