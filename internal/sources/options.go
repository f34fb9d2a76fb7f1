package sources

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/christo-olivier/gsm-settings/internal/settings"
)

// Source names, also recorded as the origin of every value they supply.
const (
	NameInit       = "init"
	NameEnv        = "env"
	NameDotenv     = "dotenv"
	NameSecretFile = "secret_file"
	NameFile       = "file"
)

type options struct {
	prefix        string
	caseSensitive bool
	logger        *zap.Logger
}

// Option configures how a source maps its keys onto declared fields.
type Option func(*options)

// WithPrefix requires keys to carry the given prefix, e.g. "APP_".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithCaseSensitive makes key matching exact. Matching ignores case by default.
func WithCaseSensitive(enabled bool) Option {
	return func(o *options) {
		o.caseSensitive = enabled
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// fieldFor maps a raw key onto a declared field, honouring prefix and case policy.
func (o options) fieldFor(reg *settings.Registry, key string) (settings.Field, bool) {
	if o.prefix != "" {
		if o.caseSensitive {
			if !strings.HasPrefix(key, o.prefix) {
				return settings.Field{}, false
			}
		} else if len(key) < len(o.prefix) || !strings.EqualFold(key[:len(o.prefix)], o.prefix) {
			return settings.Field{}, false
		}
		key = key[len(o.prefix):]
	}
	if o.caseSensitive {
		return reg.Lookup(key)
	}
	return reg.LookupFold(key)
}

// collect picks values for declared fields out of raw key/value pairs. When
// several keys map to the same field, an exact match of the field name wins,
// then the lexically smallest key, so the outcome does not depend on map order.
func (o options) collect(reg *settings.Registry, pairs map[string]string) settings.Values {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := settings.Values{}
	exact := make(map[string]bool)
	for _, key := range keys {
		f, ok := o.fieldFor(reg, key)
		if !ok {
			continue
		}
		isExact := key == o.prefix+f.Name
		if _, seen := out[f.Name]; seen && (exact[f.Name] || !isExact) {
			continue
		}
		out[f.Name] = pairs[key]
		exact[f.Name] = isExact
	}
	return out
}
