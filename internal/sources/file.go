package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/christo-olivier/gsm-settings/internal/settings"
)

// File reads top-level scalar keys from a YAML or TOML document. The format is
// chosen by extension. Null values count as absent; nested tables and lists
// are ignored.
type File struct {
	path string
	opts options
}

// NewFile creates a file source for path.
func NewFile(path string, opts ...Option) *File {
	return &File{path: path, opts: newOptions(opts)}
}

func (s *File) Name() string { return NameFile }

func (s *File) Fetch(_ context.Context, reg *settings.Registry) (settings.Values, error) {
	if s.path == "" {
		return settings.Values{}, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.opts.logger.Debug("settings file not found", zap.String("path", s.path))
			return settings.Values{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	doc, err := decodeDocument(s.path, data)
	if err != nil {
		return nil, err
	}

	pairs := make(map[string]string, len(doc))
	for key, raw := range doc {
		value, ok := scalarString(raw)
		if !ok {
			s.opts.logger.Debug("skipping non-scalar settings key",
				zap.String("path", s.path),
				zap.String("key", key),
			)
			continue
		}
		pairs[key] = value
	}

	return s.opts.collect(reg, pairs), nil
}

func decodeDocument(path string, data []byte) (map[string]any, error) {
	doc := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: parse YAML %s: %v", ErrMalformed, path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: parse TOML %s: %v", ErrMalformed, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported settings file extension %q", ErrMalformed, ext)
	}
	return doc, nil
}

func scalarString(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}
