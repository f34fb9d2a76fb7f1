package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/christo-olivier/gsm-settings/internal/settings"
)

// DefaultSecretsDir is where Docker mounts secrets.
const DefaultSecretsDir = "/run/secrets"

// SecretDir reads one field per file from a mounted secrets directory. The
// file name is the field name and the trimmed file content is the value.
type SecretDir struct {
	dir  string
	opts options
}

// NewSecretDir creates a secret directory source.
func NewSecretDir(dir string, opts ...Option) *SecretDir {
	if dir == "" {
		dir = DefaultSecretsDir
	}
	return &SecretDir{dir: dir, opts: newOptions(opts)}
}

func (s *SecretDir) Name() string { return NameSecretFile }

func (s *SecretDir) Fetch(_ context.Context, reg *settings.Registry) (settings.Values, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.opts.logger.Warn("secrets directory does not exist", zap.String("dir", s.dir))
			return settings.Values{}, nil
		}
		return nil, fmt.Errorf("stat %s: %w", s.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: secrets path %s is not a directory", ErrMalformed, s.dir)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read secrets directory %s: %w", s.dir, err)
	}

	pairs := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		// Kubernetes projects secrets through ..data and timestamped directories.
		if strings.HasPrefix(name, "..") {
			continue
		}
		if _, ok := s.opts.fieldFor(reg, name); !ok {
			continue
		}

		path := filepath.Join(s.dir, name)
		target, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.opts.logger.Debug("secret file target missing", zap.String("path", path))
				continue
			}
			return nil, fmt.Errorf("stat secret %s: %w", path, err)
		}
		if !target.Mode().IsRegular() {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read secret %s: %w", path, err)
		}
		pairs[name] = strings.TrimSpace(string(data))
	}

	return s.opts.collect(reg, pairs), nil
}
