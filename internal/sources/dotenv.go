package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/christo-olivier/gsm-settings/internal/settings"
)

// DefaultDotenvPath is the file read when no path is configured.
const DefaultDotenvPath = ".env"

// Dotenv reads KEY=VALUE pairs from a UTF-8 dotenv file without touching the
// process environment.
type Dotenv struct {
	path string
	opts options
}

// NewDotenv creates a dotenv source for path.
func NewDotenv(path string, opts ...Option) *Dotenv {
	if path == "" {
		path = DefaultDotenvPath
	}
	return &Dotenv{path: path, opts: newOptions(opts)}
}

func (s *Dotenv) Name() string { return NameDotenv }

func (s *Dotenv) Fetch(_ context.Context, reg *settings.Registry) (settings.Values, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.opts.logger.Debug("dotenv file not found", zap.String("path", s.path))
			return settings.Values{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrMalformed, s.path)
	}

	if bytes.IndexByte(data, dollarPlaceholder) >= 0 {
		return nil, fmt.Errorf("%w: %s contains a NUL byte", ErrMalformed, s.path)
	}

	pairs, err := godotenv.Parse(bytes.NewReader(protectDollars(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrMalformed, s.path, err)
	}
	for k, v := range pairs {
		pairs[k] = strings.ReplaceAll(v, string(dollarPlaceholder), "$")
	}

	return s.opts.collect(reg, pairs), nil
}

// dollarPlaceholder stands in for a literal '$' while godotenv parses the file.
const dollarPlaceholder byte = 0

// protectDollars hides every '$' not followed by '{' from godotenv's variable
// expansion, so only ${VAR} is interpolated and $WORD stays literal.
func protectDollars(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i, c := range data {
		if c == '$' && (i+1 == len(data) || data[i+1] != '{') {
			c = dollarPlaceholder
		}
		out = append(out, c)
	}
	return out
}
