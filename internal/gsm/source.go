package gsm

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"unicode/utf8"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/christo-olivier/gsm-settings/internal/settings"
)

// Name is the source name recorded as the origin of remote values.
const Name = "remote_secret_manager"

var crc32c = crc32.MakeTable(crc32.Castagnoli)

// Source resolves fields from Google Cloud Secret Manager.
type Source struct {
	connector Connector
	project   string
	limiter   limiter
	logger    *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithConnector replaces the Application Default Credentials connector.
func WithConnector(c Connector) Option {
	return func(s *Source) {
		if c != nil {
			s.connector = c
		}
	}
}

// WithProject pins the project secrets are read from, overriding the one
// discovered with the credentials.
func WithProject(project string) Option {
	return func(s *Source) {
		s.project = project
	}
}

// WithRateLimit paces secret lookups. A non-positive rate disables pacing.
func WithRateLimit(ratePerSecond float64, burst int) Option {
	return func(s *Source) {
		s.limiter = newTokenBucketLimiter(ratePerSecond, burst)
	}
}

// WithLogger sets the logger used for per-field diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSource creates a Secret Manager source.
func NewSource(opts ...Option) *Source {
	s := &Source{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.connector == nil {
		s.connector = ADCConnector{ProjectID: s.project}
	}
	return s
}

func (s *Source) Name() string { return Name }

// Fetch connects, looks up every declared field in declaration order and
// closes the client. Connection failures caused by missing credentials are
// reported as settings.ErrSourceDegraded.
func (s *Source) Fetch(ctx context.Context, reg *settings.Registry) (_ settings.Values, err error) {
	session, err := s.connector.Connect(ctx)
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			return nil, fmt.Errorf("%w: %w", settings.ErrSourceDegraded, err)
		}
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, session.Client.Close())
	}()
	if s.project != "" {
		session.ProjectID = s.project
	}

	values := settings.Values{}
	for _, f := range reg.Describe() {
		value, ok, err := s.lookup(ctx, session, f.SecretKey())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		if ok {
			values[f.Name] = value
		}
	}
	return values, nil
}

func (s *Source) lookup(ctx context.Context, session *Session, key string) (string, bool, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", false, err
		}
	}

	name := SecretVersionName(session.ProjectID, key)
	resp, err := session.Client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		if IsAbsent(err) {
			s.logger.Debug("secret unavailable",
				zap.String("secret", key),
				zap.Error(err),
			)
			return "", false, nil
		}
		return "", false, fmt.Errorf("access %s: %w", name, err)
	}

	payload := resp.GetPayload()
	data := payload.GetData()
	if payload.DataCrc32C != nil && int64(crc32.Checksum(data, crc32c)) != payload.GetDataCrc32C() {
		return "", false, fmt.Errorf("%w: %s", ErrChecksumMismatch, name)
	}
	if !utf8.Valid(data) {
		return "", false, fmt.Errorf("%w: %s", ErrInvalidPayload, name)
	}

	return string(data), true, nil
}
