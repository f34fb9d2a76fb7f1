package application

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/christo-olivier/gsm-settings/internal/config"
	"github.com/christo-olivier/gsm-settings/internal/gsm"
	"github.com/christo-olivier/gsm-settings/internal/settings"
	"github.com/christo-olivier/gsm-settings/internal/sources"
)

// App encapsulates the schema, the source chain and the resolver.
type App struct {
	registry *settings.Registry
	sources  []settings.Source
	resolver *settings.Resolver
	logger   *zap.Logger
}

type options struct {
	connector gsm.Connector
	registry  *settings.Registry
}

// Option customises application wiring.
type Option func(*options)

// WithConnector replaces the Secret Manager connector, e.g. with a fake.
func WithConnector(c gsm.Connector) Option {
	return func(o *options) {
		o.connector = c
	}
}

// WithRegistry resolves a different schema than config.Schema.
func WithRegistry(reg *settings.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{registry: config.Schema()}
	for _, opt := range opts {
		opt(&o)
	}

	srcs, err := BuildSources(cfg, logger, o.connector)
	if err != nil {
		return nil, fmt.Errorf("failed to build sources: %w", err)
	}

	return &App{
		registry: o.registry,
		sources:  srcs,
		resolver: settings.NewResolver(logger),
		logger:   logger,
	}, nil
}

// BuildSources constructs the source chain in the configured order.
func BuildSources(cfg config.Config, logger *zap.Logger, connector gsm.Connector) ([]settings.Source, error) {
	matching := []sources.Option{
		sources.WithPrefix(cfg.EnvPrefix),
		sources.WithCaseSensitive(cfg.CaseSensitive),
		sources.WithLogger(logger),
	}

	srcs := make([]settings.Source, 0, len(cfg.Sources))
	for _, kind := range cfg.Sources {
		switch kind {
		case config.KindInit:
			srcs = append(srcs, sources.NewInit(cfg.Overrides, sources.WithCaseSensitive(cfg.CaseSensitive)))
		case config.KindEnv:
			srcs = append(srcs, sources.NewEnv(matching...))
		case config.KindDotenv:
			srcs = append(srcs, sources.NewDotenv(cfg.EnvFile, matching...))
		case config.KindSecretFile:
			srcs = append(srcs, sources.NewSecretDir(cfg.SecretsDir,
				sources.WithCaseSensitive(cfg.CaseSensitive),
				sources.WithLogger(logger),
			))
		case config.KindFile:
			srcs = append(srcs, sources.NewFile(cfg.SettingsFile,
				sources.WithCaseSensitive(cfg.CaseSensitive),
				sources.WithLogger(logger),
			))
		case config.KindRemoteSecretManager:
			srcs = append(srcs, gsm.NewSource(
				gsm.WithConnector(connector),
				gsm.WithProject(cfg.GCPProject),
				gsm.WithRateLimit(cfg.LookupRPS, cfg.LookupBurst),
				gsm.WithLogger(logger),
			))
		default:
			return nil, fmt.Errorf("%w %q", config.ErrUnknownSource, kind)
		}
	}
	return srcs, nil
}

// Resolve runs one resolution pass.
func (a *App) Resolve(ctx context.Context) (*settings.Resolved, error) {
	resolved, err := a.resolver.Resolve(ctx, a.registry, a.sources...)
	if err != nil {
		return nil, err
	}
	for _, name := range resolved.Fields() {
		a.logger.Debug("setting resolved",
			zap.String("field", name),
			zap.String("source", resolved.Origin(name)),
		)
	}
	return resolved, nil
}

// Sources returns the names of the configured sources in priority order.
func (a *App) Sources() []string {
	names := make([]string, 0, len(a.sources))
	for _, s := range a.sources {
		names = append(names, s.Name())
	}
	return names
}

// Print writes one "field: `value`" line per resolved field, optionally
// followed by the source that supplied it.
func Print(w io.Writer, resolved *settings.Resolved, showOrigin bool) error {
	for _, name := range resolved.Fields() {
		var err error
		if showOrigin {
			_, err = fmt.Fprintf(w, "%s: `%s` (%s)\n", name, resolved.Value(name), resolved.Origin(name))
		} else {
			_, err = fmt.Fprintf(w, "%s: `%s`\n", name, resolved.Value(name))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
