package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/christo-olivier/gsm-settings/internal/application"
	"github.com/christo-olivier/gsm-settings/internal/config"
	"github.com/christo-olivier/gsm-settings/internal/gsm"
	"github.com/christo-olivier/gsm-settings/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, nil)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run resolves the settings once and prints them. A non-nil connector
// replaces ambient Secret Manager credentials.
func run(ctx context.Context, args []string, stdout io.Writer, connector gsm.Connector) error {
	kingpinApp := kingpin.New("settings", "Resolve layered settings from overrides, environment, dotenv, secret files and Google Secret Manager")
	configFile := kingpinApp.Flag("config", "Path to YAML or TOML configuration file for the source chain").String()
	sourcesStr := kingpinApp.Flag("sources", "Comma-separated source kinds in priority order").String()
	envFile := kingpinApp.Flag("env-file", "Path to the dotenv file").String()
	envPrefix := kingpinApp.Flag("env-prefix", "Prefix required on environment and dotenv keys").String()
	var caseSensitiveSet bool
	caseSensitive := kingpinApp.Flag("case-sensitive", "Match keys case-sensitively (--no-case-sensitive to disable)").IsSetByUser(&caseSensitiveSet).Bool()
	secretsDir := kingpinApp.Flag("secrets-dir", "Directory of mounted secret files").String()
	settingsFile := kingpinApp.Flag("settings-file", "YAML or TOML file read by the file source").String()
	gcpProject := kingpinApp.Flag("gcp-project", "Google Cloud project holding the secrets").String()
	lookupRPS := kingpinApp.Flag("lookup-rps", "Secret Manager lookups per second (set 0 to disable pacing)").Default("-1").Float64()
	lookupBurst := kingpinApp.Flag("lookup-burst", "Burst size for Secret Manager lookups").Default("-1").Int()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	values := kingpinApp.Flag("set", "Override a field, e.g. --set my_secret_value=abc (repeatable)").PlaceHolder("FIELD=VALUE").StringMap()
	showOrigin := kingpinApp.Flag("show-origin", "Print the source that supplied each value").Bool()

	if _, err := kingpinApp.Parse(args); err != nil {
		return err
	}

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		Values:     *values,
	}

	if *sourcesStr != "" {
		overrides.Sources = sourcesStr
	}

	if *envFile != "" {
		overrides.EnvFile = envFile
	}

	if *envPrefix != "" {
		overrides.EnvPrefix = envPrefix
	}

	if caseSensitiveSet {
		overrides.CaseSensitive = caseSensitive
	}

	if *secretsDir != "" {
		overrides.SecretsDir = secretsDir
	}

	if *settingsFile != "" {
		overrides.SettingsFile = settingsFile
	}

	if *gcpProject != "" {
		overrides.GCPProject = gcpProject
	}

	if *lookupRPS >= 0 {
		overrides.LookupRPS = lookupRPS
	}

	if *lookupBurst >= 0 {
		overrides.LookupBurst = lookupBurst
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger, application.WithConnector(connector))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	logger.Debug("resolving settings", zap.Strings("sources", app.Sources()))

	resolved, err := app.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve settings: %w", err)
	}

	return application.Print(stdout, resolved, *showOrigin)
}
