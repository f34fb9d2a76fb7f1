package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/christo-olivier/gsm-settings/internal/gsm"
	"github.com/christo-olivier/gsm-settings/internal/sources"
)

// Source kinds accepted in Config.Sources.
const (
	KindInit                = sources.NameInit
	KindEnv                 = sources.NameEnv
	KindDotenv              = sources.NameDotenv
	KindSecretFile          = sources.NameSecretFile
	KindFile                = sources.NameFile
	KindRemoteSecretManager = gsm.Name
)

const (
	defaultLogLevel    = "info"
	defaultLookupBurst = 1
)

// ErrUnknownSource is returned for a source kind that is not recognised.
var ErrUnknownSource = errors.New("unknown source kind")

var knownKinds = map[string]struct{}{
	KindInit:                {},
	KindEnv:                 {},
	KindDotenv:              {},
	KindSecretFile:          {},
	KindFile:                {},
	KindRemoteSecretManager: {},
}

// Config aggregates the resolution chain configuration resolved from multiple sources.
// Precedence: CLI flags > config file > Environment variables > Defaults
type Config struct {
	Sources       []string
	EnvFile       string
	EnvPrefix     string
	CaseSensitive bool
	SecretsDir    string
	SettingsFile  string
	GCPProject    string
	LookupRPS     float64
	LookupBurst   int
	LogLevel      string
	// Overrides feed the init source.
	Overrides map[string]string
}

// fileConfig represents the configuration file structure, in YAML or TOML.
type fileConfig struct {
	Sources       []string    `yaml:"sources" toml:"sources"`
	EnvFile       string      `yaml:"env_file" toml:"env_file"`
	EnvPrefix     string      `yaml:"env_prefix" toml:"env_prefix"`
	CaseSensitive *bool       `yaml:"case_sensitive" toml:"case_sensitive"`
	SecretsDir    string      `yaml:"secrets_dir" toml:"secrets_dir"`
	SettingsFile  string      `yaml:"settings_file" toml:"settings_file"`
	GCPProject    string      `yaml:"gcp_project" toml:"gcp_project"`
	LogLevel      string      `yaml:"log_level" toml:"log_level"`
	Lookup        fileLookups `yaml:"lookup" toml:"lookup"`
}

// fileLookups represents the remote lookup pacing section.
type fileLookups struct {
	RPS   *float64 `yaml:"rps" toml:"rps"`
	Burst *int     `yaml:"burst" toml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile    string
	Sources       *string
	EnvFile       *string
	EnvPrefix     *string
	CaseSensitive *bool
	SecretsDir    *string
	SettingsFile  *string
	GCPProject    *string
	LookupRPS     *float64
	LookupBurst   *int
	LogLevel      *string
	Values        map[string]string
}

// DefaultSources is the chain used when none is configured: in-process
// overrides, then the environment, the dotenv file, mounted secrets and
// finally Secret Manager.
func DefaultSources() []string {
	return []string{KindInit, KindEnv, KindDotenv, KindSecretFile, KindRemoteSecretManager}
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > config file > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		fileCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load config file: %w", err)
		}
		if err := applyFileConfig(&cfg, fileCfg); err != nil {
			return Config{}, err
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Sources:     DefaultSources(),
		EnvFile:     sources.DefaultDotenvPath,
		SecretsDir:  sources.DefaultSecretsDir,
		LookupBurst: defaultLookupBurst,
		LogLevel:    defaultLogLevel,
		Overrides:   map[string]string{},
	}
}

// loadFromFile loads configuration from a YAML or TOML file.
func loadFromFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}

	return &fileCfg, nil
}

// applyFileConfig applies file configuration to the Config struct.
func applyFileConfig(cfg *Config, fileCfg *fileConfig) error {
	if len(fileCfg.Sources) > 0 {
		kinds, err := normalizeSources(fileCfg.Sources)
		if err != nil {
			return err
		}
		cfg.Sources = kinds
	}

	if fileCfg.EnvFile != "" {
		cfg.EnvFile = fileCfg.EnvFile
	}

	if fileCfg.EnvPrefix != "" {
		cfg.EnvPrefix = fileCfg.EnvPrefix
	}

	if fileCfg.CaseSensitive != nil {
		cfg.CaseSensitive = *fileCfg.CaseSensitive
	}

	if fileCfg.SecretsDir != "" {
		cfg.SecretsDir = fileCfg.SecretsDir
	}

	if fileCfg.SettingsFile != "" {
		cfg.SettingsFile = fileCfg.SettingsFile
	}

	if fileCfg.GCPProject != "" {
		cfg.GCPProject = fileCfg.GCPProject
	}

	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}

	if fileCfg.Lookup.RPS != nil {
		cfg.LookupRPS = *fileCfg.Lookup.RPS
	}

	if fileCfg.Lookup.Burst != nil {
		cfg.LookupBurst = *fileCfg.Lookup.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration. Malformed
// numeric or boolean values are ignored.
func applyEnvConfig(cfg *Config) error {
	if raw := strings.TrimSpace(os.Getenv("SETTINGS_SOURCES")); raw != "" {
		kinds, err := parseSources(raw)
		if err != nil {
			return fmt.Errorf("SETTINGS_SOURCES: %w", err)
		}
		cfg.Sources = kinds
	}

	if path := strings.TrimSpace(os.Getenv("SETTINGS_ENV_FILE")); path != "" {
		cfg.EnvFile = path
	}

	if prefix := strings.TrimSpace(os.Getenv("SETTINGS_ENV_PREFIX")); prefix != "" {
		cfg.EnvPrefix = prefix
	}

	if raw := strings.TrimSpace(os.Getenv("SETTINGS_CASE_SENSITIVE")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.CaseSensitive = value
		}
	}

	if dir := strings.TrimSpace(os.Getenv("SETTINGS_SECRETS_DIR")); dir != "" {
		cfg.SecretsDir = dir
	}

	if path := strings.TrimSpace(os.Getenv("SETTINGS_FILE")); path != "" {
		cfg.SettingsFile = path
	}

	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"} {
		if project := strings.TrimSpace(os.Getenv(key)); project != "" {
			cfg.GCPProject = project
			break
		}
	}

	if rps := strings.TrimSpace(os.Getenv("SETTINGS_LOOKUP_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.LookupRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("SETTINGS_LOOKUP_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.LookupBurst = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Sources != nil && *overrides.Sources != "" {
		kinds, err := parseSources(*overrides.Sources)
		if err != nil {
			return fmt.Errorf("parse sources: %w", err)
		}
		cfg.Sources = kinds
	}

	if overrides.EnvFile != nil && *overrides.EnvFile != "" {
		cfg.EnvFile = *overrides.EnvFile
	}

	if overrides.EnvPrefix != nil && *overrides.EnvPrefix != "" {
		cfg.EnvPrefix = *overrides.EnvPrefix
	}

	if overrides.CaseSensitive != nil {
		cfg.CaseSensitive = *overrides.CaseSensitive
	}

	if overrides.SecretsDir != nil && *overrides.SecretsDir != "" {
		cfg.SecretsDir = *overrides.SecretsDir
	}

	if overrides.SettingsFile != nil && *overrides.SettingsFile != "" {
		cfg.SettingsFile = *overrides.SettingsFile
	}

	if overrides.GCPProject != nil && *overrides.GCPProject != "" {
		cfg.GCPProject = *overrides.GCPProject
	}

	if overrides.LookupRPS != nil && *overrides.LookupRPS >= 0 {
		cfg.LookupRPS = *overrides.LookupRPS
	}

	if overrides.LookupBurst != nil && *overrides.LookupBurst >= 0 {
		cfg.LookupBurst = *overrides.LookupBurst
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	for k, v := range overrides.Values {
		cfg.Overrides[k] = v
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	if cfg.LookupRPS < 0 {
		return fmt.Errorf("lookup rps must be >= 0")
	}
	if cfg.LookupBurst < 0 {
		return fmt.Errorf("lookup burst must be >= 0")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return nil
}

// parseSources parses a comma-separated list of source kinds.
func parseSources(raw string) ([]string, error) {
	return normalizeSources(strings.Split(raw, ","))
}

// normalizeSources lower-cases and validates source kinds. Each kind may
// appear once; order is preserved.
func normalizeSources(raw []string) ([]string, error) {
	kinds := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, part := range raw {
		kind := strings.ToLower(strings.TrimSpace(part))
		if kind == "" {
			continue
		}
		if _, ok := knownKinds[kind]; !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownSource, kind)
		}
		if _, dup := seen[kind]; dup {
			return nil, fmt.Errorf("source %q listed more than once", kind)
		}
		seen[kind] = struct{}{}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no sources provided")
	}
	return kinds, nil
}
