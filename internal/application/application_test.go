package application

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/christo-olivier/gsm-settings/internal/config"
	"github.com/christo-olivier/gsm-settings/internal/gsm/gsmtest"
	"github.com/christo-olivier/gsm-settings/internal/settings"
)

func baseTestConfig(t *testing.T, kinds ...string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Sources:     kinds,
		EnvFile:     filepath.Join(dir, ".env"),
		SecretsDir:  filepath.Join(dir, "secrets"),
		LookupBurst: 1,
		LogLevel:    "debug",
		Overrides:   map[string]string{},
	}
}

func TestNewBuildsSourcesInOrder(t *testing.T) {
	cfg := baseTestConfig(t, config.KindRemoteSecretManager, config.KindFile, config.KindInit, config.KindEnv, config.KindDotenv, config.KindSecretFile)

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if diff := cmp.Diff(cfg.Sources, app.Sources()); diff != "" {
		t.Fatalf("source order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsUnknownSource(t *testing.T) {
	cfg := baseTestConfig(t, config.KindEnv, "vault")

	if _, err := New(cfg, zaptest.NewLogger(t)); !errors.Is(err, config.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestResolveFromEnv(t *testing.T) {
	t.Setenv("MY_SECRET_VALUE", "abc")
	cfg := baseTestConfig(t, config.KindEnv)

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resolved, err := app.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := config.Bind(resolved); got.MySecretValue != "abc" {
		t.Fatalf("expected abc, got %q", got.MySecretValue)
	}
}

func TestResolveInitBeatsEverything(t *testing.T) {
	t.Setenv("MY_SECRET_VALUE", "env")
	store := gsmtest.NewStore("p")
	store.PutString(config.FieldMySecretValue, "remote")

	cfg := baseTestConfig(t, config.DefaultSources()...)
	cfg.Overrides = map[string]string{"my_secret_value": "init"}

	app, err := New(cfg, zaptest.NewLogger(t), WithConnector(store.Connector()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resolved, err := app.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Value(config.FieldMySecretValue) != "init" || resolved.Origin(config.FieldMySecretValue) != config.KindInit {
		t.Fatalf("unexpected resolution %v", resolved.Origins())
	}
}

func TestResolveDotenvAndSecretFile(t *testing.T) {
	cfg := baseTestConfig(t, config.KindDotenv, config.KindSecretFile)
	if err := os.MkdirAll(cfg.SecretsDir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.SecretsDir, "my_secret_value"), []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resolved, err := app.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Value(config.FieldMySecretValue) != "from-file" {
		t.Fatalf("expected secret file value, got %q", resolved.Value(config.FieldMySecretValue))
	}

	if err := os.WriteFile(cfg.EnvFile, []byte("MY_SECRET_VALUE=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	resolved, err = app.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Value(config.FieldMySecretValue) != "from-dotenv" {
		t.Fatalf("expected dotenv to take precedence, got %q", resolved.Value(config.FieldMySecretValue))
	}
}

func TestResolveWithCustomRegistry(t *testing.T) {
	store := gsmtest.NewStore("p")
	store.PutString("api-token", "tok")

	reg := settings.MustRegistry(
		settings.Required("token").WithAlias("api-token"),
		settings.Optional("region").WithDefault("eu"),
	)
	cfg := baseTestConfig(t, config.KindRemoteSecretManager)

	app, err := New(cfg, zaptest.NewLogger(t), WithConnector(store.Connector()), WithRegistry(reg))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resolved, err := app.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := map[string]string{"token": "tok", "region": "eu"}
	if diff := cmp.Diff(want, resolved.Map()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestPrint(t *testing.T) {
	reg := settings.MustRegistry(settings.Required("my_secret_value"), settings.Optional("absent"))
	resolved, err := settings.Resolve(context.Background(), reg, settings.SourceFunc{
		SourceName: "env",
		Func: func(context.Context, *settings.Registry) (settings.Values, error) {
			return settings.Values{"my_secret_value": "abc"}, nil
		},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := Print(&buf, resolved, false); err != nil {
		t.Fatalf("Print returned error: %v", err)
	}
	if got, want := buf.String(), "my_secret_value: `abc`\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	buf.Reset()
	if err := Print(&buf, resolved, true); err != nil {
		t.Fatalf("Print returned error: %v", err)
	}
	if got, want := buf.String(), "my_secret_value: `abc` (env)\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
