package gsm

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/christo-olivier/gsm-settings/internal/settings"
)

func TestIsAbsent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "not found", err: status.Error(codes.NotFound, "missing"), want: true},
		{name: "permission denied", err: status.Error(codes.PermissionDenied, "denied"), want: true},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", status.Error(codes.NotFound, "missing")), want: true},
		{name: "unauthenticated", err: status.Error(codes.Unauthenticated, "expired"), want: false},
		{name: "unavailable", err: status.Error(codes.Unavailable, "down"), want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAbsent(tc.err); got != tc.want {
				t.Fatalf("IsAbsent(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestSecretVersionName(t *testing.T) {
	got := SecretVersionName("p", "my_secret_value")
	if want := "projects/p/secrets/my_secret_value/versions/latest"; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNewTokenBucketLimiter(t *testing.T) {
	if l := newTokenBucketLimiter(0, 5); l != nil {
		t.Fatalf("expected pacing to be disabled for zero rate")
	}

	l := newTokenBucketLimiter(100, 0)
	if l == nil {
		t.Fatalf("expected limiter instance")
	}
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("expected first wait to succeed: %v", err)
	}
}

func TestNewSourceDefaultsToADC(t *testing.T) {
	s := NewSource(WithProject("pinned"))
	adc, ok := s.connector.(ADCConnector)
	if !ok {
		t.Fatalf("expected ADC connector, got %T", s.connector)
	}
	if adc.ProjectID != "pinned" {
		t.Fatalf("expected pinned project, got %q", adc.ProjectID)
	}
}

func TestResolveProjectPrecedence(t *testing.T) {
	tests := []struct {
		name            string
		explicit        string
		env             map[string]string
		fromCredentials string
		want            string
	}{
		{
			name:            "explicit wins",
			explicit:        "pinned",
			env:             map[string]string{"GOOGLE_CLOUD_PROJECT": "env"},
			fromCredentials: "creds",
			want:            "pinned",
		},
		{
			name:            "environment beats credentials",
			env:             map[string]string{"GOOGLE_CLOUD_PROJECT": "env"},
			fromCredentials: "creds",
			want:            "env",
		},
		{
			name:            "legacy variable",
			env:             map[string]string{"GCLOUD_PROJECT": "legacy"},
			fromCredentials: "creds",
			want:            "legacy",
		},
		{
			name:            "primary variable beats legacy",
			env:             map[string]string{"GOOGLE_CLOUD_PROJECT": "env", "GCLOUD_PROJECT": "legacy"},
			fromCredentials: "creds",
			want:            "env",
		},
		{
			name:            "credentials as last resort",
			fromCredentials: "creds",
			want:            "creds",
		},
		{
			name: "nothing configured",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, key := range projectEnvVars {
				t.Setenv(key, tc.env[key])
			}
			if got := resolveProject(tc.explicit, tc.fromCredentials); got != tc.want {
				t.Fatalf("resolveProject() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestADCConnectorCredentialDiscovery(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing-credentials.json")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", missing)

	t.Run("unavailable credentials degrade", func(t *testing.T) {
		_, err := ADCConnector{}.Connect(context.Background())
		if !errors.Is(err, ErrNoCredentials) {
			t.Fatalf("expected ErrNoCredentials, got %v", err)
		}
	})

	t.Run("cancellation is not reported as missing credentials", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ADCConnector{}.Connect(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if errors.Is(err, ErrNoCredentials) {
			t.Fatalf("cancellation must not be reported as ErrNoCredentials")
		}

		_, err = NewSource().Fetch(ctx, settings.MustRegistry(settings.Required("token")))
		if errors.Is(err, settings.ErrSourceDegraded) || !errors.Is(err, context.Canceled) {
			t.Fatalf("expected fatal cancellation from the source, got %v", err)
		}
	})
}
