package config

import (
	"context"
	"testing"

	"github.com/christo-olivier/gsm-settings/internal/settings"
)

func TestSchemaDeclaresRequiredSecret(t *testing.T) {
	fields := Schema().Describe()
	if len(fields) != 1 {
		t.Fatalf("expected one field, got %d", len(fields))
	}
	f := fields[0]
	if f.Name != FieldMySecretValue || !f.Required || f.Alias != "" {
		t.Fatalf("unexpected field declaration %+v", f)
	}
}

func TestBind(t *testing.T) {
	src := settings.SourceFunc{
		SourceName: "inline",
		Func: func(context.Context, *settings.Registry) (settings.Values, error) {
			return settings.Values{FieldMySecretValue: "abc"}, nil
		},
	}

	resolved, err := settings.Resolve(context.Background(), Schema(), src)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got := Bind(resolved); got.MySecretValue != "abc" {
		t.Fatalf("expected bound value abc, got %q", got.MySecretValue)
	}
}
