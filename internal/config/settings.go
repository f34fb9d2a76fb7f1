package config

import "github.com/christo-olivier/gsm-settings/internal/settings"

// FieldMySecretValue is the canonical name of the demo secret.
const FieldMySecretValue = "my_secret_value"

var schema = settings.MustRegistry(
	settings.Required(FieldMySecretValue),
)

// Schema returns the statically declared settings registry.
func Schema() *settings.Registry {
	return schema
}

// Settings is the typed view of a resolved pass.
type Settings struct {
	MySecretValue string
}

// Bind copies resolved values into Settings.
func Bind(r *settings.Resolved) Settings {
	return Settings{
		MySecretValue: r.Value(FieldMySecretValue),
	}
}
