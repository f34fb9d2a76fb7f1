// Package sources provides the local settings.Source variants: in-process
// overrides, environment variables, dotenv files, mounted secret directories
// and flat YAML/TOML files.
//
// Every variant reports a missing value as absence. Structural problems such
// as an unparsable file are returned as errors and abort the resolution pass.
package sources
