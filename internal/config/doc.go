// Package config declares the application settings schema and loads the
// configuration of the resolution chain itself from multiple sources (YAML or
// TOML files, environment variables, CLI flags) with precedence: CLI flags >
// config file > environment variables > defaults.
package config
