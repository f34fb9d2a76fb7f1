// Package application wires the resolution chain. It turns a config.Config
// into an ordered list of sources, runs a resolution pass against the
// application schema and prints the outcome, keeping the main package focused
// on CLI parsing and orchestration.
package application
