// Package settings resolves a statically declared set of string fields from an
// ordered chain of sources. The first source that yields a value for a field
// wins; later sources never overwrite it. Required fields left unresolved after
// every source has been consulted fail the whole pass.
package settings
