package sources

import "errors"

// ErrMalformed is returned when a source's backing file exists but cannot be used.
var ErrMalformed = errors.New("malformed source")
