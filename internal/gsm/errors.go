package gsm

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrNoCredentials is returned by a Connector when no ambient credentials or
	// project could be discovered.
	ErrNoCredentials = errors.New("no ambient google credentials")
	// ErrInvalidPayload is returned when a secret payload is not valid UTF-8.
	ErrInvalidPayload = errors.New("secret payload is not valid UTF-8")
	// ErrChecksumMismatch is returned when a payload fails its CRC32C check.
	ErrChecksumMismatch = errors.New("secret payload checksum mismatch")
)

// IsAbsent reports whether a lookup error means the secret should be treated
// as missing rather than as a failure. Only NotFound and PermissionDenied
// qualify.
func IsAbsent(err error) bool {
	switch status.Code(err) {
	case codes.NotFound, codes.PermissionDenied:
		return true
	default:
		return false
	}
}
