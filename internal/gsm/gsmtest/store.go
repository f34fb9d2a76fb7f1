// Package gsmtest provides an in-memory Secret Manager for tests.
package gsmtest

import (
	"context"
	"fmt"
	"hash/crc32"
	"strings"
	"sync"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/christo-olivier/gsm-settings/internal/gsm"
)

// Store keeps secret versions in memory and guards access with a RWMutex. It
// implements gsm.Client.
type Store struct {
	mu       sync.RWMutex
	project  string
	versions map[string][][]byte
	denied   map[string]struct{}
	failures map[string]error
	corrupt  map[string]struct{}
	accessed []string
	closes   int
}

// NewStore creates an empty store for project.
func NewStore(project string) *Store {
	return &Store{
		project:  project,
		versions: make(map[string][][]byte),
		denied:   make(map[string]struct{}),
		failures: make(map[string]error),
		corrupt:  make(map[string]struct{}),
	}
}

// Put adds a new version of a secret. The most recent Put is "latest".
func (s *Store) Put(secret string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.versions[secret] = append(s.versions[secret], append([]byte(nil), value...))
}

// PutString is Put for text payloads.
func (s *Store) PutString(secret, value string) {
	s.Put(secret, []byte(value))
}

// Deny makes lookups of secret fail with PermissionDenied.
func (s *Store) Deny(secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.denied[secret] = struct{}{}
}

// Fail makes lookups of secret return err.
func (s *Store) Fail(secret string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[secret] = err
}

// Corrupt makes the checksum sent with secret's payload wrong.
func (s *Store) Corrupt(secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.corrupt[secret] = struct{}{}
}

// Accessed returns the version names requested so far, in order.
func (s *Store) Accessed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.accessed))
	copy(out, s.accessed)
	return out
}

// Closes reports how many times Close was called.
func (s *Store) Closes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.closes
}

func (s *Store) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := req.GetName()
	s.accessed = append(s.accessed, name)

	project, secret, version, ok := parseVersionName(name)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "invalid resource name %q", name)
	}
	if project != s.project {
		return nil, status.Errorf(codes.PermissionDenied, "permission denied on project %q", project)
	}
	if err, ok := s.failures[secret]; ok {
		return nil, err
	}
	if _, ok := s.denied[secret]; ok {
		return nil, status.Errorf(codes.PermissionDenied, "permission 'secretmanager.versions.access' denied for %q", name)
	}

	versions := s.versions[secret]
	if len(versions) == 0 {
		return nil, status.Errorf(codes.NotFound, "secret %q not found", secret)
	}

	idx := len(versions) - 1
	if version != "latest" {
		var n int
		if _, err := fmt.Sscanf(version, "%d", &n); err != nil || n < 1 || n > len(versions) {
			return nil, status.Errorf(codes.NotFound, "secret version %q not found", name)
		}
		idx = n - 1
	}

	data := versions[idx]
	checksum := int64(crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli)))
	if _, ok := s.corrupt[secret]; ok {
		checksum++
	}

	return &secretmanagerpb.AccessSecretVersionResponse{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/%d", project, secret, idx+1),
		Payload: &secretmanagerpb.SecretPayload{
			Data:       append([]byte(nil), data...),
			DataCrc32C: &checksum,
		},
	}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes++
	return nil
}

// Connector returns a connector that hands out this store as the client.
func (s *Store) Connector() gsm.Connector {
	return gsm.ConnectorFunc(func(context.Context) (*gsm.Session, error) {
		return &gsm.Session{ProjectID: s.project, Client: s}, nil
	})
}

// NoCredentials is a connector that behaves as if no ambient credentials exist.
func NoCredentials() gsm.Connector {
	return gsm.ConnectorFunc(func(context.Context) (*gsm.Session, error) {
		return nil, fmt.Errorf("%w: could not find default credentials", gsm.ErrNoCredentials)
	})
}

func parseVersionName(name string) (project, secret, version string, ok bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "secrets" || parts[4] != "versions" {
		return "", "", "", false
	}
	if parts[1] == "" || parts[3] == "" || parts[5] == "" {
		return "", "", "", false
	}
	return parts[1], parts[3], parts[5], true
}
