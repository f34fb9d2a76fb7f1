package gsm

import (
	"context"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Client is the subset of the Secret Manager client used by Source.
// *secretmanager.Client satisfies it.
type Client interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Session is an authenticated client bound to a project.
type Session struct {
	ProjectID string
	Client    Client
}

// Connector establishes a Session. Implementations must wrap ErrNoCredentials
// when credentials or the project cannot be discovered, and return any other
// error for failures after discovery succeeded.
type Connector interface {
	Connect(ctx context.Context) (*Session, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (*Session, error)

func (f ConnectorFunc) Connect(ctx context.Context) (*Session, error) {
	return f(ctx)
}

// Environment variables naming the project, in the order they are consulted.
// Like google.auth.default, they take precedence over the project recorded in
// the credentials.
var projectEnvVars = []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"}

// ADCConnector connects using Application Default Credentials.
type ADCConnector struct {
	// ProjectID overrides both the environment and the credentials' project.
	ProjectID string
	// ClientOptions are appended after the credentials option.
	ClientOptions []option.ClientOption
}

func (c ADCConnector) Connect(ctx context.Context) (*Session, error) {
	creds, err := google.FindDefaultCredentials(ctx, secretmanager.DefaultAuthScopes()...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("find default credentials: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}

	project := resolveProject(c.ProjectID, creds.ProjectID)
	if project == "" {
		return nil, fmt.Errorf("%w: no project configured, set %s or use credentials that name one", ErrNoCredentials, projectEnvVars[0])
	}

	opts := append([]option.ClientOption{option.WithCredentials(creds)}, c.ClientOptions...)
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}

	return &Session{ProjectID: project, Client: client}, nil
}

// resolveProject picks the project: explicit, then environment, then credentials.
func resolveProject(explicit, fromCredentials string) string {
	if explicit != "" {
		return explicit
	}
	for _, key := range projectEnvVars {
		if project := strings.TrimSpace(os.Getenv(key)); project != "" {
			return project
		}
	}
	return fromCredentials
}

// SecretVersionName returns the resource name of the latest version of a secret.
func SecretVersionName(project, secret string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, secret)
}
