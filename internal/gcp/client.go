package gcp

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const scopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"

// Client wraps Application Default Credentials loaded via
// google.FindDefaultCredentials.
type Client struct {
	credentials *google.Credentials
	project     string
	scopes      []string
	ctx         context.Context
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithProject sets the GCP project ID.
func WithProject(project string) Option {
	return func(c *Client) {
		c.project = project
	}
}

// WithScopes overrides the OAuth scopes requested for the token.
// Defaults to cloud-platform.
func WithScopes(scopes ...string) Option {
	return func(c *Client) { c.scopes = scopes }
}

// NewClient creates a new GCP client using Application Default Credentials (ADC).
// ADC is resolved in this order:
//  1. GOOGLE_APPLICATION_CREDENTIALS environment variable (service account key file)
//  2. gcloud user credentials (~/.config/gcloud/application_default_credentials.json)
//  3. Metadata server (when running on GCE / GKE / Cloud Run)
//
// Returns an error with a helpful message if no credentials are found.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{ctx: ctx, scopes: []string{scopeCloudPlatform}}
	for _, opt := range opts {
		opt(c)
	}

	creds, err := google.FindDefaultCredentials(ctx, c.scopes...)
	if err != nil {
		return nil, fmt.Errorf(
			"no GCP application default credentials found "+
				"(run 'gcloud auth application-default login'): %w",
			err,
		)
	}

	c.credentials = creds

	// Prefer the project from credentials when caller did not set one
	if c.project == "" && creds.ProjectID != "" {
		c.project = creds.ProjectID
	}

	return c, nil
}

// Project returns the configured GCP project ID.
func (c *Client) Project() string {
	return c.project
}

// Credentials returns the underlying google.Credentials.
func (c *Client) Credentials() *google.Credentials {
	return c.credentials
}

// TokenSource returns the ADC token source. Tokens are cached until expiry.
func (c *Client) TokenSource() oauth2.TokenSource {
	return c.credentials.TokenSource
}

// Context returns the context associated with this client.
func (c *Client) Context() context.Context {
	return c.ctx
}
