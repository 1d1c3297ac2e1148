// Package graphclient provides the main entry point for creating Graph API clients.
package graphclient

import (
	"fmt"
	"strings"

	"github.com/noverloop/koala/internal/constants"
	"github.com/noverloop/koala/internal/transport"
	"github.com/noverloop/koala/pkg/graph"
)

// New creates a Graph API client from a config, wiring the default
// retryable HTTP transport underneath it.
func New(config *graph.Config) (*graph.Client, error) {
	if config == nil {
		return nil, graph.ErrConfigRequired
	}

	endpoint := normalizeEndpoint(config.APIEndpoint)

	httpTransport := transport.NewClient(endpoint, transportOptions(config)...)

	client, err := graph.NewClient(httpTransport, clientOptions(config)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NewWithToken creates a client for a single access token against the
// default endpoint.
func NewWithToken(accessToken string) (*graph.Client, error) {
	return New(&graph.Config{AccessToken: accessToken})
}

// NewWithAppSecret creates a client that signs every call with an
// appsecret_proof derived from the app secret.
func NewWithAppSecret(accessToken, appSecret string) (*graph.Client, error) {
	return New(&graph.Config{AccessToken: accessToken, AppSecret: appSecret})
}

// normalizeEndpoint trims trailing slashes and defaults the scheme and host.
func normalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return constants.DefaultAPIEndpoint
	}

	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

func transportOptions(config *graph.Config) []transport.Option {
	var opts []transport.Option

	if config.Logger != nil {
		opts = append(opts, transport.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, transport.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, transport.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := config.RetryMax
		if retryMax == 0 {
			retryMax = constants.DefaultRetryMax
		}

		waitMin := config.RetryWaitMin
		if waitMin == 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax == 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, transport.WithRetryConfig(retryMax, waitMin, waitMax))
	}

	return opts
}

func clientOptions(config *graph.Config) []graph.ClientOption {
	var opts []graph.ClientOption

	if config.AccessToken != "" {
		opts = append(opts, graph.WithAccessToken(config.AccessToken))
	}

	if config.AppSecret != "" {
		opts = append(opts, graph.WithAppSecret(config.AppSecret))
	}

	if config.APIVersion != "" {
		opts = append(opts, graph.WithVersion(config.APIVersion))
	}

	if config.Logger != nil {
		opts = append(opts, graph.WithClientLogger(config.Logger))
	}

	return opts
}
