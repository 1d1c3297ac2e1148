// Package transport provides the default HTTP transport for the graph
// client, built on retryablehttp. It owns connection handling, transient
// retries, and timeouts; classification of response bodies stays with the
// dispatch core.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/noverloop/koala/internal/constants"
	"github.com/noverloop/koala/pkg/graph"
)

// ErrUploadNotAllowed is returned when a call carries upload sources on a
// verb that cannot send a body.
var ErrUploadNotAllowed = errors.New("upload sources require a POST call")

const defaultUserAgent = "koala-go"

// Client is the default graph.Transport. It sends GET and DELETE arguments
// as query parameters and POST arguments as a form body, switching to
// multipart/form-data when upload sources are present. Redirects are never
// followed: location-style endpoints answer with a redirect the core reads
// as data.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	userAgent  string
	logger     graph.Logger
	debug      bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a logger for the transport.
func WithLogger(logger graph.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig tunes retry behavior for transient failures (>=500, 429,
// and connection errors).
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying standard HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient = httpClient
		c.httpClient.HTTPClient.CheckRedirect = neverFollowRedirects
	}
}

// NewClient creates a transport rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil

	// Exhausted retries hand back the final response so the dispatch core
	// can classify whatever error payload it carries.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.HTTPClient.CheckRedirect = neverFollowRedirects

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: retryClient,
		userAgent:  defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do implements graph.Transport.
func (c *Client) Do(ctx context.Context, req *graph.Request) (*graph.Response, error) {
	target, err := c.resolveURL(req.Path)
	if err != nil {
		return nil, err
	}

	values, files, err := req.Params.Encode()
	if err != nil {
		return nil, err
	}

	var (
		body        io.Reader
		contentType string
	)

	if req.Method == http.MethodPost {
		body, contentType, err = buildPostBody(values, files)
		if err != nil {
			return nil, err
		}
	} else {
		if len(files) > 0 {
			return nil, ErrUploadNotAllowed
		}

		target = mergeQuery(target, values)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    target,
		})
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": resp.StatusCode,
			"bytes":  len(payload),
		})
	}

	return &graph.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       payload,
	}, nil
}

// resolveURL roots relative paths at the base URL; absolute URLs (paging
// links) pass through verbatim.
func (c *Client) resolveURL(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}

	if c.baseURL == "" {
		return "", fmt.Errorf("building request: %w", errNoBaseURL)
	}

	return c.baseURL + "/" + strings.TrimPrefix(path, "/"), nil
}

var errNoBaseURL = errors.New("no base URL configured for relative path")

// mergeQuery appends values to a URL that may already carry a query string.
func mergeQuery(target string, values url.Values) string {
	if len(values) == 0 {
		return target
	}

	separator := "?"
	if strings.Contains(target, "?") {
		separator = "&"
	}

	return target + separator + values.Encode()
}

// buildPostBody renders form values (and upload sources, when present) into
// the request body. Uploads force multipart/form-data; everything else is a
// plain urlencoded form.
func buildPostBody(values url.Values, files map[string]*graph.UploadIO) (io.Reader, string, error) {
	if len(files) == 0 {
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", nil
	}

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for key := range values {
		if err := writer.WriteField(key, values.Get(key)); err != nil {
			return nil, "", fmt.Errorf("writing form field %q: %w", key, err)
		}
	}

	for field, file := range files {
		part, err := createFilePart(writer, field, file)
		if err != nil {
			return nil, "", err
		}

		source, err := file.Open()
		if err != nil {
			return nil, "", err
		}

		_, err = io.Copy(part, source)

		_ = source.Close()

		if err != nil {
			return nil, "", fmt.Errorf("streaming upload field %q: %w", field, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// createFilePart opens a multipart section for an upload, honoring its
// content-type hint when one was given.
func createFilePart(writer *multipart.Writer, field string, file *graph.UploadIO) (io.Writer, error) {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Filename()))

	if file.ContentType() != "" {
		header.Set("Content-Type", file.ContentType())
	} else {
		header.Set("Content-Type", "application/octet-stream")
	}

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating upload field %q: %w", field, err)
	}

	return part, nil
}

func neverFollowRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
