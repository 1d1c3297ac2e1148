package graph

import (
	"context"
	"net/http"
	"time"
)

// Verb is the HTTP method of a graph call.
type Verb string

// Graph API verbs. The API only speaks GET, POST, and DELETE.
const (
	VerbGet    Verb = "GET"
	VerbPost   Verb = "POST"
	VerbDelete Verb = "DELETE"
)

// Params carries the arguments of a graph call. Scalar values travel as
// form/query parameters; maps and slices are embedded as JSON strings by the
// transport; *UploadIO values become multipart file fields.
type Params map[string]interface{}

// Component selects which part of the HTTP response a call resolves to.
type Component string

const (
	// ComponentBody resolves to the decoded JSON body (the default).
	ComponentBody Component = "body"

	// ComponentHeaders resolves to the raw response headers. Used for
	// location-style endpoints such as object pictures.
	ComponentHeaders Component = "headers"

	// ComponentStatus resolves to the HTTP status code.
	ComponentStatus Component = "status"
)

// RequestOptions configures a single call beyond its verb and arguments.
type RequestOptions struct {
	// Headers are added to the outgoing HTTP request.
	Headers map[string]string

	// Component selects the response part the caller wants. Empty means
	// ComponentBody.
	Component Component

	// AccessToken overrides the client token for this call only.
	AccessToken string
}

// Call is one logical graph operation. It is immutable once dispatched.
type Call struct {
	// Target is an object id or path. It may also be an absolute http(s)
	// URL, in which case it is requested verbatim (used for paging links).
	Target string

	// Connection, when set, addresses an edge of Target ("target/connection").
	Connection string

	// Verb is the HTTP method.
	Verb Verb

	// Args are the call arguments.
	Args Params

	// Options configures headers, response component, and token override.
	Options *RequestOptions

	// PostProcess, when set, transforms the final result. It runs after
	// error classification and page wrapping, so it always sees the final
	// shape.
	PostProcess func(result interface{}) (interface{}, error)
}

// Request is the wire-level description handed to a Transport.
type Request struct {
	Method  string
	Path    string
	Params  Params
	Headers map[string]string
}

// Response is the raw transport result. It is consumed exactly once per
// dispatched call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Transport performs a single HTTP exchange. Implementations own connection
// handling, retries, timeouts, and cancellation; the core propagates any
// failure as a *TransportError. The default implementation lives in
// internal/transport.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a graph client via
// graphclient.New.
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Retry behavior of the default transport can be tuned via
// RetryMax/RetryWaitMin/RetryWaitMax; the dispatch layer itself never retries.
type Config struct {
	// APIEndpoint is the base URL of the graph service. graphclient.New
	// normalizes this value by trimming a trailing slash and adding
	// "https://" if no scheme is present. Empty selects the default
	// endpoint.
	APIEndpoint string

	// AccessToken authenticates calls. Required for POST and DELETE verbs.
	AccessToken string

	// AppSecret, when set, signs every authenticated call with an
	// appsecret_proof parameter (HMAC-SHA256 of the access token).
	AppSecret string

	// APIVersion is the version segment prefixed to call paths, e.g.
	// "v19.0". Empty selects the default version.
	APIVersion string

	// HTTPTimeout: optional default HTTP timeout for the default transport.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of transport retries for transient failures
	// (>=500, 429, and connection errors). If 0, a sensible default is used.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool
	// Logger: optional structured logger used by the transport layer.
	Logger Logger
	// UserAgent overrides the default User-Agent header sent by the client.
	UserAgent string
}
