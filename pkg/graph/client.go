package graph

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noverloop/koala/internal/constants"
)

// Client issues typed verbs against objects and connections of the remote
// graph. The zero value is not usable; construct one with NewClient, or with
// graphclient.New to get the default transport wired in.
//
// A Client is safe for concurrent use as long as its Transport is: all
// per-call state lives in the Call value, and the token and version fields
// are read-only after construction.
type Client struct {
	transport   Transport
	accessToken string
	appSecret   string
	version     string
	logger      Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAccessToken sets the credential used for authenticated calls.
func WithAccessToken(token string) ClientOption {
	return func(c *Client) {
		c.accessToken = token
	}
}

// WithAppSecret enables appsecret_proof request signing for every
// authenticated call.
func WithAppSecret(secret string) ClientOption {
	return func(c *Client) {
		c.appSecret = secret
	}
}

// WithVersion overrides the API version segment, e.g. "v19.0". An empty
// version disables the prefix entirely.
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		c.version = version
	}
}

// WithClientLogger sets the structured logger used by the client.
func WithClientLogger(logger Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client on top of an existing transport.
func NewClient(transport Transport, opts ...ClientOption) (*Client, error) {
	if transport == nil {
		return nil, ErrTransportRequired
	}

	client := &Client{
		transport: transport,
		version:   constants.DefaultAPIVersion,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// AccessToken returns the client credential. Empty means unauthenticated.
func (c *Client) AccessToken() string {
	return c.accessToken
}

// GetObject fetches a single object by id or path.
func (c *Client) GetObject(ctx context.Context, id string, params Params) (map[string]interface{}, error) {
	result, err := c.Do(ctx, Call{Target: id, Verb: VerbGet, Args: params})
	if err != nil {
		return nil, err
	}

	object, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: object response for %q was %T", ErrInvalidArguments, id, result)
	}

	return object, nil
}

// GetObjects fetches several objects in one round trip and returns them keyed
// by the requested ids.
func (c *Client) GetObjects(ctx context.Context, ids []string, params Params) (map[string]map[string]interface{}, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one id is required", ErrInvalidArguments)
	}

	args := cloneParams(params)
	args["ids"] = joinIDs(ids)

	call := Call{
		Target:      "",
		Verb:        VerbGet,
		Args:        args,
		PostProcess: keyObjectsByID,
	}

	result, err := c.Do(ctx, call)
	if err != nil {
		return nil, err
	}

	objects, ok := result.(map[string]map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: multi-object response was %T", ErrInvalidArguments, result)
	}

	return objects, nil
}

// GetConnection fetches one page of the named edge of an object.
func (c *Client) GetConnection(ctx context.Context, id, connection string, params Params) (*Page, error) {
	result, err := c.Do(ctx, Call{Target: id, Connection: connection, Verb: VerbGet, Args: params})
	if err != nil {
		return nil, err
	}

	page, ok := result.(*Page)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotACollection, id, connection)
	}

	return page, nil
}

// PutConnection writes to the named edge of an object and returns the decoded
// response, typically a created-object id mapping.
func (c *Client) PutConnection(ctx context.Context, id, connection string, params Params) (map[string]interface{}, error) {
	result, err := c.Do(ctx, Call{Target: id, Connection: connection, Verb: VerbPost, Args: params})
	if err != nil {
		return nil, err
	}

	return asObject(result), nil
}

// PutObject writes to an object's edge. It is a naming alias for
// PutConnection kept for parity with the classic verb surface.
func (c *Client) PutObject(ctx context.Context, id, connection string, params Params) (map[string]interface{}, error) {
	return c.PutConnection(ctx, id, connection, params)
}

// DeleteObject deletes an object by id.
func (c *Client) DeleteObject(ctx context.Context, id string) error {
	_, err := c.Do(ctx, Call{Target: id, Verb: VerbDelete})

	return err
}

// DeleteConnection removes an edge of an object.
func (c *Client) DeleteConnection(ctx context.Context, id, connection string, params Params) error {
	_, err := c.Do(ctx, Call{Target: id, Connection: connection, Verb: VerbDelete, Args: params})

	return err
}

// GetPicture resolves the picture edge of an object to its location URL. The
// service answers with a redirect, so the call reads the response headers
// rather than a body.
func (c *Client) GetPicture(ctx context.Context, id string, params Params) (string, error) {
	call := Call{
		Target:      id,
		Connection:  "picture",
		Verb:        VerbGet,
		Args:        params,
		Options:     &RequestOptions{Component: ComponentHeaders},
		PostProcess: extractLocation,
	}

	result, err := c.Do(ctx, call)
	if err != nil {
		return "", err
	}

	location, ok := result.(string)
	if !ok || location == "" {
		return "", fmt.Errorf("%w: picture response for %q carried no location", ErrInvalidArguments, id)
	}

	return location, nil
}

// PutPicture uploads a photo. Accepted positional shapes, resolved by
// normalizeMediaArgs:
//
//	PutPicture(ctx, source)
//	PutPicture(ctx, source, contentType)
//	PutPicture(ctx, source, contentType, params)
//	PutPicture(ctx, source, contentType, params, targetID)
//	PutPicture(ctx, url)
//	PutPicture(ctx, url, params)
//	PutPicture(ctx, url, params, targetID)
//
// where source is a *UploadIO, io.Reader, *os.File, []byte, or file path, and
// url is an absolute http(s) URL string. The final optional position may be a
// *RequestOptions in every shape.
func (c *Client) PutPicture(ctx context.Context, args ...interface{}) (map[string]interface{}, error) {
	return c.putMedia(ctx, "photos", args, nil)
}

// PutVideo uploads a video. It accepts the same positional shapes as
// PutPicture.
func (c *Client) PutVideo(ctx context.Context, args ...interface{}) (map[string]interface{}, error) {
	return c.putMedia(ctx, "videos", args, Params{"video": true})
}

func (c *Client) putMedia(ctx context.Context, connection string, raw []interface{}, extra Params) (map[string]interface{}, error) {
	target, params, opts, err := normalizeMediaArgs(raw)
	if err != nil {
		return nil, err
	}

	for key, value := range extra {
		params[key] = value
	}

	result, err := c.Do(ctx, Call{
		Target:     target,
		Connection: connection,
		Verb:       VerbPost,
		Args:       params,
		Options:    opts,
	})
	if err != nil {
		return nil, err
	}

	return asObject(result), nil
}

// PutWallPost publishes a message (with optional structured attachment) to a
// profile's feed. An empty profileID targets "me".
func (c *Client) PutWallPost(ctx context.Context, message string, attachment Params, profileID string) (map[string]interface{}, error) {
	if profileID == "" {
		profileID = "me"
	}

	args := cloneParams(attachment)
	if message != "" {
		args["message"] = message
	}

	return c.PutConnection(ctx, profileID, "feed", args)
}

// PutComment writes a comment on an object.
func (c *Client) PutComment(ctx context.Context, objectID, message string) (map[string]interface{}, error) {
	return c.PutConnection(ctx, objectID, "comments", Params{"message": message})
}

// PutLike likes an object.
func (c *Client) PutLike(ctx context.Context, objectID string) (map[string]interface{}, error) {
	return c.PutConnection(ctx, objectID, "likes", nil)
}

// DeleteLike removes a like from an object.
func (c *Client) DeleteLike(ctx context.Context, objectID string) error {
	return c.DeleteConnection(ctx, objectID, "likes", nil)
}

// Search queries the graph search endpoint. objectType filters the result
// kind (e.g. "page", "place") and may be empty.
func (c *Client) Search(ctx context.Context, query, objectType string, params Params) (*Page, error) {
	args := cloneParams(params)
	args["q"] = query

	if objectType != "" {
		args["type"] = objectType
	}

	result, err := c.Do(ctx, Call{Target: "search", Verb: VerbGet, Args: args})
	if err != nil {
		return nil, err
	}

	page, ok := result.(*Page)
	if !ok {
		return nil, fmt.Errorf("%w: search %q", ErrNotACollection, query)
	}

	return page, nil
}

// keyObjectsByID reshapes a multi-object response into a name-keyed mapping
// of objects. It runs as a PostProcess transform, after page wrapping.
func keyObjectsByID(result interface{}) (interface{}, error) {
	object, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: multi-object response was %T", ErrInvalidArguments, result)
	}

	keyed := make(map[string]map[string]interface{}, len(object))

	for id, value := range object {
		entry, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: entry %q was %T", ErrInvalidArguments, id, value)
		}

		keyed[id] = entry
	}

	return keyed, nil
}

// extractLocation pulls the redirect target out of a headers-component result.
func extractLocation(result interface{}) (interface{}, error) {
	headers, ok := result.(http.Header)
	if !ok {
		return nil, fmt.Errorf("%w: expected headers, got %T", ErrInvalidArguments, result)
	}

	return headers.Get("Location"), nil
}

func asObject(result interface{}) map[string]interface{} {
	if object, ok := result.(map[string]interface{}); ok {
		return object
	}

	// Some write endpoints answer with a bare scalar ("true"). Preserve it
	// under a stable key instead of dropping it.
	return map[string]interface{}{"success": result}
}

func cloneParams(params Params) Params {
	clone := make(Params, len(params)+2)
	for key, value := range params {
		clone[key] = value
	}

	return clone
}

func joinIDs(ids []string) string {
	joined := ids[0]
	for _, id := range ids[1:] {
		joined += "," + id
	}

	return joined
}
