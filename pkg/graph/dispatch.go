package graph

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Do dispatches a single call: it builds the wire request, invokes the
// transport, classifies the decoded body, wraps pageable results, and applies
// the call's post-processing transform last. Every error surfaces to the
// caller; nothing is swallowed.
func (c *Client) Do(ctx context.Context, call Call) (interface{}, error) {
	if call.Verb == "" {
		call.Verb = VerbGet
	}

	// Writes and deletes require a credential. This is a local guard; it
	// fails before any network activity.
	if call.Verb == VerbPost || call.Verb == VerbDelete {
		if c.effectiveToken(call) == "" {
			return nil, ErrMissingAccessToken
		}
	}

	req := c.buildRequest(call)

	if c.logger != nil {
		c.logger.Debug("graph call", map[string]interface{}{
			"verb": string(call.Verb),
			"path": req.Path,
		})
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}

	return c.resolveResponse(call, resp)
}

// resolveResponse classifies a raw response and shapes the final result for
// one call. Batch execution reuses it for each demultiplexed sub-response.
func (c *Client) resolveResponse(call Call, resp *Response) (interface{}, error) {
	component := ComponentBody
	if call.Options != nil && call.Options.Component != "" {
		component = call.Options.Component
	}

	var result interface{}

	switch component {
	case ComponentHeaders, ComponentStatus:
		// The caller wants a response part other than the body, but an
		// error payload still takes precedence when one is present.
		if body, err := decodeBody(resp.Body); err == nil {
			if apiErr := classifyResponse(body); apiErr != nil {
				return nil, apiErr
			}
		}

		if component == ComponentStatus {
			result = resp.StatusCode
		} else {
			result = resp.Headers
		}

	default:
		body, err := decodeBody(resp.Body)
		if err != nil {
			return nil, &TransportError{Op: "decode", Err: err}
		}

		if apiErr := classifyResponse(body); apiErr != nil {
			return nil, apiErr
		}

		result = c.wrapPage(body, call)
	}

	if call.PostProcess != nil {
		return call.PostProcess(result)
	}

	return result, nil
}

// buildRequest turns a call into its wire-level description. Absolute-URL
// targets (paging links) are passed through untouched: they already carry
// their query string, so no version prefix, credential, or proof is added.
func (c *Client) buildRequest(call Call) *Request {
	path := call.Target
	if call.Connection != "" {
		path = strings.TrimSuffix(path, "/") + "/" + call.Connection
	}

	req := &Request{
		Method: string(call.Verb),
		Params: call.Args,
	}

	if call.Options != nil {
		req.Headers = call.Options.Headers
	}

	if isAbsoluteURL(path) {
		req.Path = path

		return req
	}

	req.Path = c.versionedPath(path)

	if token := c.effectiveToken(call); token != "" {
		args := cloneParams(call.Args)
		if _, ok := args["access_token"]; !ok {
			args["access_token"] = token
		}

		if c.appSecret != "" {
			args["appsecret_proof"] = signAppSecretProof(token, c.appSecret)
		}

		req.Params = args
	}

	return req
}

func (c *Client) versionedPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if c.version == "" {
		return path
	}

	if path == "" {
		return c.version
	}

	return c.version + "/" + path
}

func (c *Client) effectiveToken(call Call) string {
	if call.Options != nil && call.Options.AccessToken != "" {
		return call.Options.AccessToken
	}

	return c.accessToken
}

// decodeBody parses a JSON response body. An empty body decodes to nil, which
// some delete endpoints produce.
func decodeBody(raw []byte) (interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var body interface{}
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return nil, err
	}

	return body, nil
}

// signAppSecretProof computes the request signature the service expects when
// an app secret is configured: HMAC-SHA256 of the access token keyed by the
// secret, hex encoded.
func signAppSecretProof(token, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))

	return hex.EncodeToString(mac.Sum(nil))
}

func isAbsoluteURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
