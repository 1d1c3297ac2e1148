package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingBatchResponse is stored for a sub-call whose slot in the combined
// response was empty even though the call did not opt out of a response.
var ErrMissingBatchResponse = errors.New("no response returned for batch call")

// BatchResult is the outcome of one registered call after batch execution.
// Results are returned in registration order, one per call.
type BatchResult struct {
	// Name is the operation name given at registration, if any.
	Name string

	// Success reports whether the sub-call resolved without error.
	Success bool

	// Data is the resolved result: a decoded mapping, a *Page for
	// collection-shaped sub-responses, or whatever the call's post-process
	// transform produced.
	Data interface{}

	// Error carries the sub-call's *APIError or *TransportError. A failing
	// sub-call never aborts its siblings.
	Error error
}

type batchEntry struct {
	call Call
	name string
	omit *bool
}

// Batch collects calls and sends them as one physical request. A scope is
// created by Client.NewBatch, populated by registration methods, and consumed
// exactly once by Execute; it must not be reused afterwards. Scopes are
// independent: two scopes are never merged, and a scope handle makes the
// open-batch state explicit instead of a client-wide flag.
//
// Sub-calls may reference the results of earlier named operations with the
// service's JSONPath syntax (e.g. "{result=create-post:$.id}") in any string
// argument; such values pass through serialization untouched.
type Batch struct {
	client   *Client
	entries  []batchEntry
	executed bool
}

// NewBatch opens a new batch scope on the client.
func (c *Client) NewBatch() *Batch {
	return &Batch{client: c}
}

// Add registers an arbitrary call.
func (b *Batch) Add(call Call) *Batch {
	b.entries = append(b.entries, batchEntry{call: call})

	return b
}

// AddNamed registers a call under a name other sub-calls can depend on. Named
// operations keep their response in the combined result.
func (b *Batch) AddNamed(name string, call Call) *Batch {
	keep := false
	b.entries = append(b.entries, batchEntry{call: call, name: name, omit: &keep})

	return b
}

// AddOmitted registers a named call whose successful response is dropped from
// the combined result; the service represents the dropped slot as null.
func (b *Batch) AddOmitted(name string, call Call) *Batch {
	omit := true
	b.entries = append(b.entries, batchEntry{call: call, name: name, omit: &omit})

	return b
}

// GetObject registers an object fetch.
func (b *Batch) GetObject(id string, params Params) *Batch {
	return b.Add(Call{Target: id, Verb: VerbGet, Args: params})
}

// GetConnection registers an edge fetch.
func (b *Batch) GetConnection(id, connection string, params Params) *Batch {
	return b.Add(Call{Target: id, Connection: connection, Verb: VerbGet, Args: params})
}

// PutConnection registers an edge write.
func (b *Batch) PutConnection(id, connection string, params Params) *Batch {
	return b.Add(Call{Target: id, Connection: connection, Verb: VerbPost, Args: params})
}

// DeleteObject registers an object deletion.
func (b *Batch) DeleteObject(id string) *Batch {
	return b.Add(Call{Target: id, Verb: VerbDelete})
}

// Len returns the number of registered calls.
func (b *Batch) Len() int {
	return len(b.entries)
}

// batchOperation is the wire description of one sub-call inside the combined
// request.
type batchOperation struct {
	Method                string `json:"method"`
	RelativeURL           string `json:"relative_url"`
	Body                  string `json:"body,omitempty"`
	Name                  string `json:"name,omitempty"`
	AttachedFiles         string `json:"attached_files,omitempty"`
	OmitResponseOnSuccess *bool  `json:"omit_response_on_success,omitempty"`
}

// batchSubResponse is the wire shape of one demultiplexed sub-result.
type batchSubResponse struct {
	Code    int `json:"code"`
	Headers []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"headers"`
	Body string `json:"body"`
}

// Execute serializes the registered calls, issues exactly one transport call,
// and demultiplexes the combined response back into one BatchResult per call,
// in registration order. Each sub-response is classified, page-wrapped, and
// post-processed independently; a failing sub-call occupies its slot as an
// error while siblings still resolve. If the aggregate call itself fails,
// every slot carries the same error and Execute returns it: a *TransportError
// when the transport fails, or an *APIError when the service rejects the
// combined request outright.
func (b *Batch) Execute(ctx context.Context, opts *RequestOptions) ([]BatchResult, error) {
	if b.executed {
		return nil, ErrBatchConsumed
	}

	b.executed = true

	if len(b.entries) == 0 {
		return nil, ErrEmptyBatch
	}

	token := b.client.accessToken
	if opts != nil && opts.AccessToken != "" {
		token = opts.AccessToken
	}

	// The combined request is a POST; the usual credential guard applies
	// before any network activity.
	if token == "" {
		return nil, ErrMissingAccessToken
	}

	params, err := b.serialize(token)
	if err != nil {
		return nil, err
	}

	req := &Request{Method: string(VerbPost), Path: "", Params: params}
	if opts != nil {
		req.Headers = opts.Headers
	}

	resp, terr := b.client.transport.Do(ctx, req)
	if terr != nil {
		return b.failAll(&TransportError{Op: "batch request", Err: terr})
	}

	return b.demultiplex(resp)
}

// failAll fills every slot with the same aggregate failure and returns it,
// so callers ranging over the results see the error in registration order too.
func (b *Batch) failAll(failure error) ([]BatchResult, error) {
	results := make([]BatchResult, len(b.entries))
	for i, entry := range b.entries {
		results[i] = BatchResult{Name: entry.name, Error: failure}
	}

	return results, failure
}

// serialize folds every pending call into the combined request description.
func (b *Batch) serialize(token string) (Params, error) {
	operations := make([]batchOperation, 0, len(b.entries))
	files := Params{}

	fileIndex := 0

	for _, entry := range b.entries {
		operation, entryFiles, err := b.serializeEntry(entry, &fileIndex)
		if err != nil {
			return nil, err
		}

		for name, file := range entryFiles {
			files[name] = file
		}

		operations = append(operations, operation)
	}

	encoded, err := json.Marshal(operations)
	if err != nil {
		return nil, fmt.Errorf("encoding batch description: %w", err)
	}

	params := Params{
		"batch":        string(encoded),
		"access_token": token,
	}

	if b.client.appSecret != "" {
		params["appsecret_proof"] = signAppSecretProof(token, b.client.appSecret)
	}

	for name, file := range files {
		params[name] = file
	}

	return params, nil
}

func (b *Batch) serializeEntry(entry batchEntry, fileIndex *int) (batchOperation, map[string]*UploadIO, error) {
	call := entry.call

	path := call.Target
	if call.Connection != "" {
		path += "/" + call.Connection
	}

	operation := batchOperation{
		Method:                string(call.Verb),
		RelativeURL:           b.client.versionedPath(path),
		Name:                  entry.name,
		OmitResponseOnSuccess: entry.omit,
	}

	args := cloneParams(call.Args)
	if call.Options != nil && call.Options.AccessToken != "" {
		args["access_token"] = call.Options.AccessToken
	}

	values, uploads, err := args.Encode()
	if err != nil {
		return batchOperation{}, nil, err
	}

	attached := map[string]*UploadIO{}

	if len(uploads) > 0 {
		names := ""

		for _, file := range uploads {
			name := fmt.Sprintf("file%d", *fileIndex)
			*fileIndex++

			attached[name] = file

			if names != "" {
				names += ","
			}

			names += name
		}

		operation.AttachedFiles = names
	}

	if encoded := values.Encode(); encoded != "" {
		if call.Verb == VerbPost {
			operation.Body = encoded
		} else {
			operation.RelativeURL += "?" + encoded
		}
	}

	return operation, attached, nil
}

// demultiplex routes each sub-response through the same classification,
// page-wrapping, and post-processing pipeline a direct dispatch uses.
func (b *Batch) demultiplex(resp *Response) ([]BatchResult, error) {
	// The service answers a plain error payload instead of the result array
	// when it rejects the combined request outright, e.g. for an expired
	// top-level token. That is a remote error, not a decode failure.
	if body, err := decodeBody(resp.Body); err == nil {
		if apiErr := classifyResponse(body); apiErr != nil {
			return b.failAll(apiErr)
		}
	}

	var subResponses []*batchSubResponse
	if err := json.Unmarshal(resp.Body, &subResponses); err != nil {
		return nil, &TransportError{Op: "batch decode", Err: err}
	}

	results := make([]BatchResult, len(b.entries))

	for i, entry := range b.entries {
		results[i].Name = entry.name

		var sub *batchSubResponse
		if i < len(subResponses) {
			sub = subResponses[i]
		}

		if sub == nil {
			// The service returns null for operations that omitted their
			// response on success; anything else missing is a fault.
			if entry.omit != nil && *entry.omit {
				results[i].Success = true
			} else {
				results[i].Error = ErrMissingBatchResponse
			}

			continue
		}

		headers := http.Header{}
		for _, header := range sub.Headers {
			headers.Add(header.Name, header.Value)
		}

		data, err := b.client.resolveResponse(entry.call, &Response{
			StatusCode: sub.Code,
			Headers:    headers,
			Body:       []byte(sub.Body),
		})

		results[i].Success = err == nil
		results[i].Data = data
		results[i].Error = err
	}

	return results, nil
}
