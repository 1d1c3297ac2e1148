//go:build integration
// +build integration

// Package integration exercises the full client stack (facade, dispatch,
// pagination, batch, uploads) against a local fake graph service.
package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeGraph is an httptest-backed stand-in for the remote graph service. It
// serves a small object store with paging-aware connections and a batch
// endpoint that demultiplexes against the same handlers.
type fakeGraph struct {
	t *testing.T

	mu      sync.Mutex
	objects map[string]map[string]interface{}
	edges   map[string][]map[string]interface{}
	nextID  int

	server *httptest.Server
}

func newFakeGraph(t *testing.T) *fakeGraph {
	t.Helper()

	fake := &fakeGraph{
		t: t,
		objects: map[string]map[string]interface{}{
			"me": {"id": "100", "name": "Integration User"},
		},
		edges:  map[string][]map[string]interface{}{},
		nextID: 1000,
	}

	fake.server = httptest.NewServer(http.HandlerFunc(fake.handle))
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeGraph) URL() string {
	return f.server.URL
}

// seedEdge installs items on an edge, exposed later in pages of two.
func (f *fakeGraph) seedEdge(owner, edge string, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := owner + "/" + edge

	for i := 0; i < count; i++ {
		f.edges[key] = append(f.edges[key], map[string]interface{}{
			"id": fmt.Sprintf("%s-%d", edge, i),
		})
	}
}

func (f *fakeGraph) handle(writer http.ResponseWriter, request *http.Request) {
	if request.URL.Query().Get("access_token") == "" && request.Method != http.MethodPost {
		writeError(writer, http.StatusBadRequest, "An access token is required", "OAuthException", 104)

		return
	}

	_ = request.ParseForm()

	if request.Method == http.MethodPost && request.FormValue("batch") != "" {
		f.handleBatch(writer, request)

		return
	}

	f.handleSingle(writer, request, request.URL.Path, request.URL.Query().Get("after"), request.Form)
}

// handleSingle dispatches one logical call; the batch handler reuses it via
// recorded sub-writers.
func (f *fakeGraph) handleSingle(writer http.ResponseWriter, request *http.Request, path, after string, form map[string][]string) {
	// Strip the version segment.
	trimmed := path
	if len(trimmed) > 0 && trimmed[0] == '/' {
		trimmed = trimmed[1:]
	}

	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] == '/' {
			trimmed = trimmed[i+1:]

			break
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if items, ok := f.edges[trimmed]; ok && request.Method == http.MethodGet {
		f.writePage(writer, trimmed, items, after)

		return
	}

	switch request.Method {
	case http.MethodGet:
		if object, ok := f.objects[trimmed]; ok {
			writeJSON(writer, http.StatusOK, object)

			return
		}

		writeError(writer, http.StatusNotFound, "Unsupported get request", "GraphMethodException", 100)

	case http.MethodPost:
		f.nextID++
		id := fmt.Sprintf("%d", f.nextID)

		created := map[string]interface{}{"id": id}
		for key, values := range form {
			if key == "access_token" || key == "appsecret_proof" {
				continue
			}

			created[key] = values[0]
		}

		f.objects[id] = created
		writeJSON(writer, http.StatusOK, map[string]interface{}{"id": id})

	case http.MethodDelete:
		delete(f.objects, trimmed)
		writeJSON(writer, http.StatusOK, true)

	default:
		writeError(writer, http.StatusBadRequest, "Unsupported method", "GraphMethodException", 100)
	}
}

// writePage serves two items at a time with cursor-style paging.
func (f *fakeGraph) writePage(writer http.ResponseWriter, edge string, items []map[string]interface{}, after string) {
	const pageSize = 2

	start := 0

	if after != "" {
		_, _ = fmt.Sscanf(after, "cursor-%d", &start)
	}

	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	data := make([]interface{}, 0, pageSize)
	for _, item := range items[start:end] {
		data = append(data, item)
	}

	body := map[string]interface{}{"data": data}

	if end < len(items) {
		body["paging"] = map[string]interface{}{
			"cursors": map[string]interface{}{"after": fmt.Sprintf("cursor-%d", end)},
		}
	}

	writeJSON(writer, http.StatusOK, body)
}

// handleBatch decodes the combined description and replays each operation
// against handleSingle, collecting the sub-responses.
func (f *fakeGraph) handleBatch(writer http.ResponseWriter, request *http.Request) {
	var operations []struct {
		Method      string `json:"method"`
		RelativeURL string `json:"relative_url"`
		Body        string `json:"body"`
	}

	if err := json.Unmarshal([]byte(request.FormValue("batch")), &operations); err != nil {
		writeError(writer, http.StatusBadRequest, "Malformed batch", "GraphBatchException", 1)

		return
	}

	responses := make([]map[string]interface{}, 0, len(operations))

	for _, op := range operations {
		recorder := httptest.NewRecorder()

		subRequest, err := http.NewRequest(op.Method, "/"+op.RelativeURL, nil)
		if err != nil {
			writeError(writer, http.StatusBadRequest, "Malformed operation", "GraphBatchException", 1)

			return
		}

		query := subRequest.URL.Query()
		form := map[string][]string{}

		for key, values := range query {
			form[key] = values
		}

		f.handleSingle(recorder, subRequest, subRequest.URL.Path, query.Get("after"), form)

		responses = append(responses, map[string]interface{}{
			"code":    recorder.Code,
			"headers": []interface{}{},
			"body":    recorder.Body.String(),
		})
	}

	writeJSON(writer, http.StatusOK, responses)
}

func writeJSON(writer http.ResponseWriter, status int, body interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(body)
}

func writeError(writer http.ResponseWriter, status int, message, errType string, code int) {
	writeJSON(writer, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"type":    errType,
			"code":    code,
		},
	})
}
