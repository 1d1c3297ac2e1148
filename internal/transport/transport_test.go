package transport_test

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noverloop/koala/internal/transport"
	"github.com/noverloop/koala/pkg/graph"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("GET sends args as query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v19.0/me", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "name,email", request.URL.Query().Get("fields"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"id": "12345", "name": "Alice"})
		}))
		defer server.Close()

		client := transport.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &graph.Request{
			Method: "GET",
			Path:   "v19.0/me",
			Params: graph.Params{"fields": "name,email"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(resp.Body), "Alice")
	})

	t.Run("POST form-encodes args", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", request.Header.Get("Content-Type"))

			require.NoError(t, request.ParseForm())
			assert.Equal(t, "Hello, world", request.PostFormValue("message"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"id": "post-id"})
		}))
		defer server.Close()

		client := transport.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &graph.Request{
			Method: "POST",
			Path:   "v19.0/me/feed",
			Params: graph.Params{"message": "Hello, world"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("POST switches to multipart when uploads are present", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			mediaType, params, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
			require.NoError(t, err)
			assert.Equal(t, "multipart/form-data", mediaType)

			reader := multipart.NewReader(request.Body, params["boundary"])

			var sawSource, sawCaption bool

			for {
				part, err := reader.NextPart()
				if err == io.EOF {
					break
				}

				require.NoError(t, err)

				switch part.FormName() {
				case "source":
					sawSource = true

					assert.Equal(t, "image/png", part.Header.Get("Content-Type"))

					payload, err := io.ReadAll(part)
					require.NoError(t, err)
					assert.Equal(t, "png-bytes", string(payload))
				case "caption":
					sawCaption = true
				}
			}

			assert.True(t, sawSource)
			assert.True(t, sawCaption)

			_ = json.NewEncoder(writer).Encode(map[string]string{"id": "photo-id"})
		}))
		defer server.Close()

		upload, err := graph.NewUploadIO([]byte("png-bytes"), "image/png")
		require.NoError(t, err)

		client := transport.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &graph.Request{
			Method: "POST",
			Path:   "v19.0/me/photos",
			Params: graph.Params{"source": upload, "caption": "sunset"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("uploads on GET are rejected", func(t *testing.T) {
		t.Parallel()

		upload, err := graph.NewUploadIO([]byte("data"), "")
		require.NoError(t, err)

		client := transport.NewClient("https://example.invalid")

		_, err = client.Do(context.Background(), &graph.Request{
			Method: "GET",
			Path:   "v19.0/me/photos",
			Params: graph.Params{"source": upload},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, transport.ErrUploadNotAllowed)
	})

	t.Run("absolute URLs pass through with query merge", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v19.0/me/friends", request.URL.Path)
			assert.Equal(t, "cursor-token", request.URL.Query().Get("after"))
			assert.Equal(t, "25", request.URL.Query().Get("limit"))

			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"data": []interface{}{}})
		}))
		defer server.Close()

		client := transport.NewClient("https://unused.invalid")

		resp, err := client.Do(context.Background(), &graph.Request{
			Method: "GET",
			Path:   server.URL + "/v19.0/me/friends?after=cursor-token",
			Params: graph.Params{"limit": 25},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("error statuses are returned, not raised", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "Unsupported get request", "code": 100},
			})
		}))
		defer server.Close()

		client := transport.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &graph.Request{
			Method: "GET",
			Path:   "v19.0/nonexistent",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(resp.Body), "Unsupported get request")
	})

	t.Run("redirects are not followed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Location", "https://cdn.example.com/picture.jpg")
			writer.WriteHeader(http.StatusFound)
		}))
		defer server.Close()

		client := transport.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &graph.Request{
			Method: "GET",
			Path:   "v19.0/me/picture",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://cdn.example.com/picture.jpg", resp.Headers.Get("Location"))
	})

	t.Run("extra headers are sent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "fr_FR", request.Header.Get("Accept-Language"))

			_ = json.NewEncoder(writer).Encode(map[string]string{"id": "1"})
		}))
		defer server.Close()

		client := transport.NewClient(server.URL)

		_, err := client.Do(context.Background(), &graph.Request{
			Method:  "GET",
			Path:    "v19.0/me",
			Headers: map[string]string{"Accept-Language": "fr_FR"},
		})
		require.NoError(t, err)
	})
}

func TestClient_Retries(t *testing.T) {
	t.Parallel()
	t.Run("retries transient server errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				writer.WriteHeader(http.StatusInternalServerError)

				return
			}

			_ = json.NewEncoder(writer).Encode(map[string]string{"id": "1"})
		}))
		defer server.Close()

		client := transport.NewClient(server.URL,
			transport.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Do(context.Background(), &graph.Request{
			Method: "GET",
			Path:   "v19.0/me",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := transport.NewClient(server.URL,
			transport.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

		resp, err := client.Do(context.Background(), &graph.Request{
			Method: "GET",
			Path:   "v19.0/me",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})
}

func TestClient_DebugLogging(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_ = json.NewEncoder(writer).Encode(map[string]string{"id": "1"})
	}))
	defer server.Close()

	logger := &MockLogger{}
	client := transport.NewClient(server.URL,
		transport.WithLogger(logger),
		transport.WithDebug(true))

	_, err := client.Do(context.Background(), &graph.Request{
		Method: "GET",
		Path:   "v19.0/me",
	})
	require.NoError(t, err)
	require.Len(t, logger.logs, 2)
	assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
	assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
}
