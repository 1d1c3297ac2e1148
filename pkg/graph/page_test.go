package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noverloop/koala/pkg/graph"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestPage(t *testing.T) {
	t.Parallel()
	t.Run("collection bodies round trip through a page", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{}
		transport.respond(`{"data": [{"id": "a"}, {"id": "b"}, {"id": "c"}],
			"paging": {"next": "https://graph.example.com/v19.0/me/friends?after=tok"}}`)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)
		assert.Equal(t, 3, page.Len())
		assert.True(t, page.HasNext())
		assert.False(t, page.HasPrevious())

		first, ok := page.Items()[0].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "a", first["id"])

		// Items are a copy; the page itself never mutates.
		items := page.Items()
		items[0] = nil
		assert.NotNil(t, page.Items()[0])
	})

	t.Run("next follows a legacy link verbatim", func(t *testing.T) {
		t.Parallel()

		link := "https://graph.example.com/v19.0/me/friends?after=tok&access_token=baked"

		transport := &fakeTransport{}
		transport.respond(
			`{"data": [{"id": "a"}], "paging": {"next": "`+link+`"}}`,
			`{"data": [{"id": "b"}]}`,
		)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)

		next, err := page.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, next.Len())

		require.Len(t, transport.requests, 2)
		assert.Equal(t, link, transport.requests[1].Path)
	})

	t.Run("cursors are preferred over legacy links", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{}
		transport.respond(
			`{"data": [{"id": "a"}],
			  "paging": {"cursors": {"before": "BEF", "after": "AFT"},
			             "next": "https://graph.example.com/ignored"}}`,
			`{"data": [{"id": "b"}]}`,
		)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends",
			graph.Params{"limit": 1})
		require.NoError(t, err)

		_, err = page.Next(context.Background())
		require.NoError(t, err)

		require.Len(t, transport.requests, 2)
		second := transport.requests[1]
		assert.Equal(t, "v19.0/me/friends", second.Path)
		assert.Equal(t, "AFT", second.Params["after"])
		assert.Equal(t, 1, second.Params["limit"])
		assert.NotContains(t, second.Params, "before")
	})

	t.Run("previous walks backwards with the before cursor", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{}
		transport.respond(
			`{"data": [{"id": "b"}], "paging": {"cursors": {"before": "BEF"}}}`,
			`{"data": [{"id": "a"}]}`,
		)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)
		assert.True(t, page.HasPrevious())

		_, err = page.Previous(context.Background())
		require.NoError(t, err)

		require.Len(t, transport.requests, 2)
		assert.Equal(t, "BEF", transport.requests[1].Params["before"])
		assert.NotContains(t, transport.requests[1].Params, "after")
	})

	t.Run("advancing past the end is an argument error, not a transport error", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{}
		transport.respond(`{"data": [{"id": "a"}], "paging": {}}`)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)
		assert.False(t, page.HasNext())

		_, err = page.Next(context.Background())
		require.Error(t, err)
		assert.True(t, graph.IsNoSuchPage(err))
		assert.False(t, graph.IsTransportError(err))
		assert.Len(t, transport.requests, 1, "no fetch may be attempted")
	})

	t.Run("an empty page never reports a next page", func(t *testing.T) {
		t.Parallel()

		// Cursor-style services keep returning cursors on the terminal page.
		transport := &fakeTransport{}
		transport.respond(`{"data": [],
			"paging": {"cursors": {"before": "BEF", "after": "AFT"}}}`)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)
		assert.False(t, page.HasNext())
	})

	t.Run("raw preserves the decoded body", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{}
		transport.respond(`{"data": [], "summary": {"total_count": 42}}`)

		client := newTestClient(t, transport)

		page, err := client.GetConnection(context.Background(), "post-id", "likes", nil)
		require.NoError(t, err)

		summary, ok := page.Raw()["summary"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(42), summary["total_count"])
	})
}

func TestPageIterator(t *testing.T) {
	t.Parallel()
	t.Run("walks items across page boundaries", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{}
		transport.respond(
			`{"data": [{"id": "a"}, {"id": "b"}],
			  "paging": {"cursors": {"after": "AFT"}}}`,
			`{"data": [{"id": "c"}]}`,
		)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)

		iterator := graph.NewPageIterator(context.Background(), page)

		var ids []string

		for iterator.HasNext() {
			item, err := iterator.Next()
			require.NoError(t, err)

			object, ok := item.(map[string]interface{})
			require.True(t, ok)

			ids = append(ids, object["id"].(string))
		}

		assert.Equal(t, []string{"a", "b", "c"}, ids)
		assert.Len(t, transport.requests, 2)
	})

	t.Run("next past the end reports no such page", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{}
		transport.respond(`{"data": [{"id": "a"}]}`)

		client := newTestClient(t, transport)

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)

		iterator := graph.NewPageIterator(context.Background(), page)

		_, err = iterator.Next()
		require.NoError(t, err)

		_, err = iterator.Next()
		require.Error(t, err)
		assert.True(t, graph.IsNoSuchPage(err))
	})
}

func TestFetchAllPages(t *testing.T) {
	t.Parallel()
	t.Run("collects every reachable item", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{}
		transport.respond(
			`{"data": [{"id": "a"}], "paging": {"cursors": {"after": "A1"}}}`,
			`{"data": [{"id": "b"}], "paging": {"cursors": {"after": "A2"}}}`,
			`{"data": [{"id": "c"}]}`,
		)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)

		items, err := graph.FetchAllPages(context.Background(), page, 0)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("an empty page ends the walk even when cursors remain", func(t *testing.T) {
		t.Parallel()

		transport := &fakeTransport{}
		transport.respond(
			`{"data": [{"id": "a"}, {"id": "b"}], "paging": {"cursors": {"after": "A1"}}}`,
			`{"data": [], "paging": {"cursors": {"before": "B2", "after": "A2"}}}`,
		)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)

		items, err := graph.FetchAllPages(context.Background(), page, 0)
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Len(t, transport.requests, 2, "the terminal cursor must not be re-fetched")
	})

	t.Run("maxPages bounds the walk", func(t *testing.T) {
		t.Parallel()

		// Every page links onwards; the cap stops the walk.
		transport := &fakeTransport{}
		transport.respond(
			`{"data": [{"id": "a"}], "paging": {"cursors": {"after": "A1"}}}`,
			`{"data": [{"id": "b"}], "paging": {"cursors": {"after": "A2"}}}`,
			`{"data": [{"id": "c"}], "paging": {"cursors": {"after": "A3"}}}`,
		)

		client := newTestClient(t, transport, graph.WithAccessToken("test-token"))

		page, err := client.GetConnection(context.Background(), "me", "friends", nil)
		require.NoError(t, err)

		items, err := graph.FetchAllPages(context.Background(), page, 2)
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Len(t, transport.requests, 2)
	})
}
