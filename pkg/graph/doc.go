// Package graph provides a typed client for a remote object/graph HTTP API:
// read, write, and delete verbs over objects and the connections (edges)
// between them, with pagination, batched execution, and binary media upload
// layered on top.
//
// # Overview
//
// The package defines the dispatch core (Call, Client.Do), the error taxonomy
// (APIError, TransportError, and the argument sentinels), lazy page walking
// (Page, PageIterator), batch aggregation (Batch), and media-argument
// normalization (UploadIO). A concrete transport is provided by
// internal/transport and wired by the graphclient package, which is how most
// consumers should construct a client.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/noverloop/koala/pkg/graph"
//	  "github.com/noverloop/koala/pkg/graphclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := graphclient.New(&graph.Config{AccessToken: "token"})
//	  if err != nil { log.Fatal(err) }
//
//	  me, err := cli.GetObject(ctx, "me", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = me
//	}
//
// # Connections and pagination
//
// Connection fetches return a *Page, an immutable view over one slice of the
// collection. Page.Next and Page.Previous issue fresh calls along the page's
// cursors; PageIterator and FetchAllPages flatten items across pages:
//
//	feed, err := cli.GetConnection(ctx, "me", "feed", nil)
//	it := graph.NewPageIterator(ctx, feed)
//	for it.HasNext() {
//	  post, err := it.Next()
//	  if err != nil { break }
//	  _ = post
//	}
//
// # Batches
//
// A Batch collapses several logical calls into one physical request and
// demultiplexes the combined response back into per-call results:
//
//	results, err := cli.NewBatch().
//	  GetObject("me", nil).
//	  PutConnection("me", "feed", graph.Params{"message": "hi"}).
//	  Execute(ctx, nil)
//
// # Errors
//
// Remote error payloads surface as *APIError, transport and decoding failures
// as *TransportError, and local misuse as sentinel errors such as
// ErrMissingAccessToken and ErrNoSuchPage. Helpers like IsAPIError,
// IsOAuthError, and IsMissingToken make it easy to branch on the common
// cases. Inside a batch, per-call errors are captured in that call's
// BatchResult instead of aborting siblings.
package graph
