// Package graphclient provides the primary entry point for constructing a
// Graph API client.
//
// It layers endpoint normalization and the default retryable HTTP transport
// on top of the call dispatch, pagination, and batch machinery defined in the
// graph package. Most applications should import graphclient to build a
// client, then use the returned *graph.Client for reads, writes, searches,
// and batches.
//
// Quick start
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
//
//	  // Minimal: just an access token against the default endpoint.
//	  cli, err := graphclient.NewWithToken("EAAB...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with full configuration:
//	  cli, err = graphclient.New(&graph.Config{
//	    AccessToken: "EAAB...",
//	    AppSecret:   "app-secret", // adds appsecret_proof to every call
//	    APIVersion:  "v19.0",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  me, err := cli.GetObject(ctx, "me", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = me
//	}
//
// # Helpers
//
// The package also provides convenience constructors NewWithToken and
// NewWithAppSecret that wrap New with the appropriate configuration.
package graphclient
