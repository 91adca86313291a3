// Package boolgo provides an embedded boolean full-text search backend for
// host frameworks that prepare records as typed field mappings.
//
// Records are indexed into a prefixed term space with stemming, positional
// phrases and order-preserving sort keys, and queried through a
// filter-expression tree compiled into a boolean query algebra. Results come
// back with facet tallies, optional highlighting and spelling suggestions.
//
// # Quick Start
//
//	cfg := boolgo.Config{Path: "./index"}
//	backend, err := boolgo.New(cfg, site)
//	if err != nil {
//	    panic(err)
//	}
//
// Index records:
//
//	result, err := backend.Update(ctx, []model.Record{
//	    {Type: "blog.post", PK: "1", Data: attr.Map{
//	        "text":   attr.Text("hello world"),
//	        "views":  attr.Long(5),
//	        "posted": attr.Date(time.Date(2009, 1, 2, 0, 0, 0, 0, time.UTC)),
//	    }},
//	})
//
// Search with a filter tree:
//
//	res, err := backend.Search(ctx, query.And(
//	    query.ContentMatch(attr.Text("hello")),
//	), boolgo.SearchOptions{Limit: 10})
//
// The index lives at a filesystem path and persists across process restarts.
// Backup and Restore copy it to and from a blobstore.Store.
package boolgo
