// Package docretriever embeds the document retrieval core in a Go program,
// without the HTTP server.
//
//	client, _ := docretriever.New(ctx,
//	    docretriever.WithRedis("localhost:6379", ""),
//	    docretriever.WithIndex("docs"),
//	    docretriever.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	docs, _ := client.Retrieve(ctx, docretriever.Query{
//	    Queries: []string{"how do refunds work", "refund policy"},
//	    Scope:   map[string]string{"set_number": "S-42"},
//	    Routed:  true,
//	})
package docretriever
