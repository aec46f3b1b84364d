// Package docai provides an embedded Go client for the docai retrieval and
// analytics engine: load a document set, run hybrid keyword/BM25 queries over
// it, and extract and aggregate monetary facts, all in-process with no server.
//
//	client, _ := docai.New()
//	defer client.Close()
//
//	_, _ = client.SetDocuments(ctx, docs)
//	results, _ := client.Query(ctx, "fatura tutarı")
//	analysis, _ := client.Aggregate(ctx, "toplam tutar", docai.AggregateOptions{
//	    IncludeStats: true,
//	})
//
// The semantic side path is optional: configure it with WithEmbedder. Without
// it the lexical pipeline runs unchanged.
package docai
