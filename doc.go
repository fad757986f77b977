// Package hybridex is an embeddable hybrid retrieval index over Redis or Valkey.
//
// Documents live in namespaces. Every namespace has its own search index, so a
// query against one namespace never sees documents stored in another.
// A search fuses vector similarity with lexical relevance and can optionally
// hand the top of the fused list to a reranking model.
//
// Basic usage:
//
//	client, err := hybridex.New(
//		hybridex.WithValkey("localhost:6379", ""),
//		hybridex.WithOpenAI(hybridex.OpenAIConfig{APIKey: os.Getenv("OPENAI_API_KEY")}),
//		hybridex.WithVoyage(hybridex.VoyageConfig{APIKey: os.Getenv("VOYAGE_API_KEY")}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	docs := client.Index("docs")
//	if _, err := docs.Add(ctx, "Redis supports vector search since 7.2"); err != nil {
//		log.Fatal(err)
//	}
//
//	hits, err := docs.Search(ctx, hybridex.SearchOptions{
//		Query: "vector search in redis",
//		Mode:  hybridex.ModeHybridRerank,
//		Limit: 5,
//	})
//
// Errors wrap the sentinels re-exported by this package; use errors.Is to
// classify them and StageOf to learn which pipeline stage failed.
package hybridex
