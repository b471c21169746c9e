package openai_test

import (
	"context"
	"fmt"
	"log"

	"github.com/kart-io/docpipe/pkg/llm"
	_ "github.com/kart-io/docpipe/pkg/llm/openai"
)

// Create a provider with default settings and embed a single text.
func ExampleNewProvider() {
	provider, err := llm.NewEmbeddingProvider("openai", map[string]any{
		"api_key": "your-api-key-here",
	})
	if err != nil {
		log.Fatal(err)
	}

	embedding, err := provider.EmbedSingle(context.Background(), "hello world")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("dimensions:", len(embedding))
}

// Point the provider at an OpenAI-compatible endpoint with a larger
// embedding model.
func ExampleNewProvider_customEndpoint() {
	provider, err := llm.NewEmbeddingProvider("openai", map[string]any{
		"api_key":     "your-api-key-here",
		"base_url":    "http://localhost:8000/v1",
		"embed_model": "text-embedding-3-large",
	})
	if err != nil {
		log.Fatal(err)
	}

	embeddings, err := provider.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("count:", len(embeddings))
}
