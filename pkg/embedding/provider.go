// Package embedding generates vector embeddings for text chunks through a
// remote, rate-limited provider.
package embedding

import "context"

// Usage is the provider-reported token consumption for one request.
type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// BatchResult carries the embeddings for a batch of texts, in input
// order, together with accumulated token usage. It is ephemeral: the
// orchestrator consumes it immediately and never persists it.
type BatchResult struct {
	Embeddings [][]float32
	Usage      Usage
}

// Provider issues a single remote embedding call for up to the provider's
// batch limit of texts. Partitioning, retry, and pacing live in BatchClient.
type Provider interface {
	Embed(ctx context.Context, texts []string) (*BatchResult, error)
}
