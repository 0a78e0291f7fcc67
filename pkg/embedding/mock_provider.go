package embedding

import (
	"context"
	"hash/fnv"
)

// MockProvider produces deterministic pseudo-embeddings for tests and
// local development without a remote provider.
type MockProvider struct {
	Dimensions int
	// TokensPerText is the fake usage reported per input text.
	TokensPerText int
}

// NewMockProvider returns a mock emitting vectors of dim dimensions.
func NewMockProvider(dim int) *MockProvider {
	return &MockProvider{Dimensions: dim, TokensPerText: 10}
}

// Embed returns one deterministic vector per text, derived from a hash of
// the text content.
func (m *MockProvider) Embed(_ context.Context, texts []string) (*BatchResult, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		h := fnv.New32a()
		_, _ = h.Write([]byte(t))
		seed := h.Sum32()
		vec := make([]float32, m.Dimensions)
		for j := range vec {
			seed = seed*1664525 + 1013904223
			vec[j] = float32(seed%2000)/1000 - 1
		}
		out[i] = vec
	}
	return &BatchResult{
		Embeddings: out,
		Usage: Usage{
			PromptTokens: m.TokensPerText * len(texts),
			TotalTokens:  m.TokensPerText * len(texts),
		},
	}, nil
}
