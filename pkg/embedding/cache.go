package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedProvider memoizes vectors by content hash so reprocessing a
// document does not re-pay for chunks whose text did not change. Usage is
// reported only for texts that actually reached the remote provider.
type CachedProvider struct {
	inner Provider
	cache *gocache.Cache
}

// NewCachedProvider wraps inner with an in-memory TTL cache.
func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Embed serves cache hits locally and forwards only misses to the inner
// provider, preserving input order in the combined result.
func (p *CachedProvider) Embed(ctx context.Context, texts []string) (*BatchResult, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		if v, ok := p.cache.Get(cacheKey(t)); ok {
			out[i] = v.([]float32)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	result := &BatchResult{Embeddings: out}
	if len(missTexts) == 0 {
		return result, nil
	}

	res, err := p.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range res.Embeddings {
		out[missIdx[j]] = vec
		p.cache.SetDefault(cacheKey(missTexts[j]), vec)
	}
	result.Usage = res.Usage
	return result, nil
}
