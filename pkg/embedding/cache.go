package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedProvider wraps an EmbeddingProvider with an in-memory TTL cache.
// Sub-query refinement re-embeds near-identical queries within one session;
// caching keeps that from paying the backend round trip twice.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *gocache.Cache
}

func NewCachedProvider(inner EmbeddingProvider, ttl time.Duration) EmbeddingProvider {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedProvider{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	key := cacheKey(text, taskType)
	if v, found := p.cache.Get(key); found {
		return v.([]float32), nil
	}

	vec, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, vec, gocache.DefaultExpiration)
	return vec, nil
}

func (p *CachedProvider) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	// Batch calls are the indexing path; documents are embedded once, so
	// caching them would only grow memory.
	return p.inner.GenerateBatch(ctx, texts, taskType)
}

func cacheKey(text, taskType string) string {
	sum := sha256.Sum256([]byte(taskType + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
