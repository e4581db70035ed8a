package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"docbox-be/pkg/embedding"
	"docbox-be/pkg/lexical"
	"docbox-be/pkg/rag"
	"docbox-be/pkg/rag/scope"
)

// VectorSearcher is the storage-side contract: dense similarity search over
// an organization's passages. Subject and document-class isolation is not its
// job; the scope filter handles that before anything reaches generation.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, queryVector []float32, organizationID uuid.UUID, topK int) ([]rag.Passage, error)
}

type Config struct {
	DenseWeight   float64
	LexicalWeight float64
	TopK          int
	Threshold     float64
}

func DefaultConfig() Config {
	return Config{
		DenseWeight:   0.7,
		LexicalWeight: 0.3,
		TopK:          10,
		Threshold:     0.25,
	}
}

// Retriever embeds a query, runs dense search, adds a lexical term-overlap
// pass, and merges the two scores. Results are scope-filtered before they
// are returned; callers never see out-of-scope passages.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	searcher VectorSearcher
	cfg      Config
}

func NewRetriever(embedder embedding.EmbeddingProvider, searcher VectorSearcher, cfg Config) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.DenseWeight == 0 && cfg.LexicalWeight == 0 {
		cfg.DenseWeight = DefaultConfig().DenseWeight
		cfg.LexicalWeight = DefaultConfig().LexicalWeight
	}
	return &Retriever{embedder: embedder, searcher: searcher, cfg: cfg}
}

// Retrieve returns the scope-visible passages ranked by merged score. An
// empty result is a valid outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, s rag.Scope) ([]rag.Passage, error) {
	vector, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	candidates, err := r.searcher.SearchSimilar(ctx, vector, s.OrganizationID, r.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rag.ErrRetrievalUnavailable, err)
	}

	merged := r.Merge(query, candidates)
	return scope.Filter(s, merged), nil
}

// Merge scores candidates with the weighted dense/lexical combination,
// drops anything below the threshold, dedupes by passage id, and sorts
// deterministically: score descending, then passage id ascending.
func (r *Retriever) Merge(query string, candidates []rag.Passage) []rag.Passage {
	seen := make(map[uuid.UUID]bool, len(candidates))
	merged := make([]rag.Passage, 0, len(candidates))

	for _, p := range candidates {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		p.LexicalScore = lexical.Overlap(query, p.Text)
		p.Score = r.cfg.DenseWeight*p.DenseScore + r.cfg.LexicalWeight*p.LexicalScore
		if p.GraphScore > 0 && p.GraphScore > p.Score {
			p.Score = p.GraphScore
		}
		if p.Score < r.cfg.Threshold {
			continue
		}
		merged = append(merged, p)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].ID.String() < merged[j].ID.String()
	})
	return merged
}
