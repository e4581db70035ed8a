package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations encapsulate their own timeout and retry policy; once the
// local retry budget is spent they return rag.ErrEmbeddingUnavailable so
// the caller can treat the failure as retrievable for that attempt rather
// than fatal to the session.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
	GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}

// Task types passed through to providers that distinguish query embeddings
// from document embeddings.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)
