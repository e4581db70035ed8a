package rag

import "errors"

// Error taxonomy for the retrieval-and-verification engine.
// Transient backend errors (*Unavailable) are retried with bounded backoff
// inside the component that owns the backend, then surfaced as a failed
// stage for that iteration. ErrScopeViolation is always fatal to the
// session and never retried.
var (
	// ErrEmbeddingUnavailable means the embedding backend is unreachable
	// after its own retry policy.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")

	// ErrRetrievalUnavailable means the vector index could not be queried.
	// An empty result set is NOT this error; it is a valid outcome.
	ErrRetrievalUnavailable = errors.New("retrieval backend unavailable")

	// ErrGenerationUnavailable means the generation backend is unreachable.
	ErrGenerationUnavailable = errors.New("generation backend unavailable")

	// ErrGenerationRefused means the backend declined to answer. Treated as
	// a failed iteration and triggers refinement.
	ErrGenerationRefused = errors.New("generation refused")

	// ErrVerificationInconclusive means the verifier itself could not
	// complete. Control flow treats it like ungrounded; observability
	// flags it distinctly.
	ErrVerificationInconclusive = errors.New("verification inconclusive")

	// ErrScopeViolation means an access outside the authorized scope was
	// attempted. Fatal to the whole session, no partial content leaks.
	ErrScopeViolation = errors.New("access outside authorized scope")

	// ErrSessionTimeout means the session wall-clock budget expired.
	ErrSessionTimeout = errors.New("session timed out")
)
