package embedding

import (
	"context"
	"math"
	"time"
)

// maxAttempts bounds the local retry loop inside a provider. Backoff is
// exponential starting at baseBackoff. The session-level orchestrator has
// its own iteration budget; this only smooths over brief backend blips.
const (
	maxAttempts = 3
	baseBackoff = 300 * time.Millisecond
)

// withRetry runs fn up to maxAttempts times with exponential backoff,
// honoring context cancellation between attempts.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(float64(baseBackoff) * math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

// normalizeVector normalizes a vector to unit length. Cosine distance in
// pgvector requires normalized vectors for an accurate similarity score.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
