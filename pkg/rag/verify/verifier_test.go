package verify

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"docbox-be/pkg/llm"
	"docbox-be/pkg/rag"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func TestVerifyGrounded(t *testing.T) {
	p := rag.Passage{ID: uuid.New(), Text: "Aspirin may cause stomach irritation in adults."}
	claims := []rag.Claim{{Text: "Aspirin may cause stomach irritation.", PassageIDs: []uuid.UUID{p.ID}}}

	v := NewVerifier(nil, 0)
	result := v.Verify(context.Background(), claims, []rag.Passage{p})

	assert.Equal(t, rag.VerifyGrounded, result.State)
	assert.True(t, result.Grounded)
	assert.Len(t, result.Support, 1)
	assert.Equal(t, p.ID, *result.Support[0].PassageID)
	assert.Greater(t, result.Confidence, 0.5)
}

func TestVerifyUngroundedClaimWithoutCitation(t *testing.T) {
	p := rag.Passage{ID: uuid.New(), Text: "Visiting hours end at nine."}
	claims := []rag.Claim{{Text: "The moon is made of cheese."}}

	v := NewVerifier(nil, 0)
	result := v.Verify(context.Background(), claims, []rag.Passage{p})

	assert.Equal(t, rag.VerifyUngrounded, result.State)
	assert.False(t, result.Grounded)
	assert.Zero(t, result.Confidence)
	assert.Len(t, result.Unsupported, 1)
}

func TestVerifyUngroundedWhenCitationDoesNotEntail(t *testing.T) {
	p := rag.Passage{ID: uuid.New(), Text: "Visiting hours end at nine."}
	claims := []rag.Claim{{Text: "Chemotherapy requires fasting beforehand.", PassageIDs: []uuid.UUID{p.ID}}}

	v := NewVerifier(nil, 0)
	result := v.Verify(context.Background(), claims, []rag.Passage{p})

	assert.Equal(t, rag.VerifyUngrounded, result.State)
	assert.Len(t, result.Unsupported, 1)
}

func TestVerifyConfidenceIsMinimum(t *testing.T) {
	strong := rag.Passage{ID: uuid.New(), Text: "Aspirin may cause stomach irritation and headaches."}
	weak := rag.Passage{ID: uuid.New(), Text: "Ibuprofen dosing information and interactions and warnings and notes."}

	claims := []rag.Claim{
		{Text: "Aspirin may cause stomach irritation.", PassageIDs: []uuid.UUID{strong.ID}},
		{Text: "Ibuprofen dosing requires careful patient review.", PassageIDs: []uuid.UUID{weak.ID}},
	}

	v := NewVerifier(nil, 0.3)
	result := v.Verify(context.Background(), claims, []rag.Passage{strong, weak})

	assert.Equal(t, rag.VerifyGrounded, result.State)
	var minStrength = 1.0
	for _, s := range result.Support {
		if s.Strength < minStrength {
			minStrength = s.Strength
		}
	}
	assert.Equal(t, minStrength, result.Confidence)
}

func TestVerifyTieBreakPrefersHigherRetrievalScore(t *testing.T) {
	text := "Aspirin may cause stomach irritation."
	low := rag.Passage{ID: uuid.New(), Text: text, Score: 0.4}
	high := rag.Passage{ID: uuid.New(), Text: text, Score: 0.9}

	claims := []rag.Claim{{Text: text, PassageIDs: []uuid.UUID{low.ID, high.ID}}}

	v := NewVerifier(nil, 0)
	result := v.Verify(context.Background(), claims, []rag.Passage{low, high})

	assert.Equal(t, high.ID, *result.Support[0].PassageID)
}

func TestVerifyEmptyDraftIsUngrounded(t *testing.T) {
	v := NewVerifier(nil, 0)
	result := v.Verify(context.Background(), nil, nil)

	assert.Equal(t, rag.VerifyUngrounded, result.State)
	assert.Zero(t, result.Confidence)
}

func TestVerifySecondOpinionRescuesClaim(t *testing.T) {
	p := rag.Passage{ID: uuid.New(), Text: "Renal dosing chart, appendix B."}
	claims := []rag.Claim{{Text: "Dose adjustment applies for impaired kidney function.", PassageIDs: []uuid.UUID{p.ID}}}

	v := NewVerifier(&stubLLM{response: "YES"}, 0)
	result := v.Verify(context.Background(), claims, []rag.Passage{p})

	assert.Equal(t, rag.VerifyGrounded, result.State)
	assert.Equal(t, "llm entailment", result.Support[0].Reason)
}

func TestVerifySecondOpinionFailureIsInconclusive(t *testing.T) {
	p := rag.Passage{ID: uuid.New(), Text: "Renal dosing chart, appendix B."}
	claims := []rag.Claim{{Text: "Dose adjustment applies for impaired kidney function.", PassageIDs: []uuid.UUID{p.ID}}}

	v := NewVerifier(&stubLLM{err: rag.ErrGenerationUnavailable}, 0)
	result := v.Verify(context.Background(), claims, []rag.Passage{p})

	assert.Equal(t, rag.VerifyInconclusive, result.State)
	assert.False(t, result.Grounded)
	assert.Zero(t, result.Confidence)
	assert.ErrorIs(t, result.Err, rag.ErrVerificationInconclusive)
	assert.ErrorContains(t, result.Err, rag.ErrGenerationUnavailable.Error())
}
