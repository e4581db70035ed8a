package search

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"docbox-be/pkg/rag"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Generate(ctx context.Context, text, taskType string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubEmbedder) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type stubSearcher struct {
	passages []rag.Passage
	err      error
}

func (s *stubSearcher) SearchSimilar(ctx context.Context, v []float32, org uuid.UUID, topK int) ([]rag.Passage, error) {
	return s.passages, s.err
}

func orgScope(org uuid.UUID) rag.Scope {
	return rag.Scope{OrganizationID: org, RequesterRole: "clinician"}
}

func TestMergeWeightsAndOrder(t *testing.T) {
	org := uuid.New()
	idA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	idB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	r := NewRetriever(&stubEmbedder{}, nil, Config{DenseWeight: 0.7, LexicalWeight: 0.3, TopK: 10, Threshold: 0})

	merged := r.Merge("aspirin dosage limits", []rag.Passage{
		{ID: idB, DenseScore: 0.5, Text: "aspirin dosage limits for adults", Tags: rag.AccessTags{OrganizationID: org}},
		{ID: idA, DenseScore: 0.5, Text: "aspirin dosage limits for adults", Tags: rag.AccessTags{OrganizationID: org}},
	})

	assert.Len(t, merged, 2)
	// equal scores: passage id ascending breaks the tie
	assert.Equal(t, idA, merged[0].ID)
	assert.Equal(t, idB, merged[1].ID)
	assert.InDelta(t, 0.7*0.5+0.3*1.0, merged[0].Score, 1e-9)
}

func TestMergeThresholdAndDedup(t *testing.T) {
	id := uuid.New()
	r := NewRetriever(&stubEmbedder{}, nil, Config{DenseWeight: 0.7, LexicalWeight: 0.3, TopK: 10, Threshold: 0.5})

	merged := r.Merge("unrelated query terms", []rag.Passage{
		{ID: id, DenseScore: 0.9, Text: "completely different subject matter"},
		{ID: id, DenseScore: 0.9, Text: "completely different subject matter"},
		{ID: uuid.New(), DenseScore: 0.1, Text: "noise"},
	})

	assert.Len(t, merged, 1)
	assert.Equal(t, id, merged[0].ID)
}

func TestMergeDeterministic(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, nil, DefaultConfig())
	candidates := []rag.Passage{
		{ID: uuid.New(), DenseScore: 0.8, Text: "dose guidance text"},
		{ID: uuid.New(), DenseScore: 0.6, Text: "another passage about dose"},
		{ID: uuid.New(), DenseScore: 0.9, Text: "irrelevant"},
	}

	first := r.Merge("dose guidance", candidates)
	second := r.Merge("dose guidance", candidates)

	assert.Equal(t, first, second)
}

func TestRetrieveScopeFiltersSubjects(t *testing.T) {
	org := uuid.New()
	s1 := uuid.New()
	s2 := uuid.New()

	searcher := &stubSearcher{passages: []rag.Passage{
		{ID: uuid.New(), DenseScore: 0.9, Text: "subject one history", Tags: rag.AccessTags{SubjectID: &s1, OrganizationID: org, DocumentClass: "clinical_note"}},
		{ID: uuid.New(), DenseScore: 0.9, Text: "subject two history", Tags: rag.AccessTags{SubjectID: &s2, OrganizationID: org, DocumentClass: "clinical_note"}},
	}}
	r := NewRetriever(&stubEmbedder{}, searcher, Config{DenseWeight: 0.7, LexicalWeight: 0.3, TopK: 10, Threshold: 0})

	sc := rag.Scope{SubjectID: &s1, OrganizationID: org, RequesterRole: "clinician"}
	got, err := r.Retrieve(context.Background(), "subject history", sc)

	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "subject one history", got[0].Text)
}

func TestRetrieveEmbeddingFailurePropagates(t *testing.T) {
	r := NewRetriever(&stubEmbedder{err: rag.ErrEmbeddingUnavailable}, &stubSearcher{}, DefaultConfig())

	_, err := r.Retrieve(context.Background(), "q", orgScope(uuid.New()))

	assert.ErrorIs(t, err, rag.ErrEmbeddingUnavailable)
}

func TestRetrieveSearcherFailureIsRetrievalUnavailable(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, &stubSearcher{err: errors.New("connection reset")}, DefaultConfig())

	_, err := r.Retrieve(context.Background(), "q", orgScope(uuid.New()))

	assert.ErrorIs(t, err, rag.ErrRetrievalUnavailable)
}

func TestRetrieveEmptyResultIsNotError(t *testing.T) {
	r := NewRetriever(&stubEmbedder{}, &stubSearcher{}, DefaultConfig())

	got, err := r.Retrieve(context.Background(), "q", orgScope(uuid.New()))

	assert.NoError(t, err)
	assert.Empty(t, got)
}
