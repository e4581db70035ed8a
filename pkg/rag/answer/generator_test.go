package answer

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

func TestGenerateParsesSourceMarkers(t *testing.T) {
	p1 := rag.Passage{ID: uuid.New(), Text: "Aspirin may cause stomach irritation."}
	p2 := rag.Passage{ID: uuid.New(), Text: "Ibuprofen may cause dizziness."}

	g := NewGenerator(&stubLLM{response: "Aspirin may cause stomach irritation [Source 1]. Ibuprofen may cause dizziness [Source 2]."})

	draft, err := g.Generate(context.Background(), "compare side effects", []rag.Passage{p1, p2})

	assert.NoError(t, err)
	assert.Len(t, draft.Claims, 2)
	assert.Equal(t, []uuid.UUID{p1.ID}, draft.Claims[0].PassageIDs)
	assert.Equal(t, []uuid.UUID{p2.ID}, draft.Claims[1].PassageIDs)
	assert.NotContains(t, draft.Text, "[Source")
}

func TestGenerateAlignsUnmarkedClaims(t *testing.T) {
	p1 := rag.Passage{ID: uuid.New(), Text: "The discharge protocol requires attending sign-off."}
	p2 := rag.Passage{ID: uuid.New(), Text: "Visiting hours end at nine."}

	g := NewGenerator(&stubLLM{response: "The discharge protocol requires attending sign-off."})

	draft, err := g.Generate(context.Background(), "discharge protocol", []rag.Passage{p1, p2})

	assert.NoError(t, err)
	assert.Len(t, draft.Claims, 1)
	assert.Equal(t, []uuid.UUID{p1.ID}, draft.Claims[0].PassageIDs)
}

func TestGenerateIgnoresOutOfRangeMarkers(t *testing.T) {
	p1 := rag.Passage{ID: uuid.New(), Text: "Policy text here."}

	g := NewGenerator(&stubLLM{response: "Unrelated assertion [Source 9]."})

	draft, err := g.Generate(context.Background(), "q", []rag.Passage{p1})

	assert.NoError(t, err)
	assert.Len(t, draft.Claims, 1)
	// invalid marker and no overlap: claim carries no passage ids
	assert.Empty(t, draft.Claims[0].PassageIDs)
}

func TestGenerateNoPassagesRefuses(t *testing.T) {
	g := NewGenerator(&stubLLM{response: "anything"})

	_, err := g.Generate(context.Background(), "q", nil)

	assert.ErrorIs(t, err, rag.ErrGenerationRefused)
}

func TestGenerateProviderErrorPropagates(t *testing.T) {
	g := NewGenerator(&stubLLM{err: rag.ErrGenerationUnavailable})

	_, err := g.Generate(context.Background(), "q", []rag.Passage{{ID: uuid.New(), Text: "x"}})

	assert.ErrorIs(t, err, rag.ErrGenerationUnavailable)
}
