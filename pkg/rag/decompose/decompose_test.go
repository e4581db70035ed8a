package decompose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"docbox-be/pkg/llm"
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

func TestDecomposeNumberedList(t *testing.T) {
	d := NewDecomposer(&stubLLM{response: "1. What medications is the patient on?\n2. What are the interaction risks?"})

	subs := d.Decompose(context.Background(), "What medications is the patient on and what are the interaction risks?")

	assert.Equal(t, []string{
		"What medications is the patient on?",
		"What are the interaction risks?",
	}, subs)
}

func TestDecomposeCapsSubQueries(t *testing.T) {
	d := NewDecomposer(&stubLLM{response: "1. a?\n2. b?\n3. c?\n4. d?\n5. e?\n6. f?\n7. g?"})

	subs := d.Decompose(context.Background(), "many things")

	assert.Len(t, subs, maxSubQueries)
}

func TestDecomposeFallsBackWhenLLMFails(t *testing.T) {
	d := NewDecomposer(&stubLLM{err: errors.New("connection refused")})

	subs := d.Decompose(context.Background(), "What is the visit policy?")

	assert.Equal(t, []string{"What is the visit policy?"}, subs)
}

func TestDecomposeHeuristicSplitsQuestions(t *testing.T) {
	d := NewDecomposer(nil)

	subs := d.Decompose(context.Background(), "Who is the attending physician? What is the discharge protocol?")

	assert.Equal(t, []string{
		"Who is the attending physician?",
		"What is the discharge protocol?",
	}, subs)
}

func TestDecomposeEmptyQuestion(t *testing.T) {
	d := NewDecomposer(nil)

	assert.Nil(t, d.Decompose(context.Background(), "   "))
}
