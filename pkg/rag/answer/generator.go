package answer

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"docbox-be/pkg/lexical"
	"docbox-be/pkg/llm"
	"docbox-be/pkg/rag"
)

const groundedPrompt = `You are answering a question using ONLY the numbered sources below. Every sentence of your answer must end with the marker of the source that supports it, e.g. [Source 2]. If the sources do not contain the answer, say so.

%s

Question: %s

Answer:`

// Draft is one generation attempt: the answer text plus the claim-to-passage
// mapping the verifier will check. Every claim carries at least one passage
// id; when the model omits markers, claims are aligned to the
// highest-overlap passage so the verifier never receives a bare string.
type Draft struct {
	Text   string
	Claims []rag.Claim
}

type Generator struct {
	provider llm.LLMProvider
}

func NewGenerator(provider llm.LLMProvider) *Generator {
	return &Generator{provider: provider}
}

var sourceMarker = regexp.MustCompile(`\[Source (\d+)\]`)

// Generate produces a grounded draft for one sub-question. Transport
// failures surface as rag.ErrGenerationUnavailable and refusals as
// rag.ErrGenerationRefused, both of which the orchestrator treats as a
// failed iteration.
func (g *Generator) Generate(ctx context.Context, subQuestion string, passages []rag.Passage) (*Draft, error) {
	if len(passages) == 0 {
		return nil, fmt.Errorf("%w: no passages to ground the answer", rag.ErrGenerationRefused)
	}

	var sources strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&sources, "[Source %d] %s\n", i+1, p.Text)
	}

	prompt := fmt.Sprintf(groundedPrompt, sources.String(), subQuestion)
	raw, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		return nil, err
	}

	claims := alignClaims(raw, passages)
	return &Draft{
		Text:   sourceMarker.ReplaceAllString(raw, ""),
		Claims: claims,
	}, nil
}

// alignClaims splits the draft into sentence-level claims and resolves each
// one's supporting passage ids from its [Source N] markers, falling back to
// the best lexical-overlap passage when markers are absent or invalid.
func alignClaims(draft string, passages []rag.Passage) []rag.Claim {
	var claims []rag.Claim
	for _, sentence := range splitSentences(draft) {
		ids := markerPassageIDs(sentence, passages)
		text := strings.TrimSpace(sourceMarker.ReplaceAllString(sentence, ""))
		if text == "" {
			continue
		}
		if len(ids) == 0 {
			if best, ok := bestOverlap(text, passages); ok {
				ids = []uuid.UUID{best}
			}
		}
		claims = append(claims, rag.Claim{Text: text, PassageIDs: ids})
	}
	return claims
}

func markerPassageIDs(sentence string, passages []rag.Passage) []uuid.UUID {
	var ids []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, m := range sourceMarker.FindAllStringSubmatch(sentence, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(passages) {
			continue
		}
		id := passages[n-1].ID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// bestOverlap picks the passage with the strongest content-term overlap,
// ties broken by retrieval score, then passage id.
func bestOverlap(claim string, passages []rag.Passage) (uuid.UUID, bool) {
	var (
		bestID    uuid.UUID
		bestScore float64
		found     bool
	)
	for _, p := range passages {
		overlap := lexical.Overlap(claim, p.Text)
		if overlap == 0 {
			continue
		}
		switch {
		case !found,
			overlap > bestScore,
			overlap == bestScore && betterTie(p, bestID, passages):
			bestID = p.ID
			bestScore = overlap
			found = true
		}
	}
	return bestID, found
}

func betterTie(candidate rag.Passage, currentID uuid.UUID, passages []rag.Passage) bool {
	var current rag.Passage
	for _, p := range passages {
		if p.ID == currentID {
			current = p
			break
		}
	}
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	return candidate.ID.String() < current.ID.String()
}

var sentenceEnd = regexp.MustCompile(`([.!?])\s+`)

func splitSentences(text string) []string {
	marked := sentenceEnd.ReplaceAllString(text, "$1\x00")
	var sentences []string
	for _, s := range strings.Split(marked, "\x00") {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
