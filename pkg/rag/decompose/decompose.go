package decompose

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"docbox-be/pkg/llm"
)

const maxSubQueries = 5

const decomposePrompt = `Break the following question into independent sub-questions, one per line, numbered. If the question is already simple, return it unchanged as a single item. Return at most %d items and nothing else.

Question: %s`

// Decomposer splits a compound question into independently answerable
// sub-questions. It never fails the pipeline: when the model is down or
// returns garbage, the original question passes through as a single item.
type Decomposer struct {
	provider llm.LLMProvider
}

func NewDecomposer(provider llm.LLMProvider) *Decomposer {
	return &Decomposer{provider: provider}
}

var numberedItem = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*])\s*(.+)$`)

// Decompose returns at least one sub-question. The original question is
// always a valid fallback.
func (d *Decomposer) Decompose(ctx context.Context, question string) []string {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}

	if d.provider != nil {
		if subs := d.decomposeLLM(ctx, question); len(subs) > 0 {
			return subs
		}
	}
	if subs := splitConjunctions(question); len(subs) > 1 {
		return subs
	}
	return []string{question}
}

func (d *Decomposer) decomposeLLM(ctx context.Context, question string) []string {
	prompt := fmt.Sprintf(decomposePrompt, maxSubQueries, question)

	resp, err := d.provider.Generate(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return nil
	}

	var subs []string
	for _, line := range strings.Split(resp, "\n") {
		m := numberedItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		if item == "" {
			continue
		}
		subs = append(subs, item)
		if len(subs) == maxSubQueries {
			break
		}
	}
	return subs
}

// splitConjunctions is the degraded-mode heuristic: split on " and also ",
// "; ", and question marks separating multiple full questions.
func splitConjunctions(question string) []string {
	var parts []string
	for _, sep := range []string{"? ", "; ", " and also "} {
		if strings.Contains(question, sep) {
			raw := strings.Split(question, sep)
			for i, p := range raw {
				p = strings.TrimSpace(p)
				if p == "" {
					continue
				}
				if sep == "? " && i < len(raw)-1 {
					p += "?"
				}
				parts = append(parts, p)
			}
			return parts
		}
	}
	return nil
}
