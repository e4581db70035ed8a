package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docbox-be/pkg/lexical"
	"docbox-be/pkg/llm"
	"docbox-be/pkg/rag"
)

const (
	// defaultSupportThreshold is the minimum entailment strength for a
	// passage to count as supporting a claim.
	defaultSupportThreshold = 0.5

	entailmentPrompt = `Does the passage below support the claim? Answer with exactly YES or NO.

Passage: %s

Claim: %s`
)

// Verifier checks that every claim in a draft is entailed by at least one
// of its cited passages. The primary check is deterministic lexical
// entailment; an optional LLM second opinion can rescue claims the lexical
// check rejects. Confidence aggregation is the minimum per-claim entailment
// strength, so one weak claim caps the whole result.
type Verifier struct {
	provider  llm.LLMProvider // optional; nil disables the second opinion
	threshold float64
}

func NewVerifier(provider llm.LLMProvider, threshold float64) *Verifier {
	if threshold <= 0 {
		threshold = defaultSupportThreshold
	}
	return &Verifier{provider: provider, threshold: threshold}
}

// Verify runs the state machine for one draft. It always terminates in
// grounded, ungrounded, or inconclusive.
func (v *Verifier) Verify(ctx context.Context, claims []rag.Claim, passages []rag.Passage) rag.VerificationResult {
	result := rag.VerificationResult{State: rag.VerifyChecking, Confidence: 1}

	byID := make(map[uuid.UUID]rag.Passage, len(passages))
	for _, p := range passages {
		byID[p.ID] = p
	}

	for _, claim := range claims {
		support, ok := v.checkClaim(claim, byID)
		if !ok && v.provider != nil {
			var err error
			support, ok, err = v.secondOpinion(ctx, claim, byID)
			if err != nil {
				result.State = rag.VerifyInconclusive
				result.Grounded = false
				result.Confidence = 0
				result.Err = fmt.Errorf("%w: %v", rag.ErrVerificationInconclusive, err)
				result.Unsupported = append(result.Unsupported, fmt.Sprintf("verifier unavailable for claim %q", claim.Text))
				return result
			}
		}
		if !ok {
			result.Unsupported = append(result.Unsupported, unsupportedReason(claim))
			continue
		}
		result.Support = append(result.Support, support)
		if support.Strength < result.Confidence {
			result.Confidence = support.Strength
		}
	}

	if len(result.Unsupported) > 0 {
		result.State = rag.VerifyUngrounded
		result.Grounded = false
		result.Confidence = 0
		return result
	}
	if len(result.Support) == 0 {
		// a draft with no claims cannot be grounded
		result.State = rag.VerifyUngrounded
		result.Grounded = false
		result.Confidence = 0
		result.Unsupported = append(result.Unsupported, "draft contained no checkable claims")
		return result
	}
	result.State = rag.VerifyGrounded
	result.Grounded = true
	return result
}

// checkClaim finds the best supporting cited passage. Ties go to the higher
// entailment strength, then the higher retrieval score, then the smaller
// passage id.
func (v *Verifier) checkClaim(claim rag.Claim, byID map[uuid.UUID]rag.Passage) (rag.ClaimSupport, bool) {
	var (
		best  rag.ClaimSupport
		bestP rag.Passage
		found bool
	)
	for _, id := range claim.PassageIDs {
		p, exists := byID[id]
		if !exists {
			continue
		}
		strength := lexical.EntailmentStrength(claim.Text, p.Text)
		if strength < v.threshold {
			continue
		}
		if !found || betterSupport(strength, p, best.Strength, bestP) {
			pid := p.ID
			best = rag.ClaimSupport{Claim: claim.Text, PassageID: &pid, Strength: strength}
			bestP = p
			found = true
		}
	}
	return best, found
}

func betterSupport(strength float64, p rag.Passage, bestStrength float64, bestP rag.Passage) bool {
	if strength != bestStrength {
		return strength > bestStrength
	}
	if p.Score != bestP.Score {
		return p.Score > bestP.Score
	}
	return p.ID.String() < bestP.ID.String()
}

// secondOpinion asks the LLM whether any cited passage entails the claim.
// A transport failure makes the whole verification inconclusive rather than
// silently ungrounded.
func (v *Verifier) secondOpinion(ctx context.Context, claim rag.Claim, byID map[uuid.UUID]rag.Passage) (rag.ClaimSupport, bool, error) {
	for _, id := range claim.PassageIDs {
		p, exists := byID[id]
		if !exists {
			continue
		}
		resp, err := v.provider.Generate(ctx, fmt.Sprintf(entailmentPrompt, p.Text, claim.Text), llm.WithTemperature(0))
		if err != nil {
			return rag.ClaimSupport{}, false, err
		}
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(resp)), "YES") {
			pid := p.ID
			return rag.ClaimSupport{Claim: claim.Text, PassageID: &pid, Strength: v.threshold, Reason: "llm entailment"}, true, nil
		}
	}
	return rag.ClaimSupport{}, false, nil
}

func unsupportedReason(claim rag.Claim) string {
	if len(claim.PassageIDs) == 0 {
		return fmt.Sprintf("claim %q cites no passage", claim.Text)
	}
	return fmt.Sprintf("claim %q is not entailed by its cited passages", claim.Text)
}
