package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docbox-be/internal/pkg/logger"
	"docbox-be/pkg/lexical"
	"docbox-be/pkg/rag"
	"docbox-be/pkg/rag/answer"
	"docbox-be/pkg/rag/scope"
)

// Decomposer splits a question into sub-questions.
type Decomposer interface {
	Decompose(ctx context.Context, question string) []string
}

// Retriever returns scope-visible passages for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, s rag.Scope) ([]rag.Passage, error)
}

// GraphAugmenter renders a subject's relationship neighborhood as passages.
type GraphAugmenter interface {
	Expand(ctx context.Context, subjectID uuid.UUID, s rag.Scope) []rag.Passage
}

// Generator produces a grounded draft for one sub-question.
type Generator interface {
	Generate(ctx context.Context, subQuestion string, passages []rag.Passage) (*answer.Draft, error)
}

// Verifier checks a draft's claims against its cited passages.
type Verifier interface {
	Verify(ctx context.Context, claims []rag.Claim, passages []rag.Passage) rag.VerificationResult
}

// AuditSink records session outcomes. Implementations must not block the
// response path.
type AuditSink interface {
	Record(sessionID uuid.UUID, s rag.Scope, questionHash string, status rag.SessionStatus, confidence float64)
}

type Config struct {
	MaxIterations  int
	SessionTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxIterations:  3,
		SessionTimeout: 30 * time.Second,
	}
}

// Request is the inbound contract of the engine.
type Request struct {
	Question      string
	Scope         rag.Scope
	MaxIterations int // optional override, 0 means configured default
}

// Engine sequences decompose, retrieve, generate, and verify for one
// question, refining sub-queries that fail verification until the iteration
// budget or the session deadline runs out. One Engine serves many concurrent
// sessions; all per-session state lives in the QuerySession.
type Engine struct {
	decomposer Decomposer
	retriever  Retriever
	augmenter  GraphAugmenter
	generator  Generator
	verifier   Verifier
	audit      AuditSink
	log        logger.ILogger
	cfg        Config
}

func NewEngine(
	decomposer Decomposer,
	retriever Retriever,
	augmenter GraphAugmenter,
	generator Generator,
	verifier Verifier,
	audit AuditSink,
	log logger.ILogger,
	cfg Config,
) *Engine {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultConfig().MaxIterations
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultConfig().SessionTimeout
	}
	return &Engine{
		decomposer: decomposer,
		retriever:  retriever,
		augmenter:  augmenter,
		generator:  generator,
		verifier:   verifier,
		audit:      audit,
		log:        log,
		cfg:        cfg,
	}
}

// Ask runs one QuerySession end to end. The caller always receives a
// structured session: worst case Status is failed with a FailReason, never
// a bare error, except when the caller's own context dies. A caller
// deadline surfaces as ErrSessionTimeout, a cancellation as ctx.Err().
func (e *Engine) Ask(ctx context.Context, req Request) (*rag.QuerySession, error) {
	session := &rag.QuerySession{
		ID:        uuid.New(),
		Question:  req.Question,
		Scope:     req.Scope,
		CreatedAt: time.Now().UTC(),
		Status:    rag.SessionRunning,
	}

	if strings.TrimSpace(req.Question) == "" {
		return e.finishFailed(session, "question is empty"), nil
	}
	if req.Scope.OrganizationID == uuid.Nil {
		return e.finishFailed(session, "scope is missing an organization"), nil
	}

	maxIterations := e.cfg.MaxIterations
	if req.MaxIterations > 0 {
		maxIterations = req.MaxIterations
	}

	sessionCtx, cancel := context.WithTimeout(ctx, e.cfg.SessionTimeout)
	defer cancel()

	for _, text := range e.decomposer.Decompose(sessionCtx, req.Question) {
		session.SubQueries = append(session.SubQueries, &rag.SubQuery{
			ID:           uuid.New(),
			SessionID:    session.ID,
			Text:         text,
			CurrentQuery: text,
			Status:       rag.SubQueryPending,
		})
	}
	if len(session.SubQueries) == 0 {
		return e.finishFailed(session, "question produced no sub-queries"), nil
	}

	g, groupCtx := errgroup.WithContext(sessionCtx)
	for _, sq := range session.SubQueries {
		sq := sq
		g.Go(func() error {
			return e.runSubQuery(groupCtx, session.Scope, sq, maxIterations)
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, rag.ErrScopeViolation) {
			return e.finishFailed(session, "access outside authorized scope"), nil
		}
		if ctx.Err() != nil {
			return session, e.callerAborted(session, ctx)
		}
		return e.finishFailed(session, err.Error()), nil
	}
	if ctx.Err() != nil {
		return session, e.callerAborted(session, ctx)
	}

	e.aggregate(session)
	e.recordAudit(session)
	return session, nil
}

// runSubQuery drives the retrieve->generate->verify pipeline for one
// sub-question, stage by stage through the transition function. Each pass
// through the pipeline consumes one unit of iteration budget.
func (e *Engine) runSubQuery(ctx context.Context, s rag.Scope, sq *rag.SubQuery, maxIterations int) error {
	step := Next(StepPending, EventBegin, 0, maxIterations)

	for !Terminal(step) {
		if ctx.Err() != nil {
			step = Next(step, EventTimeout, sq.Iterations, maxIterations)
			break
		}
		sq.Iterations++

		passages, ev, err := e.retrieveStage(ctx, s, sq)
		if err != nil {
			return err
		}
		step = Next(step, ev, sq.Iterations, maxIterations)
		if step != StepGenerating {
			step = restart(step, sq.Iterations, maxIterations)
			continue
		}
		sq.Passages = passages

		draft, ev := e.generateStage(ctx, sq, passages)
		step = Next(step, ev, sq.Iterations, maxIterations)
		if step != StepVerifying {
			step = restart(step, sq.Iterations, maxIterations)
			continue
		}
		sq.Draft = draft.Text

		result := e.verifier.Verify(ctx, draft.Claims, passages)
		if result.State == rag.VerifyGrounded {
			step = Next(step, EventGrounded, sq.Iterations, maxIterations)
			sq.Confidence = result.Confidence
			sq.Citations = citationsFrom(result, passages)
		} else {
			if errors.Is(result.Err, rag.ErrVerificationInconclusive) {
				e.log.Warn("engine", "verification inconclusive, treating as ungrounded", map[string]interface{}{
					"sub_query_id": sq.ID.String(),
					"error":        result.Err.Error(),
				})
			}
			step = Next(step, EventUngrounded, sq.Iterations, maxIterations)
			sq.CurrentQuery = refineQuery(sq.CurrentQuery, draft.Claims, result)
			step = restart(step, sq.Iterations, maxIterations)
		}
	}

	if step == StepVerified {
		sq.Status = rag.SubQueryVerified
	} else {
		sq.Status = rag.SubQueryExhausted
		// keep the last draft and confidence as best-effort output, but a
		// failed attempt contributes no citations
		sq.Citations = nil
		sq.Confidence = 0
	}
	return nil
}

// retrieveStage fetches corpus passages plus graph context for the scope's
// subject. Scope violations abort the session; transient failures are a
// failed stage for this iteration only.
func (e *Engine) retrieveStage(ctx context.Context, s rag.Scope, sq *rag.SubQuery) ([]rag.Passage, Event, error) {
	passages, err := e.retriever.Retrieve(ctx, sq.CurrentQuery, s)
	if err != nil {
		if errors.Is(err, rag.ErrScopeViolation) {
			return nil, EventStageFailed, err
		}
		e.log.Warn("engine", "retrieval failed for iteration", map[string]interface{}{
			"sub_query_id": sq.ID.String(),
			"error":        err.Error(),
		})
		return nil, EventStageFailed, nil
	}

	if s.SubjectID != nil && e.augmenter != nil {
		// graph-derived passages go through the same scope filter as corpus
		// passages before the generator ever sees them
		passages = append(passages, scope.Filter(s, e.augmenter.Expand(ctx, *s.SubjectID, s))...)
	}

	if len(passages) == 0 {
		return nil, EventNoPassages, nil
	}
	return passages, EventPassages, nil
}

func (e *Engine) generateStage(ctx context.Context, sq *rag.SubQuery, passages []rag.Passage) (*answer.Draft, Event) {
	draft, err := e.generator.Generate(ctx, sq.Text, passages)
	if err != nil {
		e.log.Warn("engine", "generation failed for iteration", map[string]interface{}{
			"sub_query_id": sq.ID.String(),
			"error":        err.Error(),
		})
		return nil, EventStageFailed
	}
	return draft, EventDraft
}

// restart moves a refining sub-query back to retrieving for its next pass.
func restart(step Step, iterationsUsed, maxIterations int) Step {
	if step != StepRefining {
		return step
	}
	return Next(step, EventBegin, iterationsUsed, maxIterations)
}

// aggregate concatenates sub-answers, dedupes citations by passage id, and
// derives session status and global confidence.
func (e *Engine) aggregate(session *rag.QuerySession) {
	var (
		parts      []string
		anyDrained bool
		confidence = 1.0
	)
	seen := map[uuid.UUID]bool{}

	for _, sq := range session.SubQueries {
		if sq.Draft != "" {
			parts = append(parts, sq.Draft)
		}
		if sq.Status == rag.SubQueryExhausted {
			anyDrained = true
		}
		if sq.Confidence < confidence {
			confidence = sq.Confidence
		}
		for _, c := range sq.Citations {
			if seen[c.PassageID] {
				continue
			}
			seen[c.PassageID] = true
			session.Citations = append(session.Citations, c)
		}
	}

	session.Answer = strings.Join(parts, "\n\n")
	session.Confidence = confidence
	if anyDrained {
		session.Status = rag.SessionAnsweredLowConf
	} else {
		session.Status = rag.SessionAnswered
	}
}

// callerAborted marks a session the caller's own context killed. A deadline
// is reported as a session timeout; a cancellation as a cancellation. Either
// way partial results are discarded.
func (e *Engine) callerAborted(session *rag.QuerySession, ctx context.Context) error {
	session.Status = rag.SessionFailed
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		session.FailReason = rag.ErrSessionTimeout.Error()
		return fmt.Errorf("%w: %v", rag.ErrSessionTimeout, ctx.Err())
	}
	session.FailReason = "session cancelled by caller"
	return ctx.Err()
}

func (e *Engine) finishFailed(session *rag.QuerySession, reason string) *rag.QuerySession {
	session.Status = rag.SessionFailed
	session.FailReason = reason
	session.Confidence = 0
	e.recordAudit(session)
	return session
}

func (e *Engine) recordAudit(session *rag.QuerySession) {
	if e.audit == nil {
		return
	}
	sum := sha256.Sum256([]byte(session.Question))
	e.audit.Record(session.ID, session.Scope, hex.EncodeToString(sum[:]), session.Status, session.Confidence)
}

// Trace builds the per-sub-question observability records for a session.
func Trace(session *rag.QuerySession) []rag.SubQueryTrace {
	traces := make([]rag.SubQueryTrace, 0, len(session.SubQueries))
	for _, sq := range session.SubQueries {
		traces = append(traces, rag.SubQueryTrace{
			Text:           sq.Text,
			IterationsUsed: sq.Iterations,
			FinalStatus:    sq.Status,
		})
	}
	return traces
}

// citationsFrom converts a passing verification's support entries into
// citations, deduped by passage id.
func citationsFrom(result rag.VerificationResult, passages []rag.Passage) []rag.Citation {
	byID := make(map[uuid.UUID]rag.Passage, len(passages))
	for _, p := range passages {
		byID[p.ID] = p
	}

	var citations []rag.Citation
	seen := map[uuid.UUID]bool{}
	for _, sup := range result.Support {
		if sup.PassageID == nil || seen[*sup.PassageID] {
			continue
		}
		p, ok := byID[*sup.PassageID]
		if !ok {
			continue
		}
		seen[p.ID] = true
		citations = append(citations, rag.Citation{
			PassageID:  p.ID,
			DocumentID: p.DocumentID,
			Confidence: sup.Strength,
		})
	}
	return citations
}

// refineQuery rewrites a sub-query for the next iteration by appending the
// content terms of claims the verifier could not support, so retrieval
// broadens toward the missing evidence.
func refineQuery(query string, claims []rag.Claim, result rag.VerificationResult) string {
	supported := map[string]bool{}
	for _, sup := range result.Support {
		supported[sup.Claim] = true
	}

	existing := lexical.ContentTerms(query)
	var extra []string
	for _, claim := range claims {
		if supported[claim.Text] {
			continue
		}
		for _, term := range lexical.Tokenize(claim.Text) {
			if len(term) < 2 || lexical.IsStopword(term) || existing[term] {
				continue
			}
			existing[term] = true
			extra = append(extra, term)
			if len(extra) >= 5 {
				break
			}
		}
		if len(extra) >= 5 {
			break
		}
	}

	if len(extra) == 0 {
		return query
	}
	return fmt.Sprintf("%s %s", query, strings.Join(extra, " "))
}
