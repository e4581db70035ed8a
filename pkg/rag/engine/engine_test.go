package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbox-be/internal/pkg/logger"
	"docbox-be/pkg/rag"
	"docbox-be/pkg/rag/answer"
	"docbox-be/pkg/rag/scope"
	"docbox-be/pkg/rag/verify"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }
func (noopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (noopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

type stubDecomposer struct {
	subs  []string
	delay time.Duration
}

func (s *stubDecomposer) Decompose(ctx context.Context, question string) []string {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if len(s.subs) == 0 {
		return []string{question}
	}
	return s.subs
}

// stubRetriever serves a fixed index and applies the scope filter the way
// the real retriever does, so isolation tests are meaningful.
type stubRetriever struct {
	passages []rag.Passage
	err      error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, sc rag.Scope) ([]rag.Passage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return scope.Filter(sc, s.passages), nil
}

// stubAugmenter returns a fixed graph batch, like the real augmenter does
// after its own org check.
type stubAugmenter struct {
	passages []rag.Passage
}

func (s *stubAugmenter) Expand(ctx context.Context, subjectID uuid.UUID, sc rag.Scope) []rag.Passage {
	return s.passages
}

type stubGenerator struct {
	drafts map[string]*answer.Draft
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context, subQuestion string, passages []rag.Passage) (*answer.Draft, error) {
	if s.err != nil {
		return nil, s.err
	}
	d, ok := s.drafts[subQuestion]
	if !ok {
		return nil, fmt.Errorf("%w: no draft for %q", rag.ErrGenerationRefused, subQuestion)
	}
	return d, nil
}

type captureAudit struct {
	mu     sync.Mutex
	called int
	status rag.SessionStatus
}

func (c *captureAudit) Record(sessionID uuid.UUID, s rag.Scope, questionHash string, status rag.SessionStatus, confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.called++
	c.status = status
}

func orgScope() rag.Scope {
	return rag.Scope{OrganizationID: uuid.New(), RequesterRole: "clinician"}
}

func newEngine(d Decomposer, r Retriever, g Generator, audit AuditSink, cfg Config) *Engine {
	return NewEngine(d, r, nil, g, verify.NewVerifier(nil, 0), audit, noopLogger{}, cfg)
}

func TestAskSingleGroundedAnswer(t *testing.T) {
	sc := orgScope()
	p := rag.Passage{
		ID:         uuid.New(),
		DocumentID: uuid.New(),
		SourceType: rag.SourceReference,
		Text:       "Drug X commonly causes nausea and headache in adults.",
		Tags:       rag.AccessTags{OrganizationID: sc.OrganizationID, DocumentClass: "reference"},
	}
	question := "What are the side effects of drug X?"

	audit := &captureAudit{}
	e := newEngine(
		&stubDecomposer{},
		&stubRetriever{passages: []rag.Passage{p}},
		&stubGenerator{drafts: map[string]*answer.Draft{
			question: {
				Text:   "Drug X commonly causes nausea and headache.",
				Claims: []rag.Claim{{Text: "Drug X commonly causes nausea and headache.", PassageIDs: []uuid.UUID{p.ID}}},
			},
		}},
		audit,
		DefaultConfig(),
	)

	session, err := e.Ask(context.Background(), Request{Question: question, Scope: sc})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionAnswered, session.Status)
	require.Len(t, session.Citations, 1)
	assert.Equal(t, p.ID, session.Citations[0].PassageID)
	assert.Equal(t, p.DocumentID, session.Citations[0].DocumentID)
	assert.GreaterOrEqual(t, session.Confidence, 0.6)
	require.Len(t, session.SubQueries, 1)
	assert.Equal(t, 1, session.SubQueries[0].Iterations)
	assert.Equal(t, 1, audit.called)
	assert.Equal(t, rag.SessionAnswered, audit.status)
}

func TestAskEmptyRetrievalExhaustsLowConfidence(t *testing.T) {
	e := newEngine(
		&stubDecomposer{},
		&stubRetriever{},
		&stubGenerator{},
		nil,
		DefaultConfig(),
	)

	session, err := e.Ask(context.Background(), Request{Question: "What are the side effects of drug X?", Scope: orgScope()})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionAnsweredLowConf, session.Status)
	assert.Empty(t, session.Citations)
	assert.Zero(t, session.Confidence)
	require.Len(t, session.SubQueries, 1)
	assert.Equal(t, rag.SubQueryExhausted, session.SubQueries[0].Status)
	assert.Equal(t, DefaultConfig().MaxIterations, session.SubQueries[0].Iterations)
}

func TestAskCompoundQuestionCombinesSubAnswers(t *testing.T) {
	sc := orgScope()
	px := rag.Passage{ID: uuid.New(), DocumentID: uuid.New(), Text: "Drug X causes nausea.", Tags: rag.AccessTags{OrganizationID: sc.OrganizationID, DocumentClass: "reference"}}
	py := rag.Passage{ID: uuid.New(), DocumentID: uuid.New(), Text: "Drug Y causes dizziness.", Tags: rag.AccessTags{OrganizationID: sc.OrganizationID, DocumentClass: "reference"}}

	e := newEngine(
		&stubDecomposer{subs: []string{"What are the side effects of drug X?", "What are the side effects of drug Y?"}},
		&stubRetriever{passages: []rag.Passage{px, py}},
		&stubGenerator{drafts: map[string]*answer.Draft{
			"What are the side effects of drug X?": {
				Text:   "Drug X causes nausea.",
				Claims: []rag.Claim{{Text: "Drug X causes nausea.", PassageIDs: []uuid.UUID{px.ID}}},
			},
			"What are the side effects of drug Y?": {
				Text:   "Drug Y causes dizziness.",
				Claims: []rag.Claim{{Text: "Drug Y causes dizziness.", PassageIDs: []uuid.UUID{py.ID}}},
			},
		}},
		nil,
		DefaultConfig(),
	)

	session, err := e.Ask(context.Background(), Request{Question: "Compare drug X and drug Y side effects", Scope: sc})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionAnswered, session.Status)
	assert.Contains(t, session.Answer, "Drug X causes nausea.")
	assert.Contains(t, session.Answer, "Drug Y causes dizziness.")
	assert.Len(t, session.Citations, 2)

	// traceability: every citation points at a passage retrieved this session
	retrieved := map[uuid.UUID]bool{px.ID: true, py.ID: true}
	for _, c := range session.Citations {
		assert.True(t, retrieved[c.PassageID])
	}
}

func TestAskScopeIsolationYieldsNoForeignContent(t *testing.T) {
	org := uuid.New()
	s1 := uuid.New()
	s2 := uuid.New()
	foreign := rag.Passage{
		ID:   uuid.New(),
		Text: "Subject two was prescribed warfarin.",
		Tags: rag.AccessTags{SubjectID: &s2, OrganizationID: org, DocumentClass: "clinical_note"},
	}

	e := newEngine(
		&stubDecomposer{},
		&stubRetriever{passages: []rag.Passage{foreign}},
		&stubGenerator{},
		nil,
		DefaultConfig(),
	)

	sc := rag.Scope{SubjectID: &s1, OrganizationID: org, RequesterRole: "clinician"}
	session, err := e.Ask(context.Background(), Request{Question: "What medication is the subject on?", Scope: sc})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionAnsweredLowConf, session.Status)
	assert.Empty(t, session.Citations)
	assert.Zero(t, session.Confidence)
	assert.NotContains(t, session.Answer, "warfarin")
	for _, sq := range session.SubQueries {
		assert.NotContains(t, sq.Draft, "warfarin")
		assert.Empty(t, sq.Passages)
	}
}

func TestAskGraphContextRespectsRoleClasses(t *testing.T) {
	org := uuid.New()
	subject := uuid.New()
	graph := rag.Passage{
		ID:         uuid.New(),
		DocumentID: uuid.New(),
		SourceType: rag.SourceGraph,
		Text:       "Dr. Chen is related to Subject One via relation TREATS",
		GraphScore: 0.5,
		Tags:       rag.AccessTags{SubjectID: &subject, OrganizationID: org, DocumentClass: "graph"},
	}
	question := "Who treats the subject?"
	e := NewEngine(
		&stubDecomposer{},
		&stubRetriever{},
		&stubAugmenter{passages: []rag.Passage{graph}},
		&stubGenerator{drafts: map[string]*answer.Draft{
			question: {
				Text:   "Dr. Chen is related to Subject One via relation TREATS",
				Claims: []rag.Claim{{Text: "Dr. Chen is related to Subject One via relation TREATS", PassageIDs: []uuid.UUID{graph.ID}}},
			},
		}},
		verify.NewVerifier(nil, 0),
		nil,
		noopLogger{},
		DefaultConfig(),
	)

	// external role may only read the policy class, so relationship context
	// never reaches the generator
	sc := rag.Scope{SubjectID: &subject, OrganizationID: org, RequesterRole: "external"}
	session, err := e.Ask(context.Background(), Request{Question: question, Scope: sc})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionAnsweredLowConf, session.Status)
	assert.Empty(t, session.Citations)
	assert.NotContains(t, session.Answer, "TREATS")
	for _, sq := range session.SubQueries {
		assert.Empty(t, sq.Passages)
		assert.Empty(t, sq.Draft)
	}

	// a clinician scoped to the same subject still gets the graph context
	sc.RequesterRole = "clinician"
	session, err = e.Ask(context.Background(), Request{Question: question, Scope: sc})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionAnswered, session.Status)
	require.Len(t, session.Citations, 1)
	assert.Equal(t, graph.ID, session.Citations[0].PassageID)
}

func TestAskUngroundedDraftExhaustsIterationBudget(t *testing.T) {
	sc := orgScope()
	p := rag.Passage{ID: uuid.New(), Text: "Visiting hours end at nine.", Tags: rag.AccessTags{OrganizationID: sc.OrganizationID, DocumentClass: "policy"}}
	question := "What is the chemotherapy fasting protocol?"

	e := newEngine(
		&stubDecomposer{},
		&stubRetriever{passages: []rag.Passage{p}},
		&stubGenerator{drafts: map[string]*answer.Draft{
			question: {
				Text:   "Chemotherapy requires twelve hours of fasting.",
				Claims: []rag.Claim{{Text: "Chemotherapy requires twelve hours of fasting.", PassageIDs: []uuid.UUID{p.ID}}},
			},
		}},
		nil,
		DefaultConfig(),
	)

	session, err := e.Ask(context.Background(), Request{Question: question, Scope: sc})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionAnsweredLowConf, session.Status)
	require.Len(t, session.SubQueries, 1)
	sq := session.SubQueries[0]
	assert.Equal(t, rag.SubQueryExhausted, sq.Status)
	assert.Equal(t, DefaultConfig().MaxIterations, sq.Iterations)
	// best-effort draft is retained, but a failed attempt yields no citations
	assert.NotEmpty(t, sq.Draft)
	assert.Empty(t, session.Citations)
	// refinement broadened the query with unsupported-claim terms
	assert.NotEqual(t, sq.Text, sq.CurrentQuery)
}

func TestAskConfidenceIsMinimumAcrossSubQueries(t *testing.T) {
	sc := orgScope()
	px := rag.Passage{ID: uuid.New(), Text: "Drug X causes nausea.", Tags: rag.AccessTags{OrganizationID: sc.OrganizationID, DocumentClass: "reference"}}
	py := rag.Passage{ID: uuid.New(), Text: "Drug Y interaction table with anticoagulants, appendix two.", Tags: rag.AccessTags{OrganizationID: sc.OrganizationID, DocumentClass: "reference"}}

	e := newEngine(
		&stubDecomposer{subs: []string{"x side effects", "y interactions"}},
		&stubRetriever{passages: []rag.Passage{px, py}},
		&stubGenerator{drafts: map[string]*answer.Draft{
			"x side effects": {
				Text:   "Drug X causes nausea.",
				Claims: []rag.Claim{{Text: "Drug X causes nausea.", PassageIDs: []uuid.UUID{px.ID}}},
			},
			"y interactions": {
				Text:   "Drug Y interacts with anticoagulants per the interaction table.",
				Claims: []rag.Claim{{Text: "Drug Y interacts with anticoagulants per the interaction table.", PassageIDs: []uuid.UUID{py.ID}}},
			},
		}},
		nil,
		DefaultConfig(),
	)

	session, err := e.Ask(context.Background(), Request{Question: "compound", Scope: sc})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionAnswered, session.Status)
	minConf := 1.0
	for _, sq := range session.SubQueries {
		if sq.Confidence < minConf {
			minConf = sq.Confidence
		}
	}
	assert.InDelta(t, minConf, session.Confidence, 1e-9)
}

func TestAskScopeViolationFailsSession(t *testing.T) {
	audit := &captureAudit{}
	e := newEngine(
		&stubDecomposer{},
		&stubRetriever{err: fmt.Errorf("%w: requester not authorized for subject", rag.ErrScopeViolation)},
		&stubGenerator{},
		audit,
		DefaultConfig(),
	)

	session, err := e.Ask(context.Background(), Request{Question: "q", Scope: orgScope()})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionFailed, session.Status)
	assert.Equal(t, "access outside authorized scope", session.FailReason)
	assert.Empty(t, session.Answer)
	assert.Empty(t, session.Citations)
	assert.Equal(t, rag.SessionFailed, audit.status)
}

func TestAskSessionTimeoutForcesExhausted(t *testing.T) {
	e := newEngine(
		&stubDecomposer{delay: 5 * time.Millisecond},
		&stubRetriever{},
		&stubGenerator{},
		nil,
		Config{MaxIterations: 3, SessionTimeout: time.Nanosecond},
	)

	session, err := e.Ask(context.Background(), Request{Question: "q", Scope: orgScope()})

	require.NoError(t, err)
	assert.Equal(t, rag.SessionAnsweredLowConf, session.Status)
	require.Len(t, session.SubQueries, 1)
	assert.Equal(t, rag.SubQueryExhausted, session.SubQueries[0].Status)
}

func TestAskCallerDeadlineSurfacesSessionTimeout(t *testing.T) {
	e := newEngine(&stubDecomposer{}, &stubRetriever{}, &stubGenerator{}, nil, DefaultConfig())

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	session, err := e.Ask(ctx, Request{Question: "q", Scope: orgScope()})

	assert.ErrorIs(t, err, rag.ErrSessionTimeout)
	assert.Equal(t, rag.SessionFailed, session.Status)
	assert.Equal(t, rag.ErrSessionTimeout.Error(), session.FailReason)
	assert.Empty(t, session.Answer)
	assert.Empty(t, session.Citations)
}

func TestAskCallerCancellationDiscardsResults(t *testing.T) {
	e := newEngine(&stubDecomposer{}, &stubRetriever{}, &stubGenerator{}, nil, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := e.Ask(ctx, Request{Question: "q", Scope: orgScope()})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, rag.SessionFailed, session.Status)
	assert.Empty(t, session.Answer)
	assert.Empty(t, session.Citations)
}

func TestAskRejectsMissingInputs(t *testing.T) {
	e := newEngine(&stubDecomposer{}, &stubRetriever{}, &stubGenerator{}, nil, DefaultConfig())

	session, err := e.Ask(context.Background(), Request{Question: "  ", Scope: orgScope()})
	require.NoError(t, err)
	assert.Equal(t, rag.SessionFailed, session.Status)

	session, err = e.Ask(context.Background(), Request{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, rag.SessionFailed, session.Status)
}

func TestTraceReportsSubQueryOutcomes(t *testing.T) {
	session := &rag.QuerySession{SubQueries: []*rag.SubQuery{
		{Text: "a", Iterations: 1, Status: rag.SubQueryVerified},
		{Text: "b", Iterations: 3, Status: rag.SubQueryExhausted},
	}}

	traces := Trace(session)

	assert.Equal(t, []rag.SubQueryTrace{
		{Text: "a", IterationsUsed: 1, FinalStatus: rag.SubQueryVerified},
		{Text: "b", IterationsUsed: 3, FinalStatus: rag.SubQueryExhausted},
	}, traces)
}
