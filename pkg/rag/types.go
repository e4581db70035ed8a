package rag

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the overall status of one QuerySession.
type SessionStatus string

const (
	SessionRunning           SessionStatus = "running"
	SessionAnswered          SessionStatus = "answered"
	SessionAnsweredLowConf   SessionStatus = "answered_low_confidence"
	SessionFailed            SessionStatus = "failed"
)

// SubQueryStatus is the terminal-facing status of a SubQuery.
type SubQueryStatus string

const (
	SubQueryPending   SubQueryStatus = "pending"
	SubQueryVerified  SubQueryStatus = "verified"
	SubQueryExhausted SubQueryStatus = "exhausted"
)

// SourceType classifies where a passage came from.
type SourceType string

const (
	SourcePolicy       SourceType = "policy"
	SourceProtocol     SourceType = "protocol"
	SourceClinicalNote SourceType = "clinical_note"
	SourceReference    SourceType = "reference"
	// SourceGraph marks synthetic passages rendered from relationship-store
	// edges so they participate in the same scoring and citation machinery
	// as text-corpus passages.
	SourceGraph SourceType = "graph"
)

// Scope is the access boundary the engine received from its caller. The
// caller is responsible for authorization; the engine only enforces that
// nothing outside this boundary reaches the generator or the output.
type Scope struct {
	SubjectID      *uuid.UUID
	OrganizationID uuid.UUID
	RequesterID    uuid.UUID
	RequesterRole  string
}

// AccessTags are the per-passage counterpart of Scope. A passage is
// visible when its tags are compatible with the requester's scope.
type AccessTags struct {
	SubjectID      *uuid.UUID
	OrganizationID uuid.UUID
	DocumentClass  string
}

// Passage is an immutable snapshot of one retrieved unit of text. Fetched
// fresh per retrieval call, never mutated in place.
type Passage struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	SourceType   SourceType
	Text         string
	DenseScore   float64
	LexicalScore float64
	GraphScore   float64
	// Score is the merged rank score used for ordering and tie-breaks.
	Score float64
	Tags  AccessTags
}

// Claim is one factual assertion extracted from a draft answer, mapped to
// the passage ids the generator says support it.
type Claim struct {
	Text       string
	PassageIDs []uuid.UUID
}

// ClaimSupport records the verifier's finding for one claim.
type ClaimSupport struct {
	Claim     string
	PassageID *uuid.UUID
	Strength  float64
	Reason    string
}

// VerifyState is the Grounding Verifier's state for one attempt.
type VerifyState string

const (
	VerifyUnchecked    VerifyState = "unchecked"
	VerifyChecking     VerifyState = "checking"
	VerifyGrounded     VerifyState = "grounded"
	VerifyUngrounded   VerifyState = "ungrounded"
	VerifyInconclusive VerifyState = "inconclusive"
)

// VerificationResult is the outcome of verifying one SubQuery attempt.
type VerificationResult struct {
	State       VerifyState
	Grounded    bool
	Support     []ClaimSupport
	Unsupported []string
	Confidence  float64
	// Err is set only for the inconclusive state and wraps
	// ErrVerificationInconclusive around the backend failure.
	Err error
}

// Citation points from the final answer to a supporting passage.
type Citation struct {
	PassageID  uuid.UUID `json:"passage_id"`
	DocumentID uuid.UUID `json:"source_document_id"`
	Confidence float64   `json:"confidence"`
}

// SubQuery is one atomic question derived from decomposition. It is owned
// by the session that created it.
type SubQuery struct {
	ID           uuid.UUID
	SessionID    uuid.UUID
	Text         string
	CurrentQuery string
	Iterations   int
	Status       SubQueryStatus
	Draft        string
	Confidence   float64
	Passages     []Passage
	Citations    []Citation
}

// QuerySession identifies one end-to-end request. Owned exclusively by the
// orchestrator for its lifetime; immutable once Status leaves running.
type QuerySession struct {
	ID         uuid.UUID
	Question   string
	Scope      Scope
	CreatedAt  time.Time
	Status     SessionStatus
	Confidence float64
	Answer     string
	Citations  []Citation
	SubQueries []*SubQuery
	// FailReason explains Status == failed. Empty otherwise.
	FailReason string
}

// SubQueryTrace is the per-sub-question observability record surfaced to
// the caller.
type SubQueryTrace struct {
	Text           string         `json:"text"`
	IterationsUsed int            `json:"iterations_used"`
	FinalStatus    SubQueryStatus `json:"final_status"`
}
