package events

import (
	"time"

	"github.com/google/uuid"
)

// QueryAudited is emitted after every query session, successful or not.
// Question text is never included, only its hash.
type QueryAudited struct {
	SessionID      uuid.UUID
	OrganizationID uuid.UUID
	SubjectID      *uuid.UUID
	RequesterID    uuid.UUID
	QuestionHash   string
	Status         string
	Confidence     float64
	OccurredAt     time.Time
}

func (e QueryAudited) EventType() string {
	return "QUERY_AUDITED"
}

func (e QueryAudited) Payload() map[string]interface{} {
	payload := map[string]interface{}{
		"session_id":      e.SessionID.String(),
		"organization_id": e.OrganizationID.String(),
		"requester_id":    e.RequesterID.String(),
		"question_hash":   e.QuestionHash,
		"status":          e.Status,
		"confidence":      e.Confidence,
		"occurred_at":     e.OccurredAt.Format(time.RFC3339Nano),
	}
	if e.SubjectID != nil {
		payload["subject_id"] = e.SubjectID.String()
	}
	return payload
}

func (e QueryAudited) Timestamp() time.Time {
	return e.OccurredAt
}
