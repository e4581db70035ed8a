package service

import (
	"context"
	"time"

	"docbox-be/internal/entity"
	"docbox-be/internal/pkg/logger"
	"docbox-be/internal/repository/unitofwork"
	"docbox-be/pkg/events"
	pktNats "docbox-be/pkg/nats"
	"docbox-be/pkg/rag"

	"github.com/google/uuid"
)

// AuditPublisher emits QUERY_AUDITED events after each query session. It
// never blocks the response path: publishing runs on its own goroutine and
// failures are logged, not returned.
type AuditPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewAuditPublisher(publisher *pktNats.Publisher, log logger.ILogger) *AuditPublisher {
	return &AuditPublisher{publisher: publisher, logger: log}
}

func (p *AuditPublisher) Record(sessionID uuid.UUID, s rag.Scope, questionHash string, status rag.SessionStatus, confidence float64) {
	event := events.QueryAudited{
		SessionID:      sessionID,
		OrganizationID: s.OrganizationID,
		SubjectID:      s.SubjectID,
		RequesterID:    s.RequesterID,
		QuestionHash:   questionHash,
		Status:         string(status),
		Confidence:     confidence,
		OccurredAt:     time.Now(),
	}

	go func() {
		if p.publisher == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.publisher.Publish(ctx, event); err != nil {
			p.logger.Warn("AuditPublisher", "Failed to publish audit event", map[string]interface{}{
				"session_id": sessionID.String(),
				"error":      err.Error(),
			})
		}
	}()
}

// AuditService consumes QUERY_AUDITED events from the bus and persists
// them as audit records.
type AuditService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAuditService(uowFactory unitofwork.RepositoryFactory, sub *pktNats.Subscriber, log logger.ILogger) *AuditService {
	return &AuditService{
		uowFactory: uowFactory,
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *AuditService) Start() {
	err := s.subscriber.Subscribe("audit.>", "audit-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("AuditService", "Failed to start audit subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("AuditService", "Audit service started, listening to audit.>", nil)
}

func (s *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	record := entity.AuditRecord{
		Id:           uuid.New(),
		QuestionHash: stringField(payload, "question_hash"),
		Status:       stringField(payload, "status"),
		CreatedAt:    time.Now(),
	}

	sessionId, err := uuid.Parse(stringField(payload, "session_id"))
	if err != nil {
		s.logger.Warn("AuditService", "Audit event missing session id, dropping", map[string]interface{}{"payload": payload})
		return nil
	}
	record.SessionId = sessionId

	if orgId, err := uuid.Parse(stringField(payload, "organization_id")); err == nil {
		record.OrganizationId = orgId
	}
	if requesterId, err := uuid.Parse(stringField(payload, "requester_id")); err == nil {
		record.RequesterId = requesterId
	}
	if subjectId, err := uuid.Parse(stringField(payload, "subject_id")); err == nil {
		record.SubjectId = &subjectId
	}
	if confidence, ok := payload["confidence"].(float64); ok {
		record.Confidence = confidence
	}
	if occurredAt, err := time.Parse(time.RFC3339Nano, stringField(payload, "occurred_at")); err == nil {
		record.OccurredAt = occurredAt
	} else {
		record.OccurredAt = event.Timestamp()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AuditRecordRepository().Create(ctx, &record); err != nil {
		s.logger.Error("AuditService", "Failed to persist audit record", map[string]interface{}{
			"session_id": record.SessionId.String(),
			"error":      err.Error(),
		})
		return err // Nak, retry
	}

	return nil
}

func stringField(payload map[string]interface{}, key string) string {
	v, _ := payload[key].(string)
	return v
}
