package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"docbox-be/internal/dto"
	"docbox-be/internal/entity"
	"docbox-be/internal/repository/specification"
	"docbox-be/internal/repository/unitofwork"
	"docbox-be/pkg/embedding"
	"docbox-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing document %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if doc == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	// ChunkSize: 1500 chars (approx 375 tokens), Overlap: 200 chars
	chunks := utils.SplitText(doc.Content, 1500, 200)
	log.Printf("[INFO] Document %s split into %d chunks", doc.Id, len(chunks))

	vectors, err := cs.embeddingProvider.GenerateBatch(ctx, chunks, embedding.TaskRetrievalDocument)
	if err != nil {
		log.Printf("[ERROR] Failed to generate embeddings for document %s: %v", doc.Id, err)
		if statusErr := uow.DocumentRepository().UpdateIndexStatus(ctx, doc.Id, "failed"); statusErr != nil {
			log.Printf("[ERROR] Failed to mark document %s failed: %v", doc.Id, statusErr)
		}
		msg.Nack()
		return
	}

	newPassages := make([]*entity.PassageEmbedding, len(chunks))
	for i, chunk := range chunks {
		newPassages[i] = &entity.PassageEmbedding{
			Id:             uuid.New(),
			Text:           chunk,
			EmbeddingValue: vectors[i],
			DocumentId:     doc.Id,
			ChunkIndex:     i,
			SubjectId:      doc.SubjectId,
			OrganizationId: doc.OrganizationId,
			DocumentClass:  doc.DocumentClass,
			CreatedAt:      time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.PassageEmbeddingRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old passages: %v", err)
		msg.Nack()
		return
	}

	if len(newPassages) > 0 {
		if err := uow.PassageEmbeddingRepository().CreateBulk(ctx, newPassages); err != nil {
			log.Printf("[ERROR] Failed to create bulk passages: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.DocumentRepository().UpdateIndexStatus(ctx, doc.Id, "indexed"); err != nil {
		log.Printf("[ERROR] Failed to update index status: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Document indexed: %d passages for %s", len(newPassages), doc.Id)
	msg.Ack()
}
