package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docbox-be/internal/dto"
	"docbox-be/internal/entity"
	"docbox-be/internal/repository/specification"
	"docbox-be/internal/repository/unitofwork"
	"docbox-be/pkg/rag"
	"docbox-be/pkg/rag/scope"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, s rag.Scope, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Show(ctx context.Context, s rag.Scope, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, s rag.Scope) ([]*dto.ListDocumentsResponse, error)
	Delete(ctx context.Context, s rag.Scope, id uuid.UUID) error
	Reindex(ctx context.Context, s rag.Scope, id uuid.UUID) error
	CreateRelationEdge(ctx context.Context, s rag.Scope, req *dto.CreateRelationEdgeRequest) (*dto.CreateRelationEdgeResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (c *documentService) Create(ctx context.Context, s rag.Scope, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	tags := rag.AccessTags{
		SubjectID:      req.SubjectId,
		OrganizationID: s.OrganizationID,
		DocumentClass:  req.DocumentClass,
	}
	if !scope.Allowed(s, tags) {
		return nil, fmt.Errorf("%w: requester role %q cannot create %s documents", rag.ErrScopeViolation, s.RequesterRole, req.DocumentClass)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	doc := entity.Document{
		Id:             uuid.New(),
		Title:          req.Title,
		Content:        req.Content,
		DocumentClass:  req.DocumentClass,
		SubjectId:      req.SubjectId,
		OrganizationId: s.OrganizationID,
		UploadedBy:     s.RequesterID,
		IndexStatus:    "pending",
		Metadata:       req.Metadata,
		CreatedAt:      time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishIndexDocumentMessage{
		DocumentId: doc.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.CreateDocumentResponse{
		Id: doc.Id,
	}, nil
}

func (c *documentService) Show(ctx context.Context, s rag.Scope, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOrganization{OrganizationId: s.OrganizationID},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil // Not found
	}

	tags := rag.AccessTags{
		SubjectID:      doc.SubjectId,
		OrganizationID: doc.OrganizationId,
		DocumentClass:  doc.DocumentClass,
	}
	if !scope.Allowed(s, tags) {
		return nil, fmt.Errorf("%w: document %s is outside the requester's scope", rag.ErrScopeViolation, id)
	}

	return &dto.ShowDocumentResponse{
		Id:            doc.Id,
		Title:         doc.Title,
		Content:       doc.Content,
		DocumentClass: doc.DocumentClass,
		SubjectId:     doc.SubjectId,
		IndexStatus:   doc.IndexStatus,
		Metadata:      doc.Metadata,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

func (c *documentService) List(ctx context.Context, s rag.Scope) ([]*dto.ListDocumentsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByOrganization{OrganizationId: s.OrganizationID},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ListDocumentsResponse, 0, len(docs))
	for _, doc := range docs {
		tags := rag.AccessTags{
			SubjectID:      doc.SubjectId,
			OrganizationID: doc.OrganizationId,
			DocumentClass:  doc.DocumentClass,
		}
		if !scope.Allowed(s, tags) {
			continue
		}
		res = append(res, &dto.ListDocumentsResponse{
			Id:            doc.Id,
			Title:         doc.Title,
			DocumentClass: doc.DocumentClass,
			IndexStatus:   doc.IndexStatus,
			CreatedAt:     doc.CreatedAt,
		})
	}
	return res, nil
}

func (c *documentService) Delete(ctx context.Context, s rag.Scope, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOrganization{OrganizationId: s.OrganizationID},
	)
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}

	tags := rag.AccessTags{
		SubjectID:      doc.SubjectId,
		OrganizationID: doc.OrganizationId,
		DocumentClass:  doc.DocumentClass,
	}
	if !scope.Allowed(s, tags) {
		return fmt.Errorf("%w: document %s is outside the requester's scope", rag.ErrScopeViolation, id)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.PassageEmbeddingRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, doc.Id); err != nil {
		return err
	}

	return uow.Commit()
}

// Reindex re-queues a document through the indexing pipeline, e.g. after a
// failed run or an embedding model change.
func (c *documentService) Reindex(ctx context.Context, s rag.Scope, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOrganization{OrganizationId: s.OrganizationID},
	)
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	tags := rag.AccessTags{
		SubjectID:      doc.SubjectId,
		OrganizationID: doc.OrganizationId,
		DocumentClass:  doc.DocumentClass,
	}
	if !scope.Allowed(s, tags) {
		return fmt.Errorf("%w: document %s is outside the requester's scope", rag.ErrScopeViolation, id)
	}

	if err := uow.DocumentRepository().UpdateIndexStatus(ctx, doc.Id, "pending"); err != nil {
		return err
	}

	msgJson, err := json.Marshal(dto.PublishIndexDocumentMessage{DocumentId: doc.Id})
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}

func (c *documentService) CreateRelationEdge(ctx context.Context, s rag.Scope, req *dto.CreateRelationEdgeRequest) (*dto.CreateRelationEdgeResponse, error) {
	if s.RequesterRole != "clinician" && s.RequesterRole != "admin" {
		return nil, fmt.Errorf("%w: requester role %q cannot write relation edges", rag.ErrScopeViolation, s.RequesterRole)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	edge := entity.RelationEdge{
		Id:             uuid.New(),
		FromId:         req.FromId,
		FromName:       req.FromName,
		ToId:           req.ToId,
		ToName:         req.ToName,
		Relation:       req.Relation,
		OrganizationId: s.OrganizationID,
		Properties:     req.Metadata,
		CreatedAt:      time.Now(),
	}

	if err := uow.RelationEdgeRepository().Create(ctx, &edge); err != nil {
		return nil, err
	}

	return &dto.CreateRelationEdgeResponse{
		Id: edge.Id,
	}, nil
}
