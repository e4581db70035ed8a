package service

import (
	"context"
	"fmt"

	"docbox-be/internal/config"
	"docbox-be/internal/dto"
	"docbox-be/internal/pkg/logger"
	"docbox-be/internal/repository/contract"
	"docbox-be/internal/repository/specification"
	"docbox-be/internal/repository/unitofwork"
	"docbox-be/pkg/embedding"
	"docbox-be/pkg/llm"
	"docbox-be/pkg/rag"
	"docbox-be/pkg/rag/answer"
	"docbox-be/pkg/rag/decompose"
	"docbox-be/pkg/rag/engine"
	"docbox-be/pkg/rag/graphctx"
	"docbox-be/pkg/rag/scope"
	"docbox-be/pkg/rag/search"
	"docbox-be/pkg/rag/verify"

	"github.com/google/uuid"
)

type IRagService interface {
	Query(ctx context.Context, s rag.Scope, req *dto.QueryRequest) (*dto.QueryResponse, error)
	Search(ctx context.Context, s rag.Scope, req *dto.SearchRequest) ([]*dto.SearchResultDTO, error)
	ResolveCitation(ctx context.Context, s rag.Scope, passageId uuid.UUID) (*dto.ShowCitationResponse, error)
}

type ragService struct {
	uowFactory  unitofwork.RepositoryFactory
	embedder    embedding.EmbeddingProvider
	llmProvider llm.LLMProvider
	audit       engine.AuditSink
	sysLogger   logger.ILogger
	ragConfig   *config.RagConfig
}

func NewRagService(
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	audit engine.AuditSink,
	sysLogger logger.ILogger,
	ragConfig *config.RagConfig,
) IRagService {
	return &ragService{
		uowFactory:  uowFactory,
		embedder:    embedder,
		llmProvider: llmProvider,
		audit:       audit,
		sysLogger:   sysLogger,
		ragConfig:   ragConfig,
	}
}

// passageSearcher adapts the pgvector repository to the retriever's
// dense-search contract.
type passageSearcher struct {
	repo contract.PassageEmbeddingRepository
}

func (p *passageSearcher) SearchSimilar(ctx context.Context, queryVector []float32, organizationID uuid.UUID, topK int) ([]rag.Passage, error) {
	// Threshold 0 here: the retriever applies its own merged-score
	// threshold after the lexical pass.
	scored, err := p.repo.SearchSimilarWithScore(ctx, queryVector, topK, organizationID, 0)
	if err != nil {
		return nil, err
	}

	passages := make([]rag.Passage, 0, len(scored))
	for _, sp := range scored {
		passages = append(passages, rag.Passage{
			ID:         sp.Passage.Id,
			DocumentID: sp.Passage.DocumentId,
			SourceType: rag.SourceType(sp.Passage.DocumentClass),
			Text:       sp.Passage.Text,
			DenseScore: sp.Similarity,
			Tags: rag.AccessTags{
				SubjectID:      sp.Passage.SubjectId,
				OrganizationID: sp.Passage.OrganizationId,
				DocumentClass:  sp.Passage.DocumentClass,
			},
		})
	}
	return passages, nil
}

// edgeStore adapts the relation-edge repository to the graph augmenter's
// one-hop contract.
type edgeStore struct {
	repo contract.RelationEdgeRepository
}

func (e *edgeStore) Neighbors(ctx context.Context, nodeID uuid.UUID) ([]graphctx.Edge, error) {
	rows, err := e.repo.FindByNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	edges := make([]graphctx.Edge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, graphctx.Edge{
			ID:             row.Id,
			FromID:         row.FromId,
			FromName:       row.FromName,
			ToID:           row.ToId,
			ToName:         row.ToName,
			Relation:       row.Relation,
			OrganizationID: row.OrganizationId,
		})
	}
	return edges, nil
}

// newEngine assembles the retrieval pipeline for one request. Engines are
// cheap wiring structs; building one per request lets callers override
// top-k without mutating shared state.
func (c *ragService) newEngine(uow unitofwork.UnitOfWork, topK int) *engine.Engine {
	searchCfg := search.Config{
		DenseWeight:   c.ragConfig.DenseWeight,
		LexicalWeight: c.ragConfig.LexicalWeight,
		TopK:          c.ragConfig.TopK,
		Threshold:     c.ragConfig.ScoreThreshold,
	}
	if topK > 0 {
		searchCfg.TopK = topK
	}

	var verifierLLM llm.LLMProvider
	if c.ragConfig.VerifierLLM {
		verifierLLM = c.llmProvider
	}

	return engine.NewEngine(
		decompose.NewDecomposer(c.llmProvider),
		search.NewRetriever(c.embedder, &passageSearcher{repo: uow.PassageEmbeddingRepository()}, searchCfg),
		graphctx.NewAugmenter(&edgeStore{repo: uow.RelationEdgeRepository()}, c.sysLogger).WithMaxDepth(c.ragConfig.GraphDepth),
		answer.NewGenerator(c.llmProvider),
		verify.NewVerifier(verifierLLM, c.ragConfig.SupportThreshold),
		c.audit,
		c.sysLogger,
		engine.Config{
			MaxIterations:  c.ragConfig.MaxIterations,
			SessionTimeout: c.ragConfig.SessionTimeout,
		},
	)
}

func (c *ragService) Query(ctx context.Context, s rag.Scope, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	if req.SubjectId != nil {
		s.SubjectID = req.SubjectId
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	eng := c.newEngine(uow, req.TopK)

	session, err := eng.Ask(ctx, engine.Request{
		Question:      req.Question,
		Scope:         s,
		MaxIterations: req.MaxIterations,
	})
	if err != nil {
		return nil, err
	}

	citations := make([]dto.CitationDTO, 0, len(session.Citations))
	for _, cit := range session.Citations {
		citations = append(citations, dto.CitationDTO{
			PassageId:        cit.PassageID,
			SourceDocumentId: cit.DocumentID,
			Confidence:       cit.Confidence,
		})
	}

	traces := engine.Trace(session)
	traceDTOs := make([]dto.SubQueryTraceDTO, 0, len(traces))
	for _, t := range traces {
		traceDTOs = append(traceDTOs, dto.SubQueryTraceDTO{
			Text:           t.Text,
			IterationsUsed: t.IterationsUsed,
			FinalStatus:    string(t.FinalStatus),
		})
	}

	return &dto.QueryResponse{
		SessionId:     session.ID,
		Answer:        session.Answer,
		Confidence:    session.Confidence,
		Status:        string(session.Status),
		FailReason:    session.FailReason,
		Citations:     citations,
		SubQueryTrace: traceDTOs,
		CreatedAt:     session.CreatedAt,
	}, nil
}

// ResolveCitation maps a citation's passage id back to the source passage.
// The same scope rules apply as at retrieval time, so a citation can never
// be used to read a passage its holder could not have retrieved.
func (c *ragService) ResolveCitation(ctx context.Context, s rag.Scope, passageId uuid.UUID) (*dto.ShowCitationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	passage, err := uow.PassageEmbeddingRepository().FindOne(ctx,
		specification.ByID{ID: passageId},
		specification.ByOrganization{OrganizationId: s.OrganizationID},
	)
	if err != nil {
		return nil, err
	}
	if passage == nil {
		return nil, nil
	}

	tags := rag.AccessTags{
		SubjectID:      passage.SubjectId,
		OrganizationID: passage.OrganizationId,
		DocumentClass:  passage.DocumentClass,
	}
	if !scope.Allowed(s, tags) {
		return nil, fmt.Errorf("%w: passage %s is outside the requester's scope", rag.ErrScopeViolation, passageId)
	}

	return &dto.ShowCitationResponse{
		PassageId:        passage.Id,
		SourceDocumentId: passage.DocumentId,
		DocumentClass:    passage.DocumentClass,
		ChunkIndex:       passage.ChunkIndex,
		Text:             passage.Text,
	}, nil
}

func (c *ragService) Search(ctx context.Context, s rag.Scope, req *dto.SearchRequest) ([]*dto.SearchResultDTO, error) {
	if req.SubjectId != nil {
		s.SubjectID = req.SubjectId
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	searchCfg := search.Config{
		DenseWeight:   c.ragConfig.DenseWeight,
		LexicalWeight: c.ragConfig.LexicalWeight,
		TopK:          c.ragConfig.TopK,
		Threshold:     c.ragConfig.ScoreThreshold,
	}
	if req.TopK > 0 {
		searchCfg.TopK = req.TopK
	}
	retriever := search.NewRetriever(c.embedder, &passageSearcher{repo: uow.PassageEmbeddingRepository()}, searchCfg)

	passages, err := retriever.Retrieve(ctx, req.Query, s)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.SearchResultDTO, 0, len(passages))
	for _, p := range passages {
		results = append(results, &dto.SearchResultDTO{
			PassageId:        p.ID,
			SourceDocumentId: p.DocumentID,
			SourceType:       string(p.SourceType),
			Text:             p.Text,
			Score:            p.Score,
		})
	}
	return results, nil
}
