package bootstrap

import (
	"context"
	"log"

	"docbox-be/internal/config"
	"docbox-be/internal/controller"
	"docbox-be/internal/pkg/logger"
	"docbox-be/internal/pkg/serverutils"
	"docbox-be/internal/repository/unitofwork"
	"docbox-be/internal/service"
	"docbox-be/pkg/embedding"
	"docbox-be/pkg/llm/factory"

	pktNats "docbox-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	RagController      controller.IRagController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}
	// Query embeddings repeat across refinement iterations; cache them.
	embeddingProvider = embedding.NewCachedProvider(embeddingProvider, cfg.Ai.EmbedCacheTTL)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider:      cfg.Ai.LLMProvider,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OllamaModel:   cfg.Ai.LLMModel,
		HFApiKey:      cfg.Keys.HuggingFace,
		HFModel:       cfg.Ai.LLMModel,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Keys.IndexDocsTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IndexDocsTopic,
		uowFactory,
		embeddingProvider,
	)

	auditPublisher := service.NewAuditPublisher(natsPub, sysLogger)
	auditService := service.NewAuditService(uowFactory, natsSub, sysLogger)
	if natsSub != nil {
		go auditService.Start()
	}

	ragService := service.NewRagService(
		uowFactory,
		embeddingProvider,
		llmProvider,
		auditPublisher,
		sysLogger,
		&cfg.Rag,
	)
	documentService := service.NewDocumentService(uowFactory, publisherService)

	rateLimit := serverutils.RateLimitMiddleware(rdb, cfg.App.RateLimitPerMinute)

	// 4. Controllers
	return &Container{
		RagController:      controller.NewRagController(ragService, rateLimit),
		DocumentController: controller.NewDocumentController(documentService),

		ConsumerService: consumerService,
	}
}
