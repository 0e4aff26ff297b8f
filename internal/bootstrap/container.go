package bootstrap

import (
	"log"

	"regulation-chat-be/internal/config"
	"regulation-chat-be/internal/controller"
	"regulation-chat-be/internal/pkg/logger"
	"regulation-chat-be/internal/repository/implementation"
	"regulation-chat-be/internal/repository/unitofwork"
	"regulation-chat-be/internal/service"
	"regulation-chat-be/pkg/embedding"
	"regulation-chat-be/pkg/fees"
	"regulation-chat-be/pkg/llm/factory"
	"regulation-chat-be/pkg/rag/response"
	"regulation-chat-be/pkg/rag/search"
	"regulation-chat-be/pkg/titles"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	IngestController controller.IIngestController

	// Background Services (Exposed for main.go to run)
	IngestService service.IIngestService

	// Shared Facades
	Logger logger.ILogger
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

	// 3. AI Providers
	var embeddingProvider embedding.Provider
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

	llmProvider := factory.NewFromConfig(cfg)
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Domain Facades
	titleService := titles.NewService()

	feeStore := fees.NewScheduleStore()
	if cfg.Fees.SchedulePath != "" {
		if err := feeStore.Init(cfg.Fees.SchedulePath); err != nil {
			log.Printf("[WARN] Fee schedule unavailable, structured answers disabled: %v", err)
		}
	}
	feeResponder := fees.NewResponder(feeStore)

	responseCache := newResponseCache(cfg, sysLogger)

	searchEngine := search.NewEngine(
		implementation.NewChunkRepository(db),
		embeddingProvider,
		titleService,
		sysLogger,
	)

	// 5. Services
	chatService := service.NewChatService(
		uowFactory,
		searchEngine,
		llmProvider,
		feeResponder,
		responseCache,
		sysLogger,
	)
	ingestService := service.NewIngestService(
		pubSub,
		uowFactory,
		embeddingProvider,
		cfg.Ingest.Workers,
		sysLogger,
	)

	// 6. Controllers
	chatController := controller.NewChatController(chatService)
	ingestController := controller.NewIngestController(ingestService, cfg.Ingest.CorpusDir)

	return &Container{
		ChatController:   chatController,
		IngestController: ingestController,
		IngestService:    ingestService,
		Logger:           sysLogger,
	}
}

func newResponseCache(cfg *config.Config, sysLogger logger.ILogger) response.Cache {
	if cfg.App.ResponseCacheKind == "redis" {
		opts, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("bootstrap", "invalid redis url, falling back to memory cache", map[string]interface{}{
				"error": err.Error(),
			})
			return response.NewMemoryCache(response.DefaultTTL, response.DefaultCapacity)
		}
		client := redis.NewClient(opts)
		log.Printf("[INFO] Using Response Cache: REDIS")
		return response.NewRedisCache(client, response.DefaultTTL)
	}
	log.Printf("[INFO] Using Response Cache: MEMORY")
	return response.NewMemoryCache(response.DefaultTTL, response.DefaultCapacity)
}
