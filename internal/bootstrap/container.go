package bootstrap

import (
	"context"
	"log"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/config"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/controller"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/handler"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/implementation"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/memory"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/service"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/websocket"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/bank"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/executor"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/extractor"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/intent"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/embedding"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/events"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/knowledge"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/llm/factory"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/nlu"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WsHandler    *handler.WsHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	userRepo := implementation.NewUserRepository(db)
	accountRepo := implementation.NewAccountRepository(db)
	cardRepo := implementation.NewCardRepository(db)
	loanRepo := implementation.NewLoanRepository(db)
	complaintRepo := implementation.NewComplaintRepository(db)
	knowledgeRepo := implementation.NewKnowledgeRepository(db)
	logRepo := implementation.NewConversationLogRepository(db)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	eventPublisher := events.NewPublisher(pubSub)

	// 3. AI Collaborators
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.ApiKey,
		cfg.Ai.OllamaEmbedModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.ApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	classifier := nlu.NewLLMClassifier(llmProvider, sysLogger)
	searcher := knowledge.NewSearcher(embeddingProvider, knowledgeRepo, knowledge.DefaultConfig(), sysLogger)

	// 4. Dialogue Engine
	sessionRepo := memory.NewSessionRepository(cfg.Dialogue.SessionTTL)
	bankService := bank.NewService(accountRepo, cardRepo, loanRepo, complaintRepo, searcher, sysLogger)

	engine := dialogue.NewEngine(
		sessionRepo,
		intent.NewRouter(classifier, cfg.Dialogue.IntentThreshold, sysLogger),
		extractor.New(classifier, sysLogger),
		executor.New(bankService, sysLogger),
		sysLogger,
		cfg.Dialogue.CollaboratorTimeout,
		cfg.Dialogue.OperationTimeout,
	)

	// 5. Redis (optional: enables cross-instance websocket fan-out)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// 6. WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 7. Services
	authService := service.NewAuthService(userRepo, accountRepo, cfg, sysLogger)
	assistantService := service.NewAssistantService(engine, logRepo, eventPublisher, sysLogger)
	consumerService := service.NewConsumerService(pubSub, wsHub, sysLogger)

	return &Container{
		AuthController:      controller.NewAuthController(authService),
		AssistantController: controller.NewAssistantController(assistantService),
		ConsumerService:     consumerService,
		WsHandler:           handler.NewWsHandler(wsHub, sysLogger),
		WebSocketHub:        wsHub,
		Logger:              sysLogger,
	}
}
