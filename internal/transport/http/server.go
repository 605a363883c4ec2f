package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	appsvc "docuchat/internal/app"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	"docuchat/internal/extract"
	"docuchat/internal/platform/rabbitmq"
	"docuchat/internal/repository"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	cfg := app.Config

	userRepo := repository.NewUserRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	embeddingRepo := repository.NewEmbeddingRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	llmClient := ai.NewOpenAICompatibleClient()
	embedder := ai.NewBoundEmbedder(llmClient, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	})
	completer := ai.NewBoundChat(llmClient, ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.ChatModel,
	})
	ocr := ai.NewOCRExtractor(llmClient, ai.OCRConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.OCRModel,
	})

	extractor := extract.NewService(ocr, cfg.Ingest.MaxImageBytes, app.Logger)
	corpusCache := cache.NewCorpusCache(app.Redis, time.Duration(cfg.Redis.CorpusTTLSeconds)*time.Second)
	turnPublisher := rabbitmq.NewTurnPublisher(app.MQConn, cfg.RabbitMQ.MessagePersistQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	ingestService := appsvc.NewIngestService(
		docRepo,
		embeddingRepo,
		app.Blobs,
		extractor,
		embedder,
		corpusCache,
		appsvc.IngestLimits{
			MaxDocsPerUser:  cfg.Ingest.MaxDocsPerUser,
			MaxChunksPerDoc: cfg.Ingest.MaxChunksPerDoc,
			ChunkSize:       cfg.Ingest.ChunkSize,
			ChunkOverlap:    cfg.Ingest.ChunkOverlap,
			EmbedBatchSize:  cfg.Ingest.EmbedBatchSize,
			EmbedBatchDelay: time.Duration(cfg.Ingest.EmbedBatchDelayMs) * time.Millisecond,
		},
		app.Logger,
	)
	queryService := appsvc.NewQueryService(
		docRepo,
		embeddingRepo,
		messageRepo,
		embedder,
		completer,
		turnPublisher,
		corpusCache,
		cfg.Ingest.TopK,
		app.Logger,
	)

	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(ingestService, int64(cfg.Ingest.MaxUploadBytes))
	chatHandler := handler.NewChatHandler(queryService)
	healthHandler := handler.NewHealthHandler(app)

	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(cfg.Auth.JWTSecret), authHandler.Me)

	docGroup := v1.Group("/documents")
	docGroup.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	docGroup.POST("/upload", documentHandler.Upload)
	docGroup.POST("/link", documentHandler.CreateLink)
	docGroup.POST("/text", documentHandler.CreateText)
	docGroup.GET("", documentHandler.List)
	docGroup.DELETE("/:id", documentHandler.Delete)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	chatGroup.POST("/ask", chatHandler.Ask)
	chatGroup.GET("/history", chatHandler.History)

	return router
}
