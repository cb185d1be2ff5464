package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/paperdex/paperdex/internal/config"
	"github.com/paperdex/paperdex/internal/embedding"
	"github.com/paperdex/paperdex/internal/llm"
	"github.com/paperdex/paperdex/internal/queue"
	"github.com/paperdex/paperdex/internal/repository"
	"github.com/paperdex/paperdex/internal/retrieval"
	"github.com/paperdex/paperdex/internal/service"
	"github.com/paperdex/paperdex/internal/vectorstore"
)

func SetupRouter(cfg *config.Config, db *gorm.DB, q *queue.Queue) (*gin.Engine, error) {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", healthCheck)
	r.GET("/ready", readinessCheck)
	r.GET("/live", livenessCheck)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":      "Paperdex",
			"version":      "1.0.0",
			"status":       "running",
			"health_check": "/health",
		})
	})

	docRepo := repository.NewDocumentRepository(db)
	store := vectorstore.NewStore(db)

	embedder := embedding.NewService(
		cfg.EmbeddingAPIKey,
		cfg.EmbeddingBaseURL,
		cfg.EmbeddingModel,
		cfg.EmbeddingDimensions,
	)

	llmClient, err := llm.New(llm.Config{
		Provider:      cfg.LLMProvider,
		Model:         cfg.LLMModel,
		APIKey:        cfg.LLMAPIKey(),
		OllamaBaseURL: cfg.OllamaBaseURL,
	})
	if err != nil {
		return nil, err
	}
	composer := retrieval.NewComposer(llmClient)

	ingestSvc := service.NewIngestService(docRepo, q, cfg.UploadDir, cfg.MaxUploadBytes())
	chatSvc := service.NewChatService(embedder, store, composer, cfg.RAGTopK)
	summarySvc := service.NewSummaryService(store, composer, cfg.SummaryTopKPerSection, cfg.SummaryFallbackTopK)

	docHandler := NewDocumentHandler(ingestSvc)
	chatHandler := NewChatHandler(chatSvc)
	summaryHandler := NewSummaryHandler(summarySvc)

	v1 := r.Group("/api/v1")
	{
		documents := v1.Group("/documents")
		{
			documents.GET("", docHandler.List)
			documents.POST("", docHandler.Upload)
			documents.GET("/:id", docHandler.Get)
			documents.GET("/:id/summary", summaryHandler.Summarize)
		}

		v1.GET("/jobs/:job_id", docHandler.Status)
		v1.POST("/chat", chatHandler.Ask)
	}

	return r, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "paperdex",
	})
}

func readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

func livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
