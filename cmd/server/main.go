package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"roommatch/internal/config"
	"roommatch/internal/handler"
	"roommatch/internal/repository"
	"roommatch/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("RoomMatch Recommendation Service")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	store, err := repository.NewPgStore(
		cfg.GetPostgreSQLDSN(),
		cfg.OpenAI.EmbeddingDimensions,
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	log.Println("✅ Connected to PostgreSQL database")

	userStore := repository.NewUserStore(store.DB())

	// Initialize OpenAI client
	aiClient := service.NewOpenAIClient(&cfg.OpenAI)
	if cfg.OpenAI.Enabled {
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Embedding model: %s", cfg.OpenAI.EmbeddingModel)
		log.Printf("   - Embedding dimensions: %d", cfg.OpenAI.EmbeddingDimensions)
		log.Printf("   - Chat Temperature: %.2f", cfg.OpenAI.ChatTemperature)
		log.Printf("   - Chat MaxTokens: %d", cfg.OpenAI.ChatMaxTokens)
	} else {
		log.Println("⚠️  OpenAI is disabled - query parsing, embeddings and scoring will not work")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Initialize services
	embedder := service.NewEmbedder(aiClient, cfg.OpenAI.EmbeddingDimensions)
	disambiguator := service.NewDisambiguator(aiClient)
	summarizer := service.NewSummarizer(aiClient, cfg.Match.SummaryMaxWords)
	roommateFilter := service.NewRoommateFilter(cfg.Filter)
	matcher := service.NewMatcher(store, embedder, aiClient, disambiguator, summarizer, roommateFilter, cfg.Match)

	log.Println("✅ Services initialized")

	// Initialize handlers
	recommendHandler := handler.NewRecommendHandler(matcher)
	ingestHandler := handler.NewIngestHandler(store, embedder, cfg.OpenAI.BatchSize)
	userHandler := handler.NewUserHandler(userStore, 20, 100)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "roommatch",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Recommendation endpoints
		apiV1.POST("/recommend/apartments", recommendHandler.RecommendApartments)
		apiV1.POST("/recommend/apartments/stream", recommendHandler.RecommendApartmentsStream)
		apiV1.POST("/recommend/roommates", recommendHandler.RecommendRoommates)

		// Collection ingestion and maintenance
		apiV1.POST("/collections/:name/records", ingestHandler.Upsert)
		apiV1.GET("/collections/:name/count", ingestHandler.Count)
		apiV1.DELETE("/collections/:name", ingestHandler.Reset)

		// User identity endpoints
		apiV1.POST("/users", userHandler.SaveUser)
		apiV1.GET("/users/recent", userHandler.RecentUsers)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API root: http://localhost:%d/api/v1", cfg.Server.Port)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
