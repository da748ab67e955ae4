package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/config"
	"elev8ai/assessment-api/internal/handlers"
	"elev8ai/assessment-api/internal/logger"
	"elev8ai/assessment-api/internal/repositories"
	"elev8ai/assessment-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	repo := repositories.NewCandidateRepository(db)

	// Artifact store
	ctx := context.Background()
	store, err := services.NewArtifactStore(
		ctx,
		cfg.Artifact.Endpoint,
		cfg.Artifact.Region,
		cfg.Artifact.AccessKey,
		cfg.Artifact.SecretKey,
		cfg.Artifact.Bucket,
		cfg.Artifact.MatrixKey,
		cfg.Artifact.UseSSL,
	)
	if err != nil {
		zlog.Fatal("failed to initialize artifact store", zap.Error(err))
	}

	// Gemini
	gemini, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel)
	if err != nil {
		zlog.Fatal("failed to initialize gemini client", zap.Error(err))
	}

	// Retrieval index
	index, err := services.NewIndexService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
	if err != nil {
		zlog.Fatal("failed to initialize retrieval index", zap.Error(err))
	}
	if err := index.InitCollection(); err != nil {
		zlog.Fatal("failed to initialize collection", zap.Error(err))
	}

	// Knowledge base (retrieval + generation + sync)
	parser := services.NewPDFParserService()
	chunker := services.NewTextChunker()
	kb := services.NewKnowledgeBase(store, parser, chunker, gemini, index, zlog)

	// Evaluation worker
	evaluator := services.NewEvaluatorService(repo, store, kb, zlog)
	worker := services.NewWorker(evaluator, cfg.Worker.Concurrency, zlog)
	worker.Start(ctx)

	chat := services.NewChatService(repo, store, kb, zlog)

	pollCfg := services.PollConfig{
		MaxAttempts: cfg.Sync.MaxAttempts,
		SettleDelay: cfg.Sync.SettleDelay,
		RetryDelay:  cfg.Sync.RetryDelay,
		Sleeper:     services.SystemSleeper{},
	}

	// Handlers
	uploadHandler := handlers.NewUploadHandler(repo, store, kb, worker, pollCfg, zlog)
	chatHandler := handlers.NewChatHandler(chat, zlog)
	historyHandler := handlers.NewHistoryHandler(repo, zlog)
	summaryHandler := handlers.NewSummaryHandler(repo, zlog)

	// Create Fiber app. Read/write timeouts leave room for the upload
	// workflow's polling loop, which occupies the whole request.
	app := fiber.New(fiber.Config{
		AppName:      "Competency Assessment API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.Sync.MaxAttempts)*(cfg.Sync.SettleDelay+cfg.Sync.RetryDelay) + time.Minute,
		BodyLimit:    32 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	app.Post("/upload", uploadHandler.HandleUpload)
	app.Post("/ask", chatHandler.HandleAsk)
	app.Get("/chat", historyHandler.HandleGetHistory)
	app.Post("/chat", historyHandler.HandleAppendTurn)
	app.Get("/summary", summaryHandler.HandleGetSummary)
	app.Get("/users", summaryHandler.HandleListUsers)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
