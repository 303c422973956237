package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docuchat-labs/docuchat/internal/api/handlers"
	"github.com/docuchat-labs/docuchat/internal/config"
	"github.com/docuchat-labs/docuchat/internal/conversation"
	"github.com/docuchat-labs/docuchat/internal/extract"
	"github.com/docuchat-labs/docuchat/internal/index"
	"github.com/docuchat-labs/docuchat/internal/jobs"
	"github.com/docuchat-labs/docuchat/internal/openai"
	"github.com/docuchat-labs/docuchat/internal/server"
	"github.com/docuchat-labs/docuchat/internal/service"
	"github.com/docuchat-labs/docuchat/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the docuchat API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required (set DOCUCHAT_OPENAI_API_KEY)")
	}

	// Initialize Sentry with tracing if a DSN is configured
	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
		Temperature:         cfg.Temperature,
		RequestsPerSecond:   cfg.EmbedRPS,
	})

	idx := index.NewMemoryIndex()
	registry := service.NewDocumentRegistry()
	convLog := conversation.NewLog()

	ingestSvc, err := service.NewIngestService(aiClient, idx, registry, cfg.PipelineSettings())
	if err != nil {
		return fmt.Errorf("failed to create ingest service: %w", err)
	}
	ingestSvc.SetConcurrency(cfg.IngestConcurrency)

	retriever := service.NewRetrieverService(aiClient, idx, cfg.MinScore)

	askSvc, err := service.NewAskService(retriever, aiClient, convLog, cfg.PipelineSettings())
	if err != nil {
		return fmt.Errorf("failed to create ask service: %w", err)
	}

	store := jobs.NewStore()
	processor := jobs.NewIngestWorker(store, ingestSvc)
	worker := jobs.NewWorker(processor, cfg.IngestPollInterval)
	go worker.Start(ctx)
	log.Println("ingest worker started")

	extractor := extract.NewPDFExtractor(cfg.PDFPageTimeout)

	routerCfg := server.RouterConfig{
		APIKey:           cfg.APIKey,
		DocumentsHandler: handlers.NewDocumentsHandler(store, registry, extractor, ingestSvc),
		AskHandler:       handlers.NewAskHandler(askSvc),
		HistoryHandler:   handlers.NewHistoryHandler(convLog),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
