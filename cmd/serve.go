package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	httpHdlr "faqrag/handler/http"
	"faqrag/src/core/faqkb"
	"faqrag/src/core/queryrewrite"
	"faqrag/src/infrastructure/integrations/ollama"
	"faqrag/src/log"
	"faqrag/src/storage/minioctrl"
	"faqrag/src/storage/postgres/faqctrl"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the FAQ RAG server",
	Long:  `The serve command starts an HTTP server that provides ingestion, retrieval and streamed answer generation.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// initServices wires the full pipeline from configuration. Shared by the
// serve and evaluate commands.
func initServices() (*faqkb.Pipeline, *faqctrl.FAQService, *gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := faqctrl.NewFAQService(db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create FAQ store: %w", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	// No overall client timeout: chat responses stream for as long as
	// generation runs. Cancellation happens through request contexts.
	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{})
	provider := faqkb.NewOllamaProvider(oc,
		viper.GetString("ollama.embedding_model"),
		viper.GetString("ollama.generation_model"))

	indexing := faqkb.NewIndexingService(store, faqkb.NewFallbackEmbedder(provider), faqkb.IndexingConfig{
		ChunkSize:    viper.GetInt("rag.chunk_size"),
		ChunkOverlap: viper.GetInt("rag.chunk_overlap"),
	})
	retrieval := faqkb.NewRetrievalService(provider, store, viper.GetInt("rag.top_k"))
	generation := faqkb.NewGenerationService(provider, faqkb.GenerationConfig{
		ContextWindow: viper.GetInt("rag.context_window"),
		CharsPerToken: viper.GetInt("rag.chars_per_token"),
		Temperature:   viper.GetFloat64("rag.temperature"),
	})

	pipeline := faqkb.NewPipeline(queryrewrite.NewRewriter(), indexing, retrieval, generation)
	return pipeline, store, db, nil
}

func RunServer(cmd *cobra.Command, args []string) {
	pipeline, store, db, err := initServices()
	if err != nil {
		log.Error(err, "Failed to initialize services")
		return
	}

	// Source archiving is optional; the knowledge store works without it.
	var sources *minioctrl.SourceService
	if viper.GetBool("minio.enabled") {
		sources, err = minioctrl.NewSourceService(
			viper.GetString("minio.endpoint"),
			viper.GetString("minio.access_key"),
			viper.GetString("minio.secret_key"),
			viper.GetString("minio.source_bucket"),
			false,
		)
		if err != nil {
			log.Error(err, "Failed to create MinIO source service")
			return
		}
		if err := sources.EnsureBucketExists(context.Background()); err != nil {
			log.Error(err, "Failed to ensure source bucket exists")
			return
		}
	}

	handler := httpHdlr.NewHandler(pipeline, store, sources)

	// Setup gin router
	r := gin.Default()
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()
	log.Info("Server started", "port", viper.GetString("server.port"))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if sqlDB, err := db.DB(); err != nil {
		log.Error(err, "Failed to get underlying *sql.DB")
	} else if err := sqlDB.Close(); err != nil {
		log.Error(err, "Error closing database connection")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
