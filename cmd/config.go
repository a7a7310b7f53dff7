package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Map environment variables to Viper keys for PostgreSQL
	viper.BindEnv("postgres.host", "POSTGRES_HOST")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.db", "POSTGRES_DB")

	// Map environment variables to Viper keys for Ollama
	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.BindEnv("ollama.embedding_model", "OLLAMA_EMBEDDING_MODEL")
	viper.BindEnv("ollama.generation_model", "OLLAMA_GENERATION_MODEL")

	// Map environment variables to Viper keys for MinIO and Server
	viper.BindEnv("minio.enabled", "MINIO_ENABLED")
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("minio.source_bucket", "MINIO_SOURCE_BUCKET")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Set default values for PostgreSQL
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.db", "faqrag")

	// Set default values for Ollama. The embedding model must produce
	// 384-dimension vectors to match the schema.
	viper.SetDefault("ollama.url", "http://localhost:11434/api")
	viper.SetDefault("ollama.embedding_model", "all-minilm")
	viper.SetDefault("ollama.generation_model", "llama3")

	// Set default values for MinIO and Server
	viper.SetDefault("minio.enabled", false)
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")
	viper.SetDefault("minio.source_bucket", "faq-sources")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "5s")

	// Set default values for the RAG pipeline
	viper.SetDefault("rag.top_k", 5)
	viper.SetDefault("rag.context_window", 4096)
	viper.SetDefault("rag.chars_per_token", 4)
	viper.SetDefault("rag.temperature", 0.3)
	viper.SetDefault("rag.chunk_size", 1000)
	viper.SetDefault("rag.chunk_overlap", 100)
}
