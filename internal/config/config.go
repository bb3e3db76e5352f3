package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App         App         `mapstructure:"app"`
	AI          AI          `mapstructure:"ai"`
	Retrieval   Retrieval   `mapstructure:"retrieval"`
	Reranker    Reranker    `mapstructure:"reranker"`
	VectorStore VectorStore `mapstructure:"vector_store"`
	Server      Server      `mapstructure:"server"`
	TTS         TTS         `mapstructure:"tts"`
	Logging     Logging     `mapstructure:"logging"`
}

// App contains general application settings
type App struct {
	Debug      bool   `mapstructure:"debug"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI contains AI service configurations
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig contains Gemini generation and embedding settings
type GeminiConfig struct {
	APIKey              string  `mapstructure:"api_key"`
	Model               string  `mapstructure:"model"`
	EmbeddingModel      string  `mapstructure:"embedding_model"`
	EmbeddingDimensions int32   `mapstructure:"embedding_dimensions"`
	Temperature         float32 `mapstructure:"temperature"`
	MaxTokens           int32   `mapstructure:"max_tokens"`
	Timeout             string  `mapstructure:"timeout"`
}

// Retrieval sizes the candidate pools of the fast and deep retrieval paths
type Retrieval struct {
	FastPool           int `mapstructure:"fast_pool"`
	FastKeep           int `mapstructure:"fast_keep"`
	DeepPool           int `mapstructure:"deep_pool"`
	MinSelectionLength int `mapstructure:"min_selection_length"`
}

// Reranker selects and configures the relevance scorer used on the fast path
type Reranker struct {
	Provider string `mapstructure:"provider"` // lexical, cross_encoder
	URL      string `mapstructure:"url"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	Timeout  string `mapstructure:"timeout"`
}

// VectorStore selects the nearest-neighbour backend
type VectorStore struct {
	Provider         string       `mapstructure:"provider"` // pgvector, qdrant, memory
	ConnectionString string       `mapstructure:"connection_string"`
	Qdrant           QdrantConfig `mapstructure:"qdrant"`
}

// QdrantConfig contains Qdrant REST settings
type QdrantConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	Collection string `mapstructure:"collection"`
	Timeout    string `mapstructure:"timeout"`
}

// Server contains HTTP server settings
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORS          `mapstructure:"cors"`
}

// CORS contains cross-origin settings for the HTTP server
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TTS contains speech synthesis settings
type TTS struct {
	Provider        string          `mapstructure:"provider"` // azure, openai, mock
	HostVoice       string          `mapstructure:"host_voice"`
	AnalystVoice    string          `mapstructure:"analyst_voice"`
	Speed           float64         `mapstructure:"speed"`
	OutputDirectory string          `mapstructure:"output_directory"`
	Timeout         string          `mapstructure:"timeout"`
	Azure           AzureTTSConfig  `mapstructure:"azure"`
	OpenAI          OpenAITTSConfig `mapstructure:"openai"`
}

// AzureTTSConfig contains Azure OpenAI speech deployment settings
type AzureTTSConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Endpoint   string `mapstructure:"endpoint"`
	Deployment string `mapstructure:"deployment"`
	APIVersion string `mapstructure:"api_version"`
}

// OpenAITTSConfig contains OpenAI speech settings
type OpenAITTSConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load initializes and loads the configuration from all sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".insightcast")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration instance
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default values for all configuration options
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".insightcast")

	viper.SetDefault("ai.gemini.model", "gemini-1.5-flash-latest")
	viper.SetDefault("ai.gemini.embedding_model", "text-embedding-004")
	viper.SetDefault("ai.gemini.embedding_dimensions", 768)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.timeout", "60s")

	viper.SetDefault("retrieval.fast_pool", 100)
	viper.SetDefault("retrieval.fast_keep", 30)
	viper.SetDefault("retrieval.deep_pool", 200)
	viper.SetDefault("retrieval.min_selection_length", 3)

	viper.SetDefault("reranker.provider", "lexical")
	viper.SetDefault("reranker.model", "cross-encoder/ms-marco-MiniLM-L6-v2")
	viper.SetDefault("reranker.timeout", "30s")

	viper.SetDefault("vector_store.provider", "pgvector")
	viper.SetDefault("vector_store.qdrant.url", "http://localhost:6333")
	viper.SetDefault("vector_store.qdrant.collection", "document_insights")
	viper.SetDefault("vector_store.qdrant.timeout", "30s")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "180s")
	viper.SetDefault("server.request_timeout", "180s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.cors.enabled", true)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	viper.SetDefault("tts.provider", "azure")
	viper.SetDefault("tts.host_voice", "fable")
	viper.SetDefault("tts.analyst_voice", "nova")
	viper.SetDefault("tts.speed", 1.0)
	viper.SetDefault("tts.output_directory", "audio")
	viper.SetDefault("tts.timeout", "60s")
	viper.SetDefault("tts.azure.api_version", "2025-03-01-preview")
	viper.SetDefault("tts.openai.model", "tts-1")
	viper.SetDefault("tts.openai.base_url", "https://api.openai.com/v1")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables binds environment variables to configuration keys
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
	})

	bindEnvKeys("vector_store.connection_string", []string{
		"DATABASE_URL",
		"PGVECTOR_URL",
	})

	bindEnvKeys("vector_store.qdrant.url", []string{"QDRANT_URL"})
	bindEnvKeys("vector_store.qdrant.api_key", []string{"QDRANT_API_KEY"})

	bindEnvKeys("reranker.url", []string{"RERANKER_URL"})
	bindEnvKeys("reranker.api_key", []string{"RERANKER_API_KEY"})

	bindEnvKeys("tts.azure.api_key", []string{"AZURE_TTS_KEY", "AZURE_OPENAI_API_KEY"})
	bindEnvKeys("tts.azure.endpoint", []string{"AZURE_TTS_ENDPOINT", "AZURE_OPENAI_ENDPOINT"})
	bindEnvKeys("tts.azure.deployment", []string{"AZURE_TTS_DEPLOYMENT"})
	bindEnvKeys("tts.azure.api_version", []string{"AZURE_TTS_API_VERSION"})
	bindEnvKeys("tts.openai.api_key", []string{"OPENAI_API_KEY"})

	bindEnvKeys("app.debug", []string{"DEBUG", "INSIGHTCAST_DEBUG"})
	bindEnvKeys("logging.level", []string{"LOG_LEVEL"})
}

// bindEnvKeys binds the first non-empty environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig handles path expansion and duration validation
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.TTS.OutputDirectory != "" {
		config.TTS.OutputDirectory = expandPath(config.TTS.OutputDirectory)
	}

	durations := map[string]string{
		"ai.gemini.timeout":           config.AI.Gemini.Timeout,
		"reranker.timeout":            config.Reranker.Timeout,
		"vector_store.qdrant.timeout": config.VectorStore.Qdrant.Timeout,
		"tts.timeout":                 config.TTS.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	if config.App.Debug {
		config.Logging.Level = "debug"
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig validates the configuration and returns helpful error messages
func validateConfig(config *Config) error {
	var errors []string

	if config.AI.Gemini.APIKey == "" {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.")
	}

	switch config.VectorStore.Provider {
	case "pgvector":
		if config.VectorStore.ConnectionString == "" {
			errors = append(errors, "pgvector requires a connection string. Set DATABASE_URL or vector_store.connection_string")
		}
	case "qdrant":
		if config.VectorStore.Qdrant.URL == "" {
			errors = append(errors, "qdrant requires vector_store.qdrant.url or QDRANT_URL")
		}
	case "memory":
	default:
		errors = append(errors, fmt.Sprintf("Unknown vector store provider: %s. Supported: pgvector, qdrant, memory", config.VectorStore.Provider))
	}

	switch config.Reranker.Provider {
	case "lexical", "none":
	case "cross_encoder":
		if config.Reranker.URL == "" {
			errors = append(errors, "cross_encoder reranker requires reranker.url or RERANKER_URL")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown reranker provider: %s. Supported: lexical, cross_encoder, none", config.Reranker.Provider))
	}

	switch config.TTS.Provider {
	case "azure", "openai", "mock":
	default:
		errors = append(errors, fmt.Sprintf("Unknown TTS provider: %s. Supported: azure, openai, mock", config.TTS.Provider))
	}

	r := config.Retrieval
	if r.FastPool <= 0 || r.FastKeep <= 0 || r.DeepPool <= 0 {
		errors = append(errors, "retrieval pool sizes must be positive")
	}
	if r.FastKeep > r.FastPool {
		errors = append(errors, fmt.Sprintf("retrieval.fast_keep (%d) cannot exceed retrieval.fast_pool (%d)", r.FastKeep, r.FastPool))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Duration parses a validated duration string, returning fallback when empty
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Convenience accessors

func GetAI() AI                   { return Get().AI }
func GetRetrieval() Retrieval     { return Get().Retrieval }
func GetVectorStore() VectorStore { return Get().VectorStore }
func GetServer() Server           { return Get().Server }
func GetTTS() TTS                 { return Get().TTS }
func GetLogging() Logging         { return Get().Logging }

func GetGeminiAPIKey() string { return Get().AI.Gemini.APIKey }
func IsDebugMode() bool       { return Get().App.Debug }

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
