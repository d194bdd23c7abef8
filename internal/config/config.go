package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Match      MatchConfig
	Filter     FilterConfig
	OpenAI     OpenAIConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// MatchConfig holds the matching pipeline configuration
type MatchConfig struct {
	ApartmentsCollection string
	RoommatesCollection  string
	RetrieveApartments   int // candidates fetched per apartment query
	RetrieveRoommates    int // candidates fetched per roommate query
	TopK                 int // final ranked results returned
	MaxTopK              int
	SummaryMaxWords      int
	SummarizeDescriptions bool
}

// FilterConfig holds the keyword lists for the deterministic roommate
// pre-filter. The lists are configuration on purpose: they were chosen ad hoc
// and both over- and under-exclude, so deployments tune them instead of
// patching code.
type FilterConfig struct {
	RigidRoutinePatterns []string
	PetAllergyTerms      []string
	NoiseSensitiveTerms  []string
	EarlySleepTokens     []string
	PetDemandTerms       []string
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatTopP            float64
	ChatMaxTokens       int
	ChatExtraBody       string // JSON string for extra_body
	EmbeddingModel      string
	EmbeddingDimensions int
	EmbeddingExtraBody  string
	BatchSize           int
	Timeout             int
	Enabled             bool
}

// Default filter keyword lists, matching the coarse patterns the matching
// rules were originally tuned with.
var (
	defaultRigidPatterns = []string{
		`\bhighly conscientious\b`,
		`\bhigh conscientiousness\b`,
		`\bvery conscientious\b`,
		`\bhigh in conscientiousness\b`,
		`\bstrict routine\b`,
		`\bvery strict\b`,
		`\bhighly structured\b`,
		`\bvery structured\b`,
		`\bstructured routine\b`,
		`\bregimented\b`,
		`\bstick(s)? to routine\b`,
	}
	defaultPetAllergyTerms     = []string{"allergic", "pet allergic", "no dogs", "no pets"}
	defaultNoiseSensitiveTerms = []string{"noise sensitive", "noise-sensitive"}
	defaultEarlySleepTokens    = []string{"9:", "9pm", "10:", "10pm"}
	defaultPetDemandTerms      = []string{"dog", "dogs", "cat", "cats", "pet", "pets"}
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "roommatch"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Match: MatchConfig{
			ApartmentsCollection:  getEnv("MATCH_APARTMENTS_COLLECTION", "apartments"),
			RoommatesCollection:   getEnv("MATCH_ROOMMATES_COLLECTION", "students"),
			RetrieveApartments:    getEnvAsInt("MATCH_RETRIEVE_APARTMENTS", 5),
			RetrieveRoommates:     getEnvAsInt("MATCH_RETRIEVE_ROOMMATES", 10),
			TopK:                  getEnvAsInt("MATCH_TOP_K", 3),
			MaxTopK:               getEnvAsInt("MATCH_MAX_TOP_K", 10),
			SummaryMaxWords:       getEnvAsInt("MATCH_SUMMARY_MAX_WORDS", 50),
			SummarizeDescriptions: getEnvAsBool("MATCH_SUMMARIZE_DESCRIPTIONS", true),
		},
		Filter: FilterConfig{
			RigidRoutinePatterns: getEnvAsList("FILTER_RIGID_PATTERNS", defaultRigidPatterns),
			PetAllergyTerms:      getEnvAsList("FILTER_PET_ALLERGY_TERMS", defaultPetAllergyTerms),
			NoiseSensitiveTerms:  getEnvAsList("FILTER_NOISE_TERMS", defaultNoiseSensitiveTerms),
			EarlySleepTokens:     getEnvAsList("FILTER_EARLY_SLEEP_TOKENS", defaultEarlySleepTokens),
			PetDemandTerms:       getEnvAsList("FILTER_PET_DEMAND_TERMS", defaultPetDemandTerms),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature:     getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			ChatTopP:            getEnvAsFloat("OPENAI_CHAT_TOP_P", 0.7),
			ChatMaxTokens:       getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 2048),
			ChatExtraBody:       getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 384),
			EmbeddingExtraBody:  getEnv("OPENAI_EMBEDDING_EXTRA_BODY", ""),
			BatchSize:           getEnvAsInt("OPENAI_BATCH_SIZE", 100),
			Timeout:             getEnvAsInt("OPENAI_TIMEOUT", 120),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %v", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsList reads a comma-separated list, trimming blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
