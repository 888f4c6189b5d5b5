package config

import (
	"fmt"
	"os"
	"strings"

	apperrors "graphite/backend/pkg/errors"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreNeo4j  = "neo4j"
)

// Auto-connection scopes
const (
	ConnectScopeBatch = "batch"
	ConnectScopeFull  = "full"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Graph store
	StoreBackend string
	SeedDemo     bool

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Recommendations
	DefaultViewerID string

	// Ingestion
	AutoConnectScope string

	// Layout
	LayoutWidth  float64
	LayoutHeight float64
	LayoutFPS    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", ""),
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		SeedDemo:         getEnvBool("SEED_DEMO", true),
		Neo4jURI:         getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:        getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:    getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:    getEnv("NEO4J_DATABASE", ""),
		DefaultViewerID:  getEnv("DEFAULT_VIEWER_ID", "vc-1"),
		AutoConnectScope: strings.ToLower(getEnv("AUTO_CONNECT_SCOPE", ConnectScopeFull)),
		LayoutWidth:      getEnvFloat("LAYOUT_WIDTH", 800),
		LayoutHeight:     getEnvFloat("LAYOUT_HEIGHT", 600),
		LayoutFPS:        getEnvInt("LAYOUT_FPS", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StoreNeo4j:
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMemory, StoreNeo4j, c.StoreBackend)
	}
	if c.AutoConnectScope != ConnectScopeBatch && c.AutoConnectScope != ConnectScopeFull {
		return fmt.Errorf("AUTO_CONNECT_SCOPE must be %q or %q, got %q", ConnectScopeBatch, ConnectScopeFull, c.AutoConnectScope)
	}
	if c.DefaultViewerID == "" {
		return apperrors.NewConfigMissingRequired("DEFAULT_VIEWER_ID")
	}
	if c.LayoutWidth <= 0 || c.LayoutHeight <= 0 {
		return fmt.Errorf("LAYOUT_WIDTH and LAYOUT_HEIGHT must be positive")
	}
	if c.LayoutFPS <= 0 || c.LayoutFPS > 120 {
		return fmt.Errorf("LAYOUT_FPS must be between 1 and 120")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesNeo4j reports whether the graph lives in an external Neo4j instance
func (c *Config) UsesNeo4j() bool {
	return c.StoreBackend == StoreNeo4j
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
