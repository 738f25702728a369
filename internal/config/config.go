package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/shoprank/internal/domain/ranking"
)

// Config holds the shoprank API configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Weights       WeightsConfig       `yaml:"weights"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Explanation   ExplanationConfig   `yaml:"explanation"`
	Cache         CacheConfig         `yaml:"cache"`
	Complementary ComplementaryConfig `yaml:"complementary"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig locates the static catalog source and the precomputed
// embedding matrix. Both are loaded together at startup.
type CatalogConfig struct {
	ProductsPath   string `yaml:"products_path"`
	EmbeddingsPath string `yaml:"embeddings_path"`
}

// RetrievalConfig holds candidate pool and pagination settings.
type RetrievalConfig struct {
	PoolSize     int `yaml:"pool_size"`
	WidenFactor  int `yaml:"widen_factor"`
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// WeightsConfig holds the scoring model blend, externally configurable
// without code change.
type WeightsConfig struct {
	Semantic   float64 `yaml:"semantic"`
	Price      float64 `yaml:"price"`
	Popularity float64 `yaml:"popularity"`
	Rating     float64 `yaml:"rating"`
}

// EmbeddingConfig holds the query embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// ThresholdsConfig holds the sub-score cutoffs for highlight tags.
type ThresholdsConfig struct {
	Semantic   float64 `yaml:"semantic"`
	Rating     float64 `yaml:"rating"`
	Price      float64 `yaml:"price"`
	Popularity float64 `yaml:"popularity"`
}

// ExplanationConfig holds text-generation settings for ranked-result
// explanations. Disabled or failing generation falls back to templates.
type ExplanationConfig struct {
	Enabled       bool             `yaml:"enabled"`
	APIKey        string           `yaml:"api_key"`
	BaseURL       string           `yaml:"base_url"`
	Model         string           `yaml:"model"`
	TimeoutSec    int              `yaml:"timeout_sec"`
	MaxConcurrent int              `yaml:"max_concurrent"`
	RatePerSec    float64          `yaml:"rate_per_sec"`
	Thresholds    ThresholdsConfig `yaml:"thresholds"`
}

// CacheConfig holds the optional query-embedding cache settings.
// Empty addrs disables the cache entirely.
type CacheConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// ComplementaryConfig overrides the built-in category adjacency map.
type ComplementaryConfig struct {
	Adjacency map[string][]string `yaml:"adjacency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Retrieval.PoolSize <= 0 {
		c.Retrieval.PoolSize = 100
	}
	if c.Retrieval.WidenFactor <= 0 {
		c.Retrieval.WidenFactor = 5
	}
	if c.Retrieval.DefaultLimit <= 0 {
		c.Retrieval.DefaultLimit = 20
	}
	if c.Retrieval.MaxLimit <= 0 {
		c.Retrieval.MaxLimit = 100
	}
	if isZeroWeights(c.Weights) {
		w := ranking.DefaultWeights()
		c.Weights = WeightsConfig{
			Semantic:   w.Semantic,
			Price:      w.Price,
			Popularity: w.Popularity,
			Rating:     w.Rating,
		}
	}
	if c.Explanation.TimeoutSec <= 0 {
		c.Explanation.TimeoutSec = 5
	}
	if c.Explanation.MaxConcurrent <= 0 {
		c.Explanation.MaxConcurrent = 8
	}
	if c.Explanation.RatePerSec <= 0 {
		c.Explanation.RatePerSec = 20
	}
	if c.Explanation.Thresholds == (ThresholdsConfig{}) {
		c.Explanation.Thresholds = ThresholdsConfig{
			Semantic:   0.70,
			Rating:     0.80,
			Price:      0.70,
			Popularity: 0.70,
		}
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 24 * 60 * 60
	}
}

// Validate checks the configuration for correctness. Weight validation
// happens here at startup, not per request.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.ProductsPath == "" {
		return fmt.Errorf("catalog.products_path is required")
	}
	if c.Catalog.EmbeddingsPath == "" {
		return fmt.Errorf("catalog.embeddings_path is required")
	}
	if err := c.RankingWeights().Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if c.Retrieval.DefaultLimit > c.Retrieval.MaxLimit {
		return fmt.Errorf("retrieval.default_limit %d exceeds max_limit %d",
			c.Retrieval.DefaultLimit, c.Retrieval.MaxLimit)
	}
	for _, th := range []struct {
		name  string
		value float64
	}{
		{"semantic", c.Explanation.Thresholds.Semantic},
		{"rating", c.Explanation.Thresholds.Rating},
		{"price", c.Explanation.Thresholds.Price},
		{"popularity", c.Explanation.Thresholds.Popularity},
	} {
		if th.value < 0 || th.value > 1 {
			return fmt.Errorf("explanation.thresholds.%s must be between 0 and 1, got %v", th.name, th.value)
		}
	}
	return nil
}

// RankingWeights converts the config weights to the domain type.
func (c *Config) RankingWeights() ranking.Weights {
	return ranking.Weights{
		Semantic:   c.Weights.Semantic,
		Price:      c.Weights.Price,
		Popularity: c.Weights.Popularity,
		Rating:     c.Weights.Rating,
	}
}

func isZeroWeights(w WeightsConfig) bool {
	return w.Semantic == 0 && w.Price == 0 && w.Popularity == 0 && w.Rating == 0
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
