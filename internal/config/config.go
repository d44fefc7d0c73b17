package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Index backends.
const (
	BackendRedis  = "redis"
	BackendQdrant = "qdrant"
)

// Config holds the docretriever configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Index     IndexConfig     `yaml:"index"`
	Redis     RedisConfig     `yaml:"redis"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig selects the vector index and the stored fields it exposes.
type IndexConfig struct {
	Backend          string   `yaml:"backend"` // redis, qdrant (default: redis)
	Name             string   `yaml:"name"`
	ContentField     string   `yaml:"content_field"`
	VectorField      string   `yaml:"vector_field"`
	MetadataFields   []string `yaml:"metadata_fields"`
	FetchK           int      `yaml:"fetch_k"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RedisConfig holds Redis/Valkey connection settings. Used by the redis backend and the embedding cache.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// EmbeddingConfig holds the query embedding provider settings.
type EmbeddingConfig struct {
	Provider         string       `yaml:"provider"`
	APIKey           string       `yaml:"api_key"`
	BaseURL          string       `yaml:"base_url"`
	Model            string       `yaml:"model"`
	Dimensions       int          `yaml:"dimensions"`
	QueryInstruction string       `yaml:"query_instruction"`
	TimeoutSec       int          `yaml:"timeout_sec"`
	Budget           BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
}

// CacheConfig holds embedding cache settings. The cache lives in Redis.
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	KeyPrefix string `yaml:"key_prefix"`
	TTLSec    int    `yaml:"ttl_sec"` // 0 = never expire
}

// RetrievalConfig holds retriever and routing settings.
type RetrievalConfig struct {
	DefaultRetriever string           `yaml:"default_retriever"`
	FilterPolicy     string           `yaml:"filter_policy"` // forward (default), drop
	MemberIDKey      string           `yaml:"member_id_key"`
	Partitions       PartitionsConfig `yaml:"partitions"`
	Retry            RetryConfig      `yaml:"retry"`
}

// PartitionsConfig names the routing keys and partitions.
type PartitionsConfig struct {
	Key        string `yaml:"key"`
	ScopingKey string `yaml:"scoping_key"`
	Scoped     string `yaml:"scoped"`
	Default    string `yaml:"default"`
}

// RetryConfig holds caller-level retry settings. Attempts <= 1 disables retries.
type RetryConfig struct {
	Attempts int `yaml:"attempts"`
	DelayMs  int `yaml:"delay_ms"`
}

// Delay returns the initial backoff delay.
func (r RetryConfig) Delay() time.Duration { return time.Duration(r.DelayMs) * time.Millisecond }

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// Timeout returns the per-request embedding timeout.
func (e EmbeddingConfig) Timeout() time.Duration { return time.Duration(e.TimeoutSec) * time.Second }

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Index.Backend == BackendRedis || c.Cache.Enabled
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
// A .env file in the working directory is loaded first; variables already set win.
func LoadFile(configPath string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Backend == "" {
		c.Index.Backend = BackendRedis
	}
	if c.Index.ContentField == "" {
		c.Index.ContentField = "content"
	}
	if c.Index.FetchK <= 0 {
		c.Index.FetchK = 20
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "docretriever:emb_cache:" + c.Embedding.Model + ":"
	}
	if c.Retrieval.DefaultRetriever == "" {
		c.Retrieval.DefaultRetriever = "semantic"
	}
	if c.Retrieval.FilterPolicy == "" {
		c.Retrieval.FilterPolicy = "forward"
	}
	if c.Retrieval.MemberIDKey == "" {
		c.Retrieval.MemberIDKey = "member_id"
	}
	if c.Retrieval.Retry.Attempts <= 0 {
		c.Retrieval.Retry.Attempts = 1
	}
	if c.Retrieval.Retry.DelayMs <= 0 {
		c.Retrieval.Retry.DelayMs = 100
	}
}

// Validate checks the configuration for correctness and reports every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	switch c.Index.Backend {
	case BackendRedis, BackendQdrant:
	default:
		result = multierror.Append(result,
			fmt.Errorf("index.backend must be %q or %q, got %q", BackendRedis, BackendQdrant, c.Index.Backend))
	}
	if c.Index.Name == "" {
		result = multierror.Append(result, errors.New("index.name is required"))
	}
	if c.UsesRedis() && len(c.Redis.Addrs) == 0 {
		result = multierror.Append(result, errors.New("redis.addrs is required for the redis backend or cache"))
	}
	if c.Index.Backend == BackendQdrant && c.Qdrant.URL == "" {
		result = multierror.Append(result, errors.New("qdrant.url is required for the qdrant backend"))
	}

	if c.Embedding.Model == "" {
		result = multierror.Append(result, errors.New("embedding.model is required"))
	}
	if c.Embedding.Dimensions < 0 {
		result = multierror.Append(result, fmt.Errorf("embedding.dimensions must be >= 0, got %d", c.Embedding.Dimensions))
	}

	switch c.Embedding.Budget.Action {
	case "", "warn", "reject":
	default:
		result = multierror.Append(result,
			fmt.Errorf("embedding.budget.action must be \"warn\" or \"reject\", got %q", c.Embedding.Budget.Action))
	}

	switch c.Retrieval.FilterPolicy {
	case "forward", "drop":
	default:
		result = multierror.Append(result,
			fmt.Errorf("retrieval.filter_policy must be \"forward\" or \"drop\", got %q", c.Retrieval.FilterPolicy))
	}
	if c.Cache.TTLSec < 0 {
		result = multierror.Append(result, fmt.Errorf("cache.ttl_sec must be >= 0, got %d", c.Cache.TTLSec))
	}

	return result.ErrorOrNil()
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
