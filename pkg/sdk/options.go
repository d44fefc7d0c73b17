package docretriever

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "redis" or "qdrant"
	addrs    []string
	url      string
	password string

	index          string
	contentField   string
	vectorField    string
	metadataFields []string
	fetchK         int

	embedder   Embedder
	dropFilter bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis connects to a Redis 8+ or Valkey instance with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithQdrant connects to a Qdrant instance over gRPC. url is the REST URL;
// the gRPC port is derived from it.
func WithQdrant(url, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "qdrant"
		c.url = url
		c.password = apiKey
	})
}

// WithIndex sets the FT index (Redis) or collection (Qdrant) name. Required.
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = name
	})
}

// WithFields names the stored content and vector fields.
// Empty values keep the defaults ("content" and the backend's vector).
func WithFields(content, vector string) Option {
	return optionFunc(func(c *clientConfig) {
		c.contentField = content
		c.vectorField = vector
	})
}

// WithMetadataFields limits the metadata returned with each document.
func WithMetadataFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.metadataFields = fields
	})
}

// WithFetchK sets the candidate pool size for diversity selection. Default: 20.
func WithFetchK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.fetchK = k
	})
}

// WithEmbedder sets the query embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithoutFilter builds scope predicates but queries the whole index.
func WithoutFilter() Option {
	return optionFunc(func(c *clientConfig) {
		c.dropFilter = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
