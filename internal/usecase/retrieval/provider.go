package retrieval

import (
	"slices"
	"sync"

	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
)

// SemanticName is the registered name of the semantic retriever.
const SemanticName = "semantic"

// Options configures retriever variants.
type Options struct {
	FilterPolicy FilterPolicy
	// MemberIDKey is stripped from every scope before it becomes a filter.
	MemberIDKey string
}

func (o Options) withDefaults() Options {
	if o.FilterPolicy == "" {
		o.FilterPolicy = FilterForward
	}
	if o.MemberIDKey == "" {
		o.MemberIDKey = scope.MemberIDKey
	}
	return o
}

// Factory builds a retriever variant.
type Factory func(opts Options) Retriever

// Provider selects a retriever implementation by name.
type Provider struct {
	opts      Options
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewProvider creates a provider with the semantic retriever registered.
func NewProvider(opts Options) *Provider {
	p := &Provider{
		opts:      opts.withDefaults(),
		factories: make(map[string]Factory),
	}
	p.Register(SemanticName, func(o Options) Retriever { return NewSemantic(o) })
	return p
}

// Register adds or replaces a variant under name.
func (p *Provider) Register(name string, f Factory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories[name] = f
}

// Get returns a new retriever for name, or UnsupportedRetrieverError.
func (p *Provider) Get(name string) (Retriever, error) {
	p.mu.RLock()
	f, ok := p.factories[name]
	p.mu.RUnlock()
	if !ok {
		return nil, &domain.UnsupportedRetrieverError{Name: name, Available: p.Names()}
	}
	return f(p.opts), nil
}

// Names lists registered variants in sorted order.
func (p *Provider) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.factories))
	for n := range p.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
