package providers

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// ProviderConfig is the resolved configuration for one provider, API
// key already expanded from the environment.
type ProviderConfig struct {
	Type       string  // "mistral-ocr" or "openai-vision"
	Model      string
	APIKey     string
	BaseURL    string
	RateLimit  float64
	Timeout    time.Duration
	MaxRetries int
	Enabled    bool
}

// RegistryConfig maps provider names to their configuration.
type RegistryConfig struct {
	Providers map[string]ProviderConfig
}

// Registry holds named OCR providers with thread-safe access.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	logger    *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger,
	}
}

// Configure instantiates providers from config. Disabled entries and
// entries with an unresolved API key are skipped; Get surfaces the
// precise reason when a skipped provider is requested.
func (r *Registry) Configure(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}
		if pc.APIKey == "" {
			r.logger.Warn("skipping provider with missing API key", "name", name, "type", pc.Type)
			continue
		}

		var p Provider
		switch pc.Type {
		case "mistral-ocr":
			p = NewMistralClient(MistralConfig{
				APIKey:     pc.APIKey,
				BaseURL:    pc.BaseURL,
				Model:      pc.Model,
				Timeout:    pc.Timeout,
				RateLimit:  pc.RateLimit,
				MaxRetries: pc.MaxRetries,
			})
		case "openai-vision":
			p = NewVisionClient(VisionConfig{
				APIKey:     pc.APIKey,
				BaseURL:    pc.BaseURL,
				Model:      pc.Model,
				Timeout:    pc.Timeout,
				RateLimit:  pc.RateLimit,
				MaxRetries: pc.MaxRetries,
			})
		default:
			r.logger.Warn("unknown provider type", "name", name, "type", pc.Type)
			continue
		}

		r.providers[name] = p
		r.logger.Debug("registered OCR provider", "name", name, "type", pc.Type)
	}
}

// Register adds a provider by name, replacing any existing entry.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, NewError(KindConfiguration, "OCR provider not available: %s", name)
	}
	return p, nil
}

// Has checks if a provider is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}

// Dynamic returns a Provider that resolves name from the registry on
// every call, so a Configure after a config reload takes effect for
// sessions already holding the handle.
func (r *Registry) Dynamic(name string) Provider {
	return &dynamicProvider{registry: r, name: name}
}

type dynamicProvider struct {
	registry *Registry
	name     string
}

func (d *dynamicProvider) Name() string {
	return d.name
}

func (d *dynamicProvider) Process(ctx context.Context, req *Request) (*Result, error) {
	p, err := d.registry.Get(d.name)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, req)
}

func (d *dynamicProvider) RequestsPerSecond() float64 {
	if p, err := d.registry.Get(d.name); err == nil {
		return p.RequestsPerSecond()
	}
	return 0
}

func (d *dynamicProvider) MaxRetries() int {
	if p, err := d.registry.Get(d.name); err == nil {
		return p.MaxRetries()
	}
	return 0
}

func (d *dynamicProvider) RetryDelayBase() time.Duration {
	if p, err := d.registry.Get(d.name); err == nil {
		return p.RetryDelayBase()
	}
	return 0
}

var _ Provider = (*dynamicProvider)(nil)

// List returns registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
