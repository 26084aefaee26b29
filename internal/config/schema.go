package config

// Config holds scribe configuration.
// Loaded from ./config.yaml or ~/.scribe/config.yaml.
type Config struct {
	Providers map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	Defaults  DefaultsCfg            `mapstructure:"defaults" yaml:"defaults"`
}

// ProviderCfg configures an OCR provider.
type ProviderCfg struct {
	Type           string  `mapstructure:"type" yaml:"type"`                       // "mistral-ocr", "openai-vision"
	Model          string  `mapstructure:"model" yaml:"model"`                     // Default model for this provider
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`                 // API key (supports ${ENV_VAR} syntax)
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url,omitempty"`     // Override API endpoint
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per second
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Per-request HTTP timeout
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`         // Transport retries for 429/5xx
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections for the ocr command.
type DefaultsCfg struct {
	Provider  string `mapstructure:"provider" yaml:"provider"`     // Default OCR provider name
	Model     string `mapstructure:"model" yaml:"model"`           // Default model identifier
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"` // Default output directory
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderCfg{
			"mistral": {
				Type:           "mistral-ocr",
				Model:          "mistral-ocr-latest",
				APIKey:         "${MISTRAL_API_KEY}",
				RateLimit:      6.0,
				TimeoutSeconds: 120,
				MaxRetries:     3,
				Enabled:        true,
			},
			"vision": {
				Type:           "openai-vision",
				Model:          "gpt-4o-mini",
				APIKey:         "${OPENAI_API_KEY}",
				RateLimit:      2.0,
				TimeoutSeconds: 120,
				MaxRetries:     3,
				Enabled:        false,
			},
		},
		Defaults: DefaultsCfg{
			Provider:  "mistral",
			Model:     "mistral-ocr-latest",
			OutputDir: ".",
		},
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	p, ok := c.Providers[name]
	return p, ok
}
