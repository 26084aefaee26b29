package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/scribe/internal/home"
	"github.com/jackzampolin/scribe/internal/providers"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("providers", defaults.Providers)
	viper.SetDefault("defaults", defaults.Defaults)

	// Environment variables with SCRIBE_ prefix
	viper.SetEnvPrefix("SCRIBE")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if dir, err := home.New(""); err == nil {
			viper.AddConfigPath(dir.Path())
		}
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. Used by watch
// mode so a key rotation or rate-limit change applies without a
// restart.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToRegistryConfig converts the config to a format suitable for
// providers.Registry. It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		Providers: make(map[string]providers.ProviderConfig),
	}

	for name, p := range c.Providers {
		cfg.Providers[name] = providers.ProviderConfig{
			Type:       p.Type,
			Model:      p.Model,
			APIKey:     ResolveEnvVars(p.APIKey),
			BaseURL:    p.BaseURL,
			RateLimit:  p.RateLimit,
			Timeout:    time.Duration(p.TimeoutSeconds) * time.Second,
			MaxRetries: p.MaxRetries,
			Enabled:    p.Enabled,
		}
	}

	return cfg
}

// ValidateProvider checks that the named provider exists, is enabled,
// and has a resolvable credential. Returning a configuration error
// here keeps the batch from ever starting with a missing key.
func (c *Config) ValidateProvider(name string) error {
	p, ok := c.Providers[name]
	if !ok {
		return providers.NewError(providers.KindConfiguration, "unknown OCR provider: %s", name)
	}
	if !p.Enabled {
		return providers.NewError(providers.KindConfiguration, "OCR provider %s is disabled", name)
	}
	if ResolveEnvVars(p.APIKey) == "" {
		if m := envVarPattern.FindStringSubmatch(p.APIKey); m != nil {
			return providers.NewError(providers.KindConfiguration,
				"missing API key for provider %s: environment variable %s is not set", name, m[1])
		}
		return providers.NewError(providers.KindConfiguration, "missing API key for provider %s", name)
	}
	return nil
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Scribe configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export MISTRAL_API_KEY=xxx OPENAI_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
