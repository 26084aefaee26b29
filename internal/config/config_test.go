package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/scribe/internal/providers"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	mistral, ok := cfg.GetProvider("mistral")
	if !ok {
		t.Fatal("expected mistral provider in defaults")
	}
	if mistral.APIKey != "${MISTRAL_API_KEY}" {
		t.Errorf("APIKey = %q, want env placeholder", mistral.APIKey)
	}
	if !mistral.Enabled {
		t.Error("expected mistral enabled by default")
	}
	if cfg.Defaults.Provider != "mistral" {
		t.Errorf("default provider = %q", cfg.Defaults.Provider)
	}
	if cfg.Defaults.Model != "mistral-ocr-latest" {
		t.Errorf("default model = %q", cfg.Defaults.Model)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestValidateProvider(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderCfg{
			"mistral":  {Type: "mistral-ocr", APIKey: "${TEST_MISSING_MISTRAL_KEY}", Enabled: true},
			"literal":  {Type: "mistral-ocr", APIKey: "direct-key", Enabled: true},
			"disabled": {Type: "mistral-ocr", APIKey: "key", Enabled: false},
		},
	}

	t.Run("missing env var is a configuration error", func(t *testing.T) {
		err := cfg.ValidateProvider("mistral")
		if err == nil {
			t.Fatal("expected error")
		}
		if !providers.IsKind(err, providers.KindConfiguration) {
			t.Errorf("kind = %v, want configuration", providers.KindOf(err))
		}
		if !strings.Contains(err.Error(), "TEST_MISSING_MISTRAL_KEY") {
			t.Errorf("error should name the env var: %v", err)
		}
	})

	t.Run("literal key passes", func(t *testing.T) {
		if err := cfg.ValidateProvider("literal"); err != nil {
			t.Errorf("ValidateProvider() error = %v", err)
		}
	})

	t.Run("disabled provider rejected", func(t *testing.T) {
		if err := cfg.ValidateProvider("disabled"); err == nil {
			t.Error("expected error for disabled provider")
		}
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		if err := cfg.ValidateProvider("nope"); err == nil {
			t.Error("expected error for unknown provider")
		}
	})
}

func TestToRegistryConfig(t *testing.T) {
	os.Setenv("TEST_SCRIBE_KEY", "resolved-key")
	defer os.Unsetenv("TEST_SCRIBE_KEY")

	cfg := &Config{
		Providers: map[string]ProviderCfg{
			"mistral": {
				Type:           "mistral-ocr",
				APIKey:         "${TEST_SCRIBE_KEY}",
				RateLimit:      6.0,
				TimeoutSeconds: 90,
				MaxRetries:     5,
				Enabled:        true,
			},
		},
	}

	rc := cfg.ToRegistryConfig()
	p, ok := rc.Providers["mistral"]
	if !ok {
		t.Fatal("expected mistral in registry config")
	}
	if p.APIKey != "resolved-key" {
		t.Errorf("APIKey = %q, want resolved-key", p.APIKey)
	}
	if p.Timeout.Seconds() != 90 {
		t.Errorf("Timeout = %v, want 90s", p.Timeout)
	}
	if p.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", p.MaxRetries)
	}
}

func TestWriteDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "${MISTRAL_API_KEY}") {
		t.Error("expected env var placeholder in written config")
	}
	if !strings.Contains(content, "mistral-ocr") {
		t.Error("expected provider type in written config")
	}
}
