package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.Driver != "memory" || cfg.Forms.Store != "memory" {
		t.Errorf("expected in-memory drivers, got %s/%s", cfg.Storage.Driver, cfg.Forms.Store)
	}
	if cfg.Forms.TTL != 2*time.Hour {
		t.Errorf("unexpected form ttl: %s", cfg.Forms.TTL)
	}
	if cfg.Contact.MessagingBaseURL != "https://wa.me" {
		t.Errorf("unexpected messaging base url: %s", cfg.Contact.MessagingBaseURL)
	}
	if cfg.Contact.FallbackNumber != "923105054025" {
		t.Errorf("unexpected fallback number: %s", cfg.Contact.FallbackNumber)
	}
	if cfg.Pricing.Currency != "AED" || cfg.Pricing.FallbackBase != 1795 {
		t.Errorf("unexpected pricing defaults: %+v", cfg.Pricing)
	}
	if cfg.Pricing.ComboDiscount {
		t.Errorf("combo discount must be off by default")
	}
	if cfg.Admin.BasePath != "/admin" {
		t.Errorf("unexpected admin base path: %s", cfg.Admin.BasePath)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"LEASING_SERVER_READ_TIMEOUT":    "5s",
		"LEASING_STORAGE_DRIVER":         "sqlite",
		"LEASING_STORAGE_SQLITE_PATH":    "/tmp/leasing.db",
		"LEASING_FORMS_STORE":            "redis",
		"LEASING_FORMS_REDIS_ADDRESS":    "redis:6379",
		"LEASING_FORMS_REDIS_DB":         "2",
		"LEASING_PRICING_COMBO_DISCOUNT": "true",
		"LEASING_PRICING_FALLBACK_BASE":  "1800",
		"LEASING_ADMIN_TOKEN":            "secret",
		"PORT":                           "9090",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected PORT fallback, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLitePath != "/tmp/leasing.db" {
		t.Errorf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Forms.Store != "redis" || cfg.Forms.Redis.Address != "redis:6379" || cfg.Forms.Redis.DB != 2 {
		t.Errorf("unexpected forms config: %+v", cfg.Forms)
	}
	if !cfg.Pricing.ComboDiscount || cfg.Pricing.FallbackBase != 1800 {
		t.Errorf("unexpected pricing: %+v", cfg.Pricing)
	}
	if cfg.Admin.Token != "secret" {
		t.Errorf("expected admin token override")
	}
}

func TestLoadExplicitAddrBeatsPort(t *testing.T) {
	env := map[string]string{"LEASING_SERVER_ADDR": "127.0.0.1:7000", "PORT": "9090"}
	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("expected explicit addr, got %s", cfg.Server.Addr)
	}
}

func TestLoadLogLevel(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{"LOG_LEVEL": "debug"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected LOG_LEVEL to set the level, got %s", cfg.Logging.Level)
	}

	env := map[string]string{"LEASING_LOGGING_LEVEL": "error", "LOG_LEVEL": "debug"}
	cfg, err = Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected prefixed variable to win, got %s", cfg.Logging.Level)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yaml := "pricing:\n  currency: USD\n  fallback_base: 1500\ncontact:\n  fallback_number: \"100\"\n"
	if err := os.WriteFile(configPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("LEASING_PRICING_FALLBACK_BASE=1600\nLEASING_CONTACT_FALLBACK_NUMBER=200\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(
		WithConfigFile(configPath),
		WithEnvFile(envPath),
		WithEnvMap(map[string]string{"LEASING_CONTACT_FALLBACK_NUMBER": "300"}),
		WithoutSystemEnv(),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pricing.Currency != "USD" {
		t.Errorf("expected currency from config file, got %s", cfg.Pricing.Currency)
	}
	if cfg.Pricing.FallbackBase != 1600 {
		t.Errorf("expected .env to beat config file, got %d", cfg.Pricing.FallbackBase)
	}
	if cfg.Contact.FallbackNumber != "300" {
		t.Errorf("expected env map to win, got %s", cfg.Contact.FallbackNumber)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "nope.yaml")), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadValidation(t *testing.T) {
	env := map[string]string{
		"LEASING_STORAGE_DRIVER":             "postgres",
		"LEASING_FORMS_STORE":                "redis",
		"LEASING_FORMS_REDIS_ADDRESS":        "",
		"LEASING_CONTACT_MESSAGING_BASE_URL": "wa.me",
	}
	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{"storage.driver": true, "forms.redis.address": true, "contact.messaging_base_url": true}
	fields := verr.Fields()
	if len(fields) != len(want) {
		t.Fatalf("unexpected invalid fields: %v", fields)
	}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected invalid field %s", f)
		}
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName("forms.redis.address"); got != "LEASING_FORMS_REDIS_ADDRESS" {
		t.Fatalf("unexpected env name: %s", got)
	}
}
