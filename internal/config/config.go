// Package config loads runtime configuration from defaults, an optional YAML file, a .env file
// and LEASING_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "LEASING_"
	defaultEnvFile    = ".env"
	defaultConfigName = "config"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Forms   FormsConfig   `mapstructure:"forms"`
	Contact ContactConfig `mapstructure:"contact"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Session SessionConfig `mapstructure:"session"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Environment     string        `mapstructure:"environment"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects where vehicle listings live.
type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
	SeedFile   string `mapstructure:"seed_file"`
}

// FormsConfig selects where per-form selection state lives.
type FormsConfig struct {
	Store string        `mapstructure:"store"`
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// ContactConfig configures the messaging handoff.
type ContactConfig struct {
	MessagingBaseURL string `mapstructure:"messaging_base_url"`
	FallbackNumber   string `mapstructure:"fallback_number"`
}

// PricingConfig configures the price calculator.
type PricingConfig struct {
	Currency      string `mapstructure:"currency"`
	FallbackBase  int64  `mapstructure:"fallback_base"`
	ComboDiscount bool   `mapstructure:"combo_discount"`
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	SigningKey string `mapstructure:"signing_key"`
	Secure     bool   `mapstructure:"secure"`
}

type AdminConfig struct {
	Token    string `mapstructure:"token"`
	BasePath string `mapstructure:"base_path"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	configFile   string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env path. An empty path disables dotenv loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithConfigFile reads the given YAML file; a missing explicit file is an error.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvMap injects explicit environment values. They take precedence over the process environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.sqlite_path", "leasing.db")
	v.SetDefault("storage.seed_file", "")

	v.SetDefault("forms.store", "memory")
	v.SetDefault("forms.ttl", 2*time.Hour)
	v.SetDefault("forms.redis.address", "localhost:6379")
	v.SetDefault("forms.redis.password", "")
	v.SetDefault("forms.redis.db", 0)
	v.SetDefault("forms.redis.prefix", "leasing:form:")

	v.SetDefault("contact.messaging_base_url", "https://wa.me")
	v.SetDefault("contact.fallback_number", "923105054025")

	v.SetDefault("pricing.currency", "AED")
	v.SetDefault("pricing.fallback_base", 1795)
	v.SetDefault("pricing.combo_discount", false)

	v.SetDefault("session.cookie_name", "LEASING_SESSION")
	v.SetDefault("session.signing_key", "")
	v.SetDefault("session.secure", false)

	v.SetDefault("admin.token", "")
	v.SetDefault("admin.base_path", "/admin")

	v.SetDefault("logging.level", "info")
}

// Load resolves configuration. Precedence: defaults < config file < .env < process env < env map.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	v := viper.New()
	setDefaults(v)

	if options.configFile != "" {
		v.SetConfigFile(options.configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	values, err := environment(options)
	if err != nil {
		return Config{}, err
	}
	for _, key := range v.AllKeys() {
		if val, ok := values[EnvName(key)]; ok {
			v.Set(key, val)
		}
	}
	if _, ok := values[EnvName("server.addr")]; !ok {
		if port := strings.TrimSpace(values["PORT"]); port != "" {
			v.Set("server.addr", ":"+port)
		}
	}
	if _, ok := values[EnvName("logging.level")]; !ok {
		if level := strings.TrimSpace(values["LOG_LEVEL"]); level != "" {
			v.Set("logging.level", level)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnvName maps a config key such as "forms.redis.address" to LEASING_FORMS_REDIS_ADDRESS.
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func environment(options loaderOptions) (map[string]string, error) {
	values := make(map[string]string)
	if options.envFile != "" {
		dotenv, err := godotenv.Read(options.envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", options.envFile, err)
		}
		for k, val := range dotenv {
			values[k] = val
		}
	}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			if k, val, ok := strings.Cut(entry, "="); ok && k != "" {
				values[k] = val
			}
		}
	}
	for k, val := range options.envMap {
		values[k] = val
	}
	return values, nil
}

func validate(cfg Config) error {
	var invalid []string

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		invalid = append(invalid, "server.addr")
	}
	switch cfg.Storage.Driver {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(cfg.Storage.SQLitePath) == "" {
			invalid = append(invalid, "storage.sqlite_path")
		}
	default:
		invalid = append(invalid, "storage.driver")
	}
	switch cfg.Forms.Store {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.Forms.Redis.Address) == "" {
			invalid = append(invalid, "forms.redis.address")
		}
	default:
		invalid = append(invalid, "forms.store")
	}
	if cfg.Forms.TTL <= 0 {
		invalid = append(invalid, "forms.ttl")
	}
	if u, err := url.Parse(cfg.Contact.MessagingBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "contact.messaging_base_url")
	}
	if strings.TrimSpace(cfg.Pricing.Currency) == "" {
		invalid = append(invalid, "pricing.currency")
	}
	if cfg.Pricing.FallbackBase < 0 {
		invalid = append(invalid, "pricing.fallback_base")
	}
	if !strings.HasPrefix(cfg.Admin.BasePath, "/") {
		invalid = append(invalid, "admin.base_path")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}
