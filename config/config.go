package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Names of the downstream microservices the gateway can route to.
const (
	ServiceAuth   = "auth"
	ServiceBridge = "bridge"
	ServiceUser   = "user"
)

// KnownServices lists every service name accepted in the services section.
var KnownServices = []string{ServiceAuth, ServiceBridge, ServiceUser}

// Config holds all application configuration
type Config struct {
	Environment string                     `mapstructure:"environment"`
	Port        int                        `mapstructure:"port"`
	Server      ServerConfig               `mapstructure:"server"`
	Gateway     GatewayConfig              `mapstructure:"gateway"`
	RateLimit   RateLimitConfig            `mapstructure:"rate_limit"`
	Redis       RedisConfig                `mapstructure:"redis"`
	CORS        CORSConfig                 `mapstructure:"cors"`
	Services    map[string]ServiceEndpoint `mapstructure:"services"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// GatewayConfig holds the request routing and auth delegation settings
type GatewayConfig struct {
	ForwardTimeout      time.Duration `mapstructure:"forward_timeout"`
	ValidateTimeout     time.Duration `mapstructure:"validate_timeout"`
	PublicRoutes        []string      `mapstructure:"public_routes"`
	RejectExpiredTokens bool          `mapstructure:"reject_expired_tokens"`
	MaxBodyBytes        int64         `mapstructure:"max_body_bytes"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	RequestsPerMin  int           `mapstructure:"requests_per_min"`
	BurstSize       int           `mapstructure:"burst_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig holds Redis configuration. An empty host disables Redis.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// ServiceEndpoint represents a backend microservice
type ServiceEndpoint struct {
	BaseURL string `mapstructure:"base_url"`
}

// LoadConfig loads configuration from a .env file, config files and environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/api-gateway")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindServiceEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Services == nil {
		cfg.Services = make(map[string]ServiceEndpoint)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// General
	v.SetDefault("environment", "development")
	v.SetDefault("port", 3001)

	// Server; the write timeout has to outlast a full forward.
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 65*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	// Gateway
	v.SetDefault("gateway.forward_timeout", 50*time.Second)
	v.SetDefault("gateway.validate_timeout", 5*time.Second)
	v.SetDefault("gateway.public_routes", []string{"api/auth/login", "api/auth/register", "api/auth/refresh"})
	v.SetDefault("gateway.reject_expired_tokens", false)
	v.SetDefault("gateway.max_body_bytes", 50<<20)

	// Downstream services
	v.SetDefault("services.auth.base_url", "http://localhost:3002")
	v.SetDefault("services.bridge.base_url", "http://localhost:3003")
	v.SetDefault("services.user.base_url", "http://localhost:3004")

	// Rate Limiting
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_min", 600)
	v.SetDefault("rate_limit.burst_size", 60)
	v.SetDefault("rate_limit.cleanup_interval", 1*time.Minute)

	// Redis
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// CORS
	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Requested-With"})
	v.SetDefault("cors.expose_headers", []string{"Content-Length", "X-Request-ID"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 12*3600)
}

// bindServiceEnv maps the microservice URL variables used across the platform onto config keys.
func bindServiceEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"services.auth.base_url":   "AUTH_MICROSERVICE_URL",
		"services.bridge.base_url": "BRIDGE_MICROSERVICE_URL",
		"services.user.base_url":   "USER_MICROSERVICE_URL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("error binding %s: %w", env, err)
		}
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", cfg.Port)
	}

	if cfg.Gateway.ForwardTimeout <= 0 {
		return fmt.Errorf("forward timeout must be positive")
	}
	if cfg.Gateway.ValidateTimeout <= 0 {
		return fmt.Errorf("validate timeout must be positive")
	}
	if cfg.Gateway.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}

	for name, svc := range cfg.Services {
		if !isKnownService(name) {
			return fmt.Errorf("unknown service %q", name)
		}
		u, err := url.Parse(svc.BaseURL)
		if err != nil {
			return fmt.Errorf("service %s: invalid base url: %w", name, err)
		}
		if !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("service %s: base url must be absolute: %q", name, svc.BaseURL)
		}
	}
	for _, name := range KnownServices {
		if _, ok := cfg.Services[name]; !ok {
			return fmt.Errorf("missing base url for service %s", name)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerMin <= 0 {
			return fmt.Errorf("requests per minute must be positive")
		}
		if cfg.RateLimit.BurstSize <= 0 {
			return fmt.Errorf("burst size must be positive")
		}
		if cfg.RateLimit.CleanupInterval <= 0 {
			return fmt.Errorf("cleanup interval must be positive")
		}
	}

	return nil
}

func isKnownService(name string) bool {
	for _, known := range KnownServices {
		if known == name {
			return true
		}
	}
	return false
}

// ServiceURLs returns the configured base URL of every known service
func (c *Config) ServiceURLs() map[string]string {
	urls := make(map[string]string, len(c.Services))
	for name, svc := range c.Services {
		urls[name] = strings.TrimRight(svc.BaseURL, "/")
	}
	return urls
}
