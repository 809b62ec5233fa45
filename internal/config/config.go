package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Gateway     GatewayConfig
	Tracking    TrackingConfig
	Webhook     WebhookConfig
	BaseURL     BaseURLConfig
}

// GatewayConfig holds Blackcat gateway configuration
type GatewayConfig struct {
	APIKey  string
	BaseURL string
}

// TrackingConfig holds Utmify tracking service configuration
type TrackingConfig struct {
	APIToken    string
	BaseURL     string
	ProductID   string
	ProductName string
}

// WebhookConfig holds payment webhook configuration
type WebhookConfig struct {
	Token string
}

// BaseURLConfig holds the public base URL used for self-calls.
// The webhook adapter posts tracking records back through the
// deployment's own relay endpoint, so it needs an absolute URL.
type BaseURLConfig struct {
	Public     string
	Deployment string
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("BLACKCAT_API_URL", "https://api.blackcatpagamentos.online")
	viper.SetDefault("UTMIFY_API_URL", "https://api.utmify.com.br")
	viper.SetDefault("TRACKING_PRODUCT_ID", "oferta-principal")
	viper.SetDefault("TRACKING_PRODUCT_NAME", "Oferta Principal")

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Gateway: GatewayConfig{
			APIKey:  viper.GetString("BLACKCAT_API_KEY"),
			BaseURL: strings.TrimRight(viper.GetString("BLACKCAT_API_URL"), "/"),
		},
		Tracking: TrackingConfig{
			APIToken:    viper.GetString("UTMIFY_API_TOKEN"),
			BaseURL:     strings.TrimRight(viper.GetString("UTMIFY_API_URL"), "/"),
			ProductID:   viper.GetString("TRACKING_PRODUCT_ID"),
			ProductName: viper.GetString("TRACKING_PRODUCT_NAME"),
		},
		Webhook: WebhookConfig{
			Token: viper.GetString("BLACKCAT_WEBHOOK_TOKEN"),
		},
		BaseURL: BaseURLConfig{
			Public:     viper.GetString("PUBLIC_BASE_URL"),
			Deployment: viper.GetString("DEPLOYMENT_URL"),
		},
	}

	return config, nil
}

// HasGatewayKey reports whether the gateway API key is configured.
// Gateway-calling endpoints must fail with a configuration error
// before attempting any outbound call when the key is absent.
func (c *Config) HasGatewayKey() bool {
	return c.Gateway.APIKey != ""
}

// HasTrackingToken reports whether the Utmify API token is configured.
func (c *Config) HasTrackingToken() bool {
	return c.Tracking.APIToken != ""
}

// ResolveBaseURL returns the public base URL for self-calls: the explicit
// PUBLIC_BASE_URL if set, otherwise the platform-provided deployment
// hostname prefixed with https. Returns an error when neither is available.
func (c *Config) ResolveBaseURL() (string, error) {
	if c.BaseURL.Public != "" {
		return strings.TrimRight(c.BaseURL.Public, "/"), nil
	}
	if c.BaseURL.Deployment != "" {
		host := c.BaseURL.Deployment
		if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
			host = "https://" + host
		}
		return strings.TrimRight(host, "/"), nil
	}
	return "", fmt.Errorf("no public base URL configured (PUBLIC_BASE_URL or DEPLOYMENT_URL)")
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt gets an environment variable as integer with a fallback value
func GetEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
