// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. Any dependency whose
// settings are absent degrades to "unavailable" rather than failing startup.
type Config struct {
	// Server settings
	Host               string
	Port               string
	Debug              bool
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Room provider (LiveKit-compatible) settings
	LiveKitURL       string
	LiveKitAPIKey    string
	LiveKitAPISecret string
	LiveKitMock      bool

	// Generation provider settings
	OpenAIAPIKey    string
	AnthropicAPIKey string
	DefaultLLM      string

	// Telephony settings
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	PublicURL         string

	// Event bus / snapshot store
	NATSURL   string
	NATSToken string
	RedisURL  string

	// Transfer housekeeping
	TransferRetention time.Duration
	CleanupInterval   time.Duration

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from the environment, consulting .env files
// first so local development matches deployed behavior.
func Load() *Config {
	if err := godotenv.Load(".env.local"); err != nil {
		godotenv.Load()
	}

	return &Config{
		// Server
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnv("PORT", "8000"),
		Debug:              getBoolEnv("DEBUG", false),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Room provider
		LiveKitURL:       getEnv("LIVEKIT_URL", ""),
		LiveKitAPIKey:    getEnv("LIVEKIT_API_KEY", ""),
		LiveKitAPISecret: getEnv("LIVEKIT_API_SECRET", ""),
		LiveKitMock:      getBoolEnv("LIVEKIT_MOCK", false),

		// Generation provider
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		DefaultLLM:      getEnv("DEFAULT_LLM", "openai"),

		// Telephony
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		PublicURL:         getEnv("PUBLIC_URL", ""),

		// Event bus / snapshot store
		NATSURL:   getEnv("NATS_URL", ""),
		NATSToken: getEnv("NATS_TOKEN", ""),
		RedisURL:  getEnv("REDIS_URL", ""),

		// Transfer housekeeping
		TransferRetention: getDurationEnv("TRANSFER_RETENTION", time.Hour),
		CleanupInterval:   getDurationEnv("CLEANUP_INTERVAL", 10*time.Minute),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// LiveKitConfigured reports whether the room provider can be used.
func (c *Config) LiveKitConfigured() bool {
	return c.LiveKitURL != "" && c.LiveKitAPIKey != "" && c.LiveKitAPISecret != ""
}

// TwilioConfigured reports whether the telephony bridge can be used.
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
