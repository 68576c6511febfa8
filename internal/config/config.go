package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Identity  IdentityConfig
	Render    RenderConfig
	Messaging MessagingConfig
	Storage   StorageConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// IdentityConfig holds the external identity provider connection.
// The provider issues HS256 access tokens; JWTSecret must match the
// provider's signing secret so tokens can be verified locally.
type IdentityConfig struct {
	BaseURL    string
	ServiceKey string
	JWTSecret  string
	Timeout    int // seconds
}

// RenderConfig holds the image render API connection and the template
// identifiers used for service order and quote receipts.
type RenderConfig struct {
	BaseURL       string
	APIKey        string
	OrderTemplate string
	QuoteTemplate string
	Timeout       int // seconds
}

// MessagingConfig holds the WhatsApp gateway connection
type MessagingConfig struct {
	BaseURL  string
	APIKey   string
	Instance string
	Timeout  int // seconds
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	PublicBaseURL         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistPaths    []string
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	// ReaperSchedule is the cron expression for the stuck-generation reaper
	ReaperSchedule string
	// GenerationTimeoutMinutes is how long a record may stay in the
	// generating state before the reaper marks it as failed
	GenerationTimeoutMinutes int
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TimeoutDuration returns the identity client timeout as duration
func (i *IdentityConfig) TimeoutDuration() time.Duration {
	return time.Duration(i.Timeout) * time.Second
}

// TimeoutDuration returns the render client timeout as duration
func (r *RenderConfig) TimeoutDuration() time.Duration {
	return time.Duration(r.Timeout) * time.Second
}

// TimeoutDuration returns the messaging client timeout as duration
func (m *MessagingConfig) TimeoutDuration() time.Duration {
	return time.Duration(m.Timeout) * time.Second
}

// GenerationTimeout returns the stuck-generation timeout as duration
func (j *JobsConfig) GenerationTimeout() time.Duration {
	return time.Duration(j.GenerationTimeoutMinutes) * time.Minute
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets fall back to conventional env var names when absent
	// from the config file
	if cfg.Identity.ServiceKey == "" {
		cfg.Identity.ServiceKey = v.GetString("IDENTITY_SERVICE_KEY")
	}
	if cfg.Identity.JWTSecret == "" {
		cfg.Identity.JWTSecret = v.GetString("IDENTITY_JWT_SECRET")
	}
	if cfg.Render.APIKey == "" {
		cfg.Render.APIKey = v.GetString("RENDER_API_KEY")
	}
	if cfg.Messaging.APIKey == "" {
		cfg.Messaging.APIKey = v.GetString("MESSAGING_API_KEY")
	}
	if cfg.Storage.CloudConnectionString == "" {
		cfg.Storage.CloudConnectionString = v.GetString("STORAGE_CLOUDCONNECTIONSTRING")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Gestao API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "gestao")
	v.SetDefault("database.user", "gestao_user")
	v.SetDefault("database.password", "gestao_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Identity provider defaults
	v.SetDefault("identity.baseURL", "http://localhost:9999")
	v.SetDefault("identity.timeout", 10)

	// Render API defaults
	v.SetDefault("render.baseURL", "https://get.renderform.io")
	v.SetDefault("render.orderTemplate", "")
	v.SetDefault("render.quoteTemplate", "")
	v.SetDefault("render.timeout", 30)

	// Messaging gateway defaults
	v.SetDefault("messaging.baseURL", "http://localhost:8081")
	v.SetDefault("messaging.instance", "default")
	v.SetDefault("messaging.timeout", 15)

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.publicBaseURL", "http://localhost:8080/files")
	v.SetDefault("storage.maxUploadSizeMB", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	// Job defaults: reap stuck generations every 5 minutes, 15 minute timeout
	v.SetDefault("jobs.reaperSchedule", "0 */5 * * * *")
	v.SetDefault("jobs.generationTimeoutMinutes", 15)
}
