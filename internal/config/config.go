package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Site     SiteConfig     `mapstructure:"site"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Lead     LeadConfig     `mapstructure:"lead"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Email    EmailConfig    `mapstructure:"email"`
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// SiteConfig holds static site configuration
type SiteConfig struct {
	// PublicDir is the directory the static landing pages are served from
	PublicDir string `mapstructure:"public_dir"`
	// AssetsDir holds server-only assets such as the purchase PDF
	AssetsDir string `mapstructure:"assets_dir"`
	// ThankYouPath is the page visitors land on after a captured lead
	ThankYouPath string `mapstructure:"thank_you_path"`
}

// CheckoutConfig holds the hosted checkout configuration
type CheckoutConfig struct {
	// URL is the hosted Stripe checkout page. Empty disables checkout links.
	URL string `mapstructure:"url"`
}

// SupabaseConfig holds the hosted lead database configuration
type SupabaseConfig struct {
	// URL is the project base URL, e.g. "https://xyz.supabase.co".
	// Empty disables lead persistence (submissions still redirect).
	URL string `mapstructure:"url"`
	// AnonKey is the anonymous API key used for REST inserts and OTP dispatch
	AnonKey string `mapstructure:"anon_key"`
	// Table is the lead table name
	Table string `mapstructure:"table"`
}

// Enabled reports whether the hosted lead store is usable.
func (c SupabaseConfig) Enabled() bool {
	return c.URL != "" && c.AnonKey != ""
}

// DatabaseConfig holds the optional local PostgreSQL lead archive
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LeadConfig holds lead capture behavior
type LeadConfig struct {
	// InsertTimeout bounds the hosted-table insert; the losing call is cancelled
	InsertTimeout time.Duration `mapstructure:"insert_timeout"`
	// OTPTimeout bounds the passcode dispatch call
	OTPTimeout time.Duration `mapstructure:"otp_timeout"`
	// RescueTTL is how long a rescue-session marker suppresses a replayed insert
	RescueTTL time.Duration `mapstructure:"rescue_ttl"`
	// DefaultRedirect is used when neither the request nor the form names one
	DefaultRedirect string `mapstructure:"default_redirect"`
}

// StripeConfig holds payment provider configuration
type StripeConfig struct {
	// SecretKey is the Stripe API secret key
	SecretKey string `mapstructure:"secret_key"`
	// WebhookSecret is the endpoint signing secret used to verify inbound events
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// EmailConfig holds email sending configuration
type EmailConfig struct {
	// Provider is the email provider to use: "resend" or "gmail"
	Provider string `mapstructure:"provider"`
	// SenderAddress is the "From" email address (must be a verified domain)
	SenderAddress string `mapstructure:"sender_address"`
	// SenderName is the display name for the sender
	SenderName string `mapstructure:"sender_name"`
	// Resend holds Resend API configuration
	Resend ResendEmailConfig `mapstructure:"resend"`
	// Gmail holds Gmail API configuration
	Gmail GmailEmailConfig `mapstructure:"gmail"`
	// Guide is the purchase fulfillment attachment
	Guide GuideConfig `mapstructure:"guide"`
}

// ResendEmailConfig holds Resend API configuration
type ResendEmailConfig struct {
	// APIKey authenticates against the Resend HTTP API
	APIKey string `mapstructure:"api_key"`
}

// GmailEmailConfig holds Gmail API configuration
type GmailEmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID string `mapstructure:"client_id"`
	// ClientSecret for OAuth2 token-based auth
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken for OAuth2 token-based auth
	RefreshToken string `mapstructure:"refresh_token"`
}

// GuideConfig identifies the PDF emailed on purchase completion
type GuideConfig struct {
	// Filename is the attachment name, looked up under site.assets_dir
	Filename string `mapstructure:"filename"`
	// Subject is the fulfillment email subject line
	Subject string `mapstructure:"subject"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/leverage")

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Bind environment variables
	v.SetEnvPrefix("LEVERAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyLegacyEnv(os.Getenv)

	return &cfg, nil
}

// applyLegacyEnv fills the externally-supplied settings from their historical
// env names when the structured config left them blank. Each setting checks an
// ordered candidate list; the first non-blank value wins. Missing values
// degrade the dependent feature instead of failing startup.
func (c *Config) applyLegacyEnv(lookup func(string) string) {
	if c.Checkout.URL == "" {
		c.Checkout.URL = FirstNonBlank(lookup, CheckoutURLKeys...)
	}
	if c.Supabase.URL == "" {
		c.Supabase.URL = strings.TrimSuffix(FirstNonBlank(lookup, SupabaseURLKeys...), "/")
	}
	if c.Supabase.AnonKey == "" {
		c.Supabase.AnonKey = FirstNonBlank(lookup, SupabaseKeyKeys...)
	}
	if c.Stripe.SecretKey == "" {
		c.Stripe.SecretKey = FirstNonBlank(lookup, "STRIPE_SECRET_KEY")
	}
	if c.Stripe.WebhookSecret == "" {
		c.Stripe.WebhookSecret = FirstNonBlank(lookup, "STRIPE_WEBHOOK_SECRET")
	}
	if c.Email.Resend.APIKey == "" {
		c.Email.Resend.APIKey = FirstNonBlank(lookup, "RESEND_API_KEY")
	}
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// Site defaults
	v.SetDefault("site.public_dir", "./public")
	v.SetDefault("site.assets_dir", "./assets")
	v.SetDefault("site.thank_you_path", "/thank-you.html")

	// Supabase defaults
	v.SetDefault("supabase.table", "leads")

	// Local archive defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "leverage")
	v.SetDefault("database.user", "leverage")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 25)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Lead flow defaults
	v.SetDefault("lead.insert_timeout", "10s")
	v.SetDefault("lead.otp_timeout", "10s")
	v.SetDefault("lead.rescue_ttl", "30m")
	v.SetDefault("lead.default_redirect", "/thank-you.html")

	// Email defaults
	v.SetDefault("email.provider", "resend")
	v.SetDefault("email.sender_address", "jacques@leverageinthegame.com")
	v.SetDefault("email.sender_name", "Jacques")
	v.SetDefault("email.guide.filename", "Leverage_in_the_Game_Guide.pdf")
	v.SetDefault("email.guide.subject", "Your Leverage in the Game Guide")

	// Security defaults
	v.SetDefault("security.rate_limiting.enabled", true)
}
