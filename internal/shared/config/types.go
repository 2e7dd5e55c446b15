package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	Mode    string `mapstructure:"mode" validate:"oneof=debug release test"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	// RedirectRateLimit caps payment redirects per client IP per minute.
	// It needs Redis; 0 disables it.
	RedirectRateLimit int `mapstructure:"redirect_rate_limit" validate:"gte=0"`
	// AllowedOrigins may call AdditionalFee from storefront scripts.
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,url"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreLocation returns the base URL with exactly one trailing slash.
func (s *ServerConfig) StoreLocation() string {
	return strings.TrimRight(s.BaseURL, "/") + "/"
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
	// Debug enables source locations for every level.
	Debug bool `mapstructure:"-"`
}

type EmailConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	SMTPHost       string   `mapstructure:"smtp_host"`
	SMTPPort       int      `mapstructure:"smtp_port"`
	SMTPUser       string   `mapstructure:"smtp_user"`
	SMTPPassword   string   `mapstructure:"smtp_password"`
	FromAddress    string   `mapstructure:"from_address" validate:"required_if=Enabled true,omitempty,email"`
	FromName       string   `mapstructure:"from_name"`
	OperatorEmails []string `mapstructure:"operator_emails" validate:"required_if=Enabled true,dive,email"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PayPoint variants.
const (
	VariantLegacy = "legacy"
	VariantREST   = "rest"
)

type PayPointConfig struct {
	Variant  string                 `mapstructure:"variant" validate:"oneof=legacy rest"`
	Legacy   PayPointLegacyConfig   `mapstructure:"legacy"`
	REST     PayPointRESTConfig     `mapstructure:"rest"`
	Fee      PayPointFeeConfig      `mapstructure:"fee"`
	Lock     PayPointLockConfig     `mapstructure:"lock"`
	Messages PayPointMessagesConfig `mapstructure:"messages"`
}

// PayPointLegacyConfig holds the form-post/digest gateway settings.
type PayPointLegacyConfig struct {
	GatewayURL     string `mapstructure:"gateway_url" validate:"omitempty,url"`
	MerchantID     string `mapstructure:"merchant_id"`
	RemotePassword string `mapstructure:"remote_password"`
	DigestKey      string `mapstructure:"digest_key"`
	TestMode       bool   `mapstructure:"test_mode"`
}

// PayPointRESTConfig holds the hosted session API settings.
type PayPointRESTConfig struct {
	APIUsername       string `mapstructure:"api_username"`
	APIPassword       string `mapstructure:"api_password"`
	InstallationID    string `mapstructure:"installation_id"`
	UseSandbox        bool   `mapstructure:"use_sandbox"`
	BaseURL           string `mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" validate:"gte=0"`
	NotificationToken string `mapstructure:"notification_token"`
	Locale            string `mapstructure:"locale"`
}

const (
	RESTSandboxHost    = "https://api.mite.pay360.com"
	RESTProductionHost = "https://api.pay360.com"
)

// Host returns the API host for the configured environment.
func (r *PayPointRESTConfig) Host() string {
	if r.BaseURL != "" {
		return strings.TrimRight(r.BaseURL, "/")
	}
	if r.UseSandbox {
		return RESTSandboxHost
	}
	return RESTProductionHost
}

func (r *PayPointRESTConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

type PayPointFeeConfig struct {
	AdditionalFee decimal.Decimal `mapstructure:"additional_fee"`
	Percentage    bool            `mapstructure:"percentage"`
}

type PayPointLockConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds" validate:"gte=0"`
	WaitMillis int `mapstructure:"wait_millis" validate:"gte=0"`
}

func (l *PayPointLockConfig) TTL() time.Duration {
	if l.TTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(l.TTLSeconds) * time.Second
}

func (l *PayPointLockConfig) Wait() time.Duration {
	return time.Duration(l.WaitMillis) * time.Millisecond
}

// PayPointMessagesConfig holds the HTML snippets returned on the legacy Return route.
type PayPointMessagesConfig struct {
	Paid          string `mapstructure:"paid"`
	Unverified    string `mapstructure:"unverified"`
	NotValid      string `mapstructure:"not_valid"`
	OrderNotFound string `mapstructure:"order_not_found"`
}
