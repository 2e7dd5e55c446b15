package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/paypoint/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Email    sharedConfig.EmailConfig    `mapstructure:"email"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	PayPoint sharedConfig.PayPointConfig `mapstructure:"paypoint"`
}

// Load reads configs/config.yaml (or configPath when set), overlays
// PAYPOINT_* environment variables and validates the result.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("PAYPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Defaults plus environment are enough when no file is present.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", modeForEnv(env))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Logger.Debug = cfg.Server.Mode == "debug"

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the variant-specific required settings.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	pp := cfg.PayPoint
	switch pp.Variant {
	case sharedConfig.VariantLegacy:
		if pp.Legacy.GatewayURL == "" || pp.Legacy.MerchantID == "" || pp.Legacy.DigestKey == "" {
			return fmt.Errorf("invalid config: paypoint.legacy requires gateway_url, merchant_id and digest_key")
		}
	case sharedConfig.VariantREST:
		if pp.REST.APIUsername == "" || pp.REST.APIPassword == "" || pp.REST.InstallationID == "" {
			return fmt.Errorf("invalid config: paypoint.rest requires api_username, api_password and installation_id")
		}
	}

	if pp.Fee.AdditionalFee.IsNegative() {
		return fmt.Errorf("invalid config: paypoint.fee.additional_fee must not be negative")
	}

	return nil
}

func decimalHook() mapstructure.DecodeHookFuncType {
	decimalType := reflect.TypeOf(decimal.Decimal{})
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != decimalType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			if v == "" {
				return decimal.Zero, nil
			}
			return decimal.NewFromString(v)
		case float64:
			return decimal.NewFromFloat(v), nil
		case float32:
			return decimal.NewFromFloat32(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case decimal.Decimal:
			return v, nil
		}
		return data, nil
	}
}

func modeForEnv(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.redirect_rate_limit", 30)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "paypoint_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.from_address", "noreply@paypoint.local")
	v.SetDefault("email.from_name", "PayPoint")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("paypoint.variant", sharedConfig.VariantREST)
	v.SetDefault("paypoint.legacy.gateway_url", "https://www.secpay.com/java-bin/ValCard")
	v.SetDefault("paypoint.rest.use_sandbox", true)
	v.SetDefault("paypoint.rest.timeout_seconds", 15)
	v.SetDefault("paypoint.rest.locale", "en_GB")
	v.SetDefault("paypoint.fee.additional_fee", "0")
	v.SetDefault("paypoint.fee.percentage", false)
	v.SetDefault("paypoint.lock.ttl_seconds", 30)
	v.SetDefault("paypoint.lock.wait_millis", 2000)
	v.SetDefault("paypoint.messages.paid", "Your order has been paid")
	v.SetDefault("paypoint.messages.unverified", "Cannot validate response sign")
	v.SetDefault("paypoint.messages.not_valid", "valid parameter is not true")
	v.SetDefault("paypoint.messages.order_not_found", "Order cannot be loaded")
}
