package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedConfig "github.com/orris-inc/paypoint/internal/shared/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const restConfig = `
server:
  base_url: https://shop.example.com/
paypoint:
  variant: rest
  rest:
    api_username: user
    api_password: pass
    installation_id: "5300065"
  fee:
    additional_fee: "2.50"
    percentage: true
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load("production", writeConfig(t, restConfig))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.RedirectRateLimit)
	assert.Equal(t, "https://shop.example.com/", cfg.Server.StoreLocation())
	assert.False(t, cfg.Logger.Debug)

	assert.Equal(t, sharedConfig.VariantREST, cfg.PayPoint.Variant)
	assert.Equal(t, sharedConfig.RESTSandboxHost, cfg.PayPoint.REST.Host())
	assert.True(t, decimal.RequireFromString("2.5").Equal(cfg.PayPoint.Fee.AdditionalFee))
	assert.True(t, cfg.PayPoint.Fee.Percentage)
	assert.Equal(t, "Your order has been paid", cfg.PayPoint.Messages.Paid)
	assert.Equal(t, 2000, cfg.PayPoint.Lock.WaitMillis)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("PAYPOINT_PAYPOINT_REST_INSTALLATION_ID", "9999")
	t.Setenv("PAYPOINT_SERVER_PORT", "9090")

	cfg, err := Load("development", writeConfig(t, restConfig))
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.PayPoint.REST.InstallationID)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.True(t, cfg.Logger.Debug)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("test", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Server: sharedConfig.ServerConfig{Port: 8080, Mode: "test", BaseURL: "https://shop.example.com"},
		PayPoint: sharedConfig.PayPointConfig{
			Variant: sharedConfig.VariantLegacy,
			Legacy: sharedConfig.PayPointLegacyConfig{
				GatewayURL: "https://www.secpay.com/java-bin/ValCard",
				MerchantID: "merchant01",
				DigestKey:  "secret",
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid legacy", mutate: func(*Config) {}},
		{
			name:    "legacy without digest key",
			mutate:  func(c *Config) { c.PayPoint.Legacy.DigestKey = "" },
			wantErr: true,
		},
		{
			name:    "rest without credentials",
			mutate:  func(c *Config) { c.PayPoint.Variant = sharedConfig.VariantREST },
			wantErr: true,
		},
		{
			name: "valid rest",
			mutate: func(c *Config) {
				c.PayPoint.Variant = sharedConfig.VariantREST
				c.PayPoint.REST = sharedConfig.PayPointRESTConfig{APIUsername: "u", APIPassword: "p", InstallationID: "1"}
			},
		},
		{
			name:    "unknown variant",
			mutate:  func(c *Config) { c.PayPoint.Variant = "soap" },
			wantErr: true,
		},
		{
			name:    "negative fee",
			mutate:  func(c *Config) { c.PayPoint.Fee.AdditionalFee = decimal.NewFromInt(-1) },
			wantErr: true,
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Server.RedirectRateLimit = -1 },
			wantErr: true,
		},
		{
			name: "email enabled without operators",
			mutate: func(c *Config) {
				c.Email.Enabled = true
				c.Email.FromAddress = "shop@example.com"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
