package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MOYASAR_SECRET_KEY", "")
	t.Setenv("TAP_SECRET_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, 10*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, "https://api.moyasar.com", cfg.Payment.Moyasar.BaseURL)
	assert.Equal(t, "https://api.tap.company", cfg.Payment.Tap.BaseURL)
	assert.Empty(t, cfg.Payment.Moyasar.SecretKey, "missing secrets are allowed at load time")
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
payment:
  timeout: 3s
  tap:
    base_url: https://tap.example.test
seller:
  name: From File
  vat_number: "300000000000003"
compliance:
  rules_path: configs/rules.yaml
logger:
  format: console
`)
	t.Setenv("MOYASAR_SECRET_KEY", "sk_test_env")
	t.Setenv("SELLER_NAME", "From Env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, "https://tap.example.test", cfg.Payment.Tap.BaseURL)
	assert.Equal(t, "sk_test_env", cfg.Payment.Moyasar.SecretKey)
	assert.Equal(t, "From Env", cfg.Seller.Name)
	assert.Equal(t, "300000000000003", cfg.Seller.VATNumber)
	assert.Equal(t, "configs/rules.yaml", cfg.Compliance.RulesPath)

	pc := cfg.PaymentConfig()
	assert.Equal(t, "sk_test_env", pc.Moyasar.SecretKey)
	assert.Equal(t, "https://tap.example.test", pc.Tap.BaseURL)
	assert.Equal(t, 3*time.Second, pc.Timeout)
	assert.Equal(t, "From Env", pc.DefaultSeller.Name)

	lc := cfg.LoggerConfig("saudi-payments")
	assert.Equal(t, "console", lc.Format)
	assert.Equal(t, "saudi-payments", lc.Service)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Payment: PaymentConfig{
				Timeout: time.Second,
				Moyasar: GatewayConfig{BaseURL: "https://api.moyasar.com"},
				Tap:     GatewayConfig{BaseURL: "https://api.tap.company"},
			},
			Logger: LoggerConfig{Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "zero timeout", mutate: func(c *Config) { c.Payment.Timeout = 0 }, wantErr: "payment.timeout"},
		{name: "no moyasar url", mutate: func(c *Config) { c.Payment.Moyasar.BaseURL = "" }, wantErr: "moyasar"},
		{name: "no tap url", mutate: func(c *Config) { c.Payment.Tap.BaseURL = "" }, wantErr: "tap"},
		{name: "bad log format", mutate: func(c *Config) { c.Logger.Format = "xml" }, wantErr: "logger.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TAP_SECRET_KEY_DOTENV_TEST=sk_from_dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TAP_SECRET_KEY_DOTENV_TEST") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "sk_from_dotenv", os.Getenv("TAP_SECRET_KEY_DOTENV_TEST"))

	assert.NoError(t, loadDotEnv(filepath.Join(dir, "absent.env")))
}
