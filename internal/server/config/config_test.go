package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, ":8080", cfg.Address)
	require.Equal(t, 5, cfg.LockoutThreshold)
	require.Equal(t, 15*time.Minute, cfg.LockoutDuration)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "30")
	t.Setenv("LOCKOUT_THRESHOLD", "3")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	require.Equal(t, ":9999", cfg.Address)
	require.Equal(t, "env-secret", cfg.SecretKey)
	require.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	require.Equal(t, 3, cfg.LockoutThreshold)
}

func TestParseEnv_InvalidIntKeepsDefault(t *testing.T) {
	t.Setenv("LOGIN_RATE_RPS", "not-a-number")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	require.Equal(t, 5, cfg.LoginRateRPS)
}

func TestParseJson_File(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "conf-*.json")
	require.NoError(t, err)

	content := `{
		"address": ":7070",
		"database_dsn": "postgres://u:p@h:5432/db",
		"secret_key": "json-secret",
		"access_token_validity_duration": "20m",
		"refresh_token_validity_duration": "48h",
		"lockout_threshold": 7,
		"lockout_duration": "5m",
		"login_rate_rps": 2,
		"login_rate_burst": 4,
		"s3_root_user": "root",
		"s3_root_password": "pw",
		"s3_bucket": "b",
		"s3_region": "r",
		"s3_base_endpoint": "http://localhost:9000/",
		"log_level": "debug"
	}`
	_, err = f.WriteString(content)
	require.NoError(t, err)
	f.Close()

	oldArgs := os.Args
	os.Args = []string{"server", "-c", f.Name()}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	require.Equal(t, ":7070", cfg.Address)
	require.Equal(t, "json-secret", cfg.SecretKey)
	require.Equal(t, 20*time.Minute, cfg.AccessTokenValidityDuration)
	require.Equal(t, 48*time.Hour, cfg.RefreshTokenValidityDuration)
	require.Equal(t, 7, cfg.LockoutThreshold)
	require.Equal(t, "debug", cfg.LogLevel)
}
