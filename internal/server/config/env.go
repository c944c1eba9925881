package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables. A .env file
// is loaded first when present (not required in production).
func parseEnv(config *Config) {
	godotenv.Load()

	config.Address = getEnv("SERVER_ADDRESS", config.Address)
	config.DatabaseDSN = getEnv("DATABASE_DSN", config.DatabaseDSN)
	config.SecretKey = getEnv("SECRET_KEY", config.SecretKey)
	config.AccessTokenValidityDuration = getEnvAsMinutes("ACCESS_TOKEN_TTL_MIN", config.AccessTokenValidityDuration)
	config.RefreshTokenValidityDuration = getEnvAsMinutes("REFRESH_TOKEN_TTL_MIN", config.RefreshTokenValidityDuration)
	config.LockoutThreshold = getEnvAsInt("LOCKOUT_THRESHOLD", config.LockoutThreshold)
	config.LockoutDuration = getEnvAsMinutes("LOCKOUT_DURATION_MIN", config.LockoutDuration)
	config.LoginRateRPS = getEnvAsInt("LOGIN_RATE_RPS", config.LoginRateRPS)
	config.LoginRateBurst = getEnvAsInt("LOGIN_RATE_BURST", config.LoginRateBurst)
	config.S3RootUser = getEnv("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = getEnv("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = getEnv("S3_BUCKET", config.S3Bucket)
	config.S3Region = getEnv("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getEnv("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsMinutes(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return time.Duration(value) * time.Minute
}
