package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a test seam for godotenv.Load.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays environment variables onto config. A .env file in the
// working directory is loaded first when present; variables already set in
// the process environment win over it.
//
// Recognized variables:
//
//	LISTEN_ADDR, BASE_DIRECTORY, USERS_FILE, STORAGE_TYPE, DATABASE_DSN,
//	SECRET_KEY, SESSION_TTL (e.g. "12h"), COOKIE_SECURE (bool),
//	LOG_LEVEL, LOG_FORMAT,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	S3_USERS_KEY
//
// Malformed SESSION_TTL or COOKIE_SECURE values panic.
func parseEnv(config *Config) {
	_ = loadDotEnv()

	envString(&config.ListenAddr, "LISTEN_ADDR")
	envString(&config.BaseDirectory, "BASE_DIRECTORY")
	envString(&config.UsersFile, "USERS_FILE")
	envString(&config.StorageType, "STORAGE_TYPE")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.LogFormat, "LOG_FORMAT")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.S3UsersKey, "S3_USERS_KEY")

	if v, ok := os.LookupEnv("SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.SessionTTL = d
	}

	if v, ok := os.LookupEnv("COOKIE_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.CookieSecure = b
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
