package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              string
	DBPath            string
	CSRFKey           []byte
	SessionKey        []byte
	CookieDomain      string
	CookieSecure      bool
	UploadDir         string
	AdminCheckTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8585"),
		DBPath:       getEnv("DB_PATH", "./shop.db"),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
		UploadDir:    getEnv("UPLOAD_DIR", "static/uploads"),
	}

	// Admin lookups fail closed on timeout; keep the deadline short so a
	// wedged database locks admins out rather than hanging every request.
	cfg.AdminCheckTimeout = 3 * time.Second
	if v := os.Getenv("ADMIN_CHECK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("Invalid ADMIN_CHECK_TIMEOUT, using default", "value", v)
		} else {
			cfg.AdminCheckTimeout = d
		}
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}

	return cfg, nil
}

// loadKey reads a base64 32-byte key from the environment, generating a
// random throwaway key for development when it is missing or malformed.
func loadKey(envVar string) []byte {
	raw := os.Getenv(envVar)
	if raw == "" {
		slog.Warn(envVar + " not set. Generating a random key for development; it changes on each restart. SET " + envVar + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn(envVar + " is invalid or shorter than 32 bytes. Generating a random key for development. SET A SECURE " + envVar + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decoded
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		if len(fallbackKey) < n {
			paddedKey := make([]byte, n)
			copy(paddedKey, fallbackKey)
			return paddedKey
		}
		return []byte(fallbackKey)[:n]
	}
	return b
}
