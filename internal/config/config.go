package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr       string        // API bind address, e.g., "127.0.0.1:8080"
	LogDir     string        // logs directory
	SQLitePath string        // alarm database file (empty means in-memory store)
	PublicKeys []string      // read-only API keys
	AdminKeys  []string      // mutation API keys
	Snooze     time.Duration // snooze repeat offset
	MaxRing    time.Duration // ring ceiling per delivery
	WebhookURL string        // optional delivery-prompt webhook
	RatePerMin int           // API rate limit per client IP (0 disables)
}

func FromEnv() Config {
	// Bind address (loopback-friendly default)
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	// Logs
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	// Database (empty means use in-memory store)
	db := os.Getenv("SQLITE_PATH")

	// Delivery tuning
	snooze := 5 * time.Minute
	if v := os.Getenv("SNOOZE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			snooze = time.Duration(n) * time.Minute
		}
	}

	maxRing := 10 * time.Minute
	if v := os.Getenv("MAX_RING_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxRing = time.Duration(n) * time.Minute
		}
	}

	// API rate limit; generous default so a ringing UI can poll.
	ratePerMin := 240
	if v := os.Getenv("RATE_LIMIT_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			ratePerMin = n
		}
	}

	return Config{
		Addr:       addr,
		LogDir:     logDir,
		SQLitePath: db,
		PublicKeys: splitKeys(os.Getenv("PUBLIC_API_KEYS")),
		AdminKeys:  splitKeys(os.Getenv("ADMIN_API_KEYS")),
		Snooze:     snooze,
		MaxRing:    maxRing,
		WebhookURL: os.Getenv("WEBHOOK_URL"),
		RatePerMin: ratePerMin,
	}
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	var keys []string
	for _, part := range strings.Split(s, ",") {
		if k := strings.TrimSpace(part); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
