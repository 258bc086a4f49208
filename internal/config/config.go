// Package config loads application configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"time"
)

// Defaults mirror a single-kiosk deployment: everything runs with no
// environment at all, and the loader reports which insecure defaults are in
// play so main can log them.
type Config struct {
	Env     string // application environment (e.g. "dev", "prod")
	Port    string // HTTP port to listen on
	BaseURL string // external base URL baked into QR links; empty = derive from request

	DataDir string // directory holding the two CSV tables
	QRDir   string // directory holding generated QR images

	AdminPIN       string        // shared admin PIN (hashed at startup)
	SessionSecret  string        // HMAC secret for session cookies
	SessionIdleTTL time.Duration // admin session idle timeout
	BcryptCost     int           // bcrypt cost for the PIN hash

	ScanCooldown time.Duration // anti-bounce window for repeated QR scans

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	DefaultPIN    bool // ADMIN_PIN was not set
	DefaultSecret bool // SESSION_SECRET was not set; a random one was generated
}

// Load reads configuration from the environment, applying kiosk-friendly
// defaults for everything that is unset.
func Load() Config {
	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		BaseURL:        envStr("BASE_URL", ""),
		DataDir:        envStr("DATA_DIR", "data"),
		QRDir:          envStr("QR_DIR", "static/qrcodes"),
		AdminPIN:       envStr("ADMIN_PIN", ""),
		SessionSecret:  envStr("SESSION_SECRET", ""),
		SessionIdleTTL: time.Duration(envInt("SESSION_IDLE_MIN", 30)) * time.Minute,
		BcryptCost:     envInt("BCRYPT_COST", 10),
		ScanCooldown:   envDur("SCAN_COOLDOWN", 8*time.Second),
		SMTPHost:       envStr("SMTP_HOST", ""),
		SMTPPort:       envInt("SMTP_PORT", 587),
		SMTPUser:       envStr("SMTP_USER", ""),
		SMTPPass:       envStr("SMTP_PASS", ""),
		MailFrom:       envStr("MAIL_FROM", envStr("SMTP_USER", "")),
	}
	if cfg.AdminPIN == "" {
		cfg.AdminPIN = "4321"
		cfg.DefaultPIN = true
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		cfg.DefaultSecret = true
	}
	return cfg
}

// randomSecret generates a per-process session secret. Admin sessions then
// simply do not survive a restart, which is acceptable for a kiosk.
func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable anyway
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
