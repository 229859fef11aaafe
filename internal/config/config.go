package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port        string
	DatabaseURL string
	StoreDriver string // postgres | memory

	FileStore   string // disk | sqlite
	UploadDir   string
	FileDBPath  string
	MaxUploadMB int

	GeminiAPIKey string
	GeminiModel  string

	GmailCredentials string
	GmailToken       string
	NotifyFrom       string

	AdminJWTSecret string
	// DevMode allows starting without ADMIN_JWT_SECRET against a real store.
	DevMode     bool
	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=password dbname=applicant_tracker port=5432 sslmode=disable"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),

		FileStore:   strings.ToLower(getEnv("FILE_STORE", "disk")),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		FileDBPath:  getEnv("FILE_DB_PATH", "files.db"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		GmailCredentials: getEnv("GMAIL_CREDENTIALS", "credential.json"),
		GmailToken:       getEnv("GMAIL_TOKEN", "token.json"),
		NotifyFrom:       getEnv("NOTIFY_FROM", "me"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		DevMode:        getEnvBool("DEV_MODE", false),
		CORSOrigins:    getEnvList("CORS_ORIGINS"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
}

var ErrOpenAdmin = errors.New("ADMIN_JWT_SECRET is empty; set it, or use STORE_DRIVER=memory or DEV_MODE=true for local development")

// CheckAdminAuth refuses a configuration whose admin routes would be open
// over persistent data.
func (c *Config) CheckAdminAuth() error {
	if c.AdminJWTSecret != "" || c.StoreDriver == "memory" || c.DevMode {
		return nil
	}
	return ErrOpenAdmin
}

// LLMEnabled reports whether job extraction can reach Gemini.
func (c *Config) LLMEnabled() bool { return c.GeminiAPIKey != "" }

// SetupLogging applies the configured level and formatter to the standard
// logrus logger.
func (c *Config) SetupLogging() {
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		formatter := new(log.TextFormatter)
		formatter.TimestampFormat = "2006-01-02 15:04:05"
		formatter.FullTimestamp = true
		log.SetFormatter(formatter)
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// getEnvList splits a comma separated variable. An unset variable yields nil.
func getEnvList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
