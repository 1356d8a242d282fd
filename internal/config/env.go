package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// weakSecret is a common tutorial placeholder; refuse to start when the
// signing secret is missing or still set to it.
const weakSecret = "your-secret-key"

type Config struct {
	Port                string
	DatabaseURL         string
	AIAPIKey            string
	GenModel            string
	JWTSecret           string
	ClientOrigin        string
	EscalationThreshold int
	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioPhoneNumber   string
	PublicBaseURL       string
}

// LoadConfig loads the environment variables and returns config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8000"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		AIAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GenModel:            getEnv("GEN_MODEL", "gemini-2.5-flash"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		ClientOrigin:        getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		EscalationThreshold: getEnvInt("ESCALATION_SEVERITY_THRESHOLD", 4),
		TwilioAccountSID:    getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:     getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:   getEnv("TWILIO_PHONE_NUMBER", ""),
		PublicBaseURL:       getEnv("PUBLIC_BASE_URL", ""),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.AIAPIKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == weakSecret {
		log.Fatal("JWT_SECRET not set or uses the default placeholder")
	}

	return cfg
}

// TelephonyConfigured reports whether real Twilio credentials are present.
func (c *Config) TelephonyConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
