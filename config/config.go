package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                   string
	Port                  string
	DBURL                 string
	RedisAddr             string
	RedisPassword         string
	AccessTokenSecret     string
	MfaSecretKey          string
	AccessExpiryMin       int
	RefreshExpiryMin      int
	CookieDomain          string
	TotpIssuer            string
	MfaEnforced           bool
	FailedLoginThreshold  int
	LockoutMinutes        int
	LoginRateLimit        int
	LoginRateWindowMin    int
	PasswordRateLimit     int
	PasswordRateWindowMin int
	MaxActiveSessions     int
}

func Load() *Config {
	// Missing .env is fine; real deployments use the environment directly.
	_ = godotenv.Load()

	return &Config{
		Env:                   getEnv("ENV", "development"),
		Port:                  getEnv("PORT", "8080"),
		DBURL:                 mustGetEnv("DB_URL"),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		AccessTokenSecret:     mustGetEnv("ACCESS_TOKEN_SECRET"),
		MfaSecretKey:          mustGetEnv("MFA_SECRET_KEY"),
		AccessExpiryMin:       getEnvAsInt("ACCESS_TOKEN_EXPIRY", 15),
		RefreshExpiryMin:      getEnvAsInt("REFRESH_TOKEN_EXPIRY", 10080),
		CookieDomain:          getEnv("COOKIE_DOMAIN", ""),
		TotpIssuer:            getEnv("TOTP_ISSUER", "MorisHR"),
		MfaEnforced:           getEnvAsBool("MFA_ENFORCED", false),
		FailedLoginThreshold:  getEnvAsInt("FAILED_LOGIN_THRESHOLD", 5),
		LockoutMinutes:        getEnvAsInt("LOCKOUT_MINUTES", 15),
		LoginRateLimit:        getEnvAsInt("LOGIN_RATE_LIMIT", 5),
		LoginRateWindowMin:    getEnvAsInt("LOGIN_RATE_WINDOW_MIN", 15),
		PasswordRateLimit:     getEnvAsInt("PASSWORD_RATE_LIMIT", 3),
		PasswordRateWindowMin: getEnvAsInt("PASSWORD_RATE_WINDOW_MIN", 60),
		MaxActiveSessions:     getEnvAsInt("MAX_ACTIVE_SESSIONS", 5),
	}
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %t", key, defaultVal)
		return defaultVal
	}
	return val
}
