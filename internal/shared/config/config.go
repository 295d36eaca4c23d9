package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether outgoing mail is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type Config struct {
	AppEnv      string
	Port        string
	AppBaseURL  string
	DB          DBConfig
	RedisAddr   string
	KafkaBroker string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	InviteTTL       time.Duration

	CORSAllowedOrigins []string
	SMTP               SMTPConfig
	SuperAdmin         SuperAdminConfig
}

// SuperAdminConfig seeds the operator account on first start.
type SuperAdminConfig struct {
	Email     string
	Password  string
	Name      string
	StoreName string
}

func (s SuperAdminConfig) Enabled() bool {
	return s.Email != "" && s.Password != ""
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads the process environment. Call godotenv.Load first to pick up .env.
func Load() Config {
	return Config{
		AppEnv:     Getenv("APP_ENV", "development"),
		Port:       Getenv("PORT", "3000"),
		AppBaseURL: Getenv("APP_BASE_URL", "http://localhost:3000"),
		DB: DBConfig{
			Host:     Getenv("DB_HOST", "localhost"),
			User:     Getenv("DB_USER", "postgres"),
			Password: Getenv("DB_PASSWORD", ""),
			Name:     Getenv("DB_NAME", "shifteditor"),
			Port:     Getenv("DB_PORT", "5432"),
			SSLMode:  Getenv("DB_SSLMODE", "disable"),
		},
		RedisAddr:   Getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: Getenv("KAFKA_BROKER", ""),

		JWTSecret:       Getenv("JWT_SECRET", ""),
		AccessTokenTTL:  GetDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: GetDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		InviteTTL:       GetDuration("INVITE_TTL", 72*time.Hour),

		CORSAllowedOrigins: GetList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		SMTP: SMTPConfig{
			Host:     Getenv("SMTP_HOST", ""),
			Port:     GetInt("SMTP_PORT", 587),
			User:     Getenv("SMTP_USER", ""),
			Password: Getenv("SMTP_PASSWORD", ""),
			From:     Getenv("SMTP_FROM", ""),
		},
		SuperAdmin: SuperAdminConfig{
			Email:     Getenv("SUPER_ADMIN_EMAIL", ""),
			Password:  Getenv("SUPER_ADMIN_PASSWORD", ""),
			Name:      Getenv("SUPER_ADMIN_NAME", "Operator"),
			StoreName: Getenv("SUPER_ADMIN_STORE", "Head Office"),
		},
	}
}

// Getenv returns the variable named by key, or fallback when unset or empty.
func Getenv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

func GetInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func GetList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
