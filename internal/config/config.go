package config

import (
	"strings"
	"time"

	"factory_crm_backend/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the process configuration read from the environment.
type Config struct {
	Port    string
	GinMode string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBSchemaPath   string
	DBMaxOpenConns int

	JWTSecret string
	JWTTTL    time.Duration

	// AdminUsername and AdminPassword seed an admin when none is active.
	AdminUsername string
	AdminPassword string

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	StatsCacheTTL  time.Duration
	EventQueueSize int
	EventWorkers   int
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using process environment")
	}

	return Config{
		Port:    utils.Getenv("PORT", "8080"),
		GinMode: utils.Getenv("GIN_MODE", "debug"),

		DBHost:         utils.Getenv("DB_HOST", "localhost"),
		DBPort:         utils.Getenv("DB_PORT", "5432"),
		DBUser:         utils.Getenv("DB_USER", "postgres"),
		DBPassword:     utils.Getenv("DB_PASSWORD", "postgres"),
		DBName:         utils.Getenv("DB_NAME", "factory_crm"),
		DBSSLMode:      utils.Getenv("DB_SSLMODE", "disable"),
		DBSchemaPath:   utils.Getenv("DB_SCHEMA_PATH", ""),
		DBMaxOpenConns: utils.GetenvInt("DB_MAX_OPEN_CONNS", 20),

		JWTSecret: utils.Getenv("JWT_SECRET", ""),
		JWTTTL:    utils.GetenvDuration("JWT_TTL", 24*time.Hour),

		AdminUsername: utils.Getenv("ADMIN_USERNAME", ""),
		AdminPassword: utils.Getenv("ADMIN_PASSWORD", ""),

		CORSAllowedOrigins: splitList(utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		LogLevel:  utils.Getenv("LOG_LEVEL", "info"),
		LogFormat: utils.Getenv("LOG_FORMAT", "console"),

		StatsCacheTTL:  utils.GetenvDuration("STATS_CACHE_TTL", 60*time.Second),
		EventQueueSize: utils.GetenvInt("EVENT_QUEUE_SIZE", 256),
		EventWorkers:   utils.GetenvInt("EVENT_WORKERS", 2),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
