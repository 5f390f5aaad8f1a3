package config

import (
	"os"
	"strconv"
	"time"
)

// Image assignment policies for new draft events.
const (
	ImagePolicyRandom     = "random"
	ImagePolicyRoundRobin = "round-robin"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Site     SiteConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" gives an
	// ephemeral store.
	Path string
}

type AuthConfig struct {
	OrganiserEmail string
	// PasswordHash is the bcrypt hash of the single organiser
	// credential.
	PasswordHash  string
	SessionSecret string
	SessionTTL    time.Duration
}

type SiteConfig struct {
	// ImagePolicy selects how decorative images are assigned to new
	// drafts: "random" or "round-robin".
	ImagePolicy string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":3000"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "database.db"),
		},
		Auth: AuthConfig{
			OrganiserEmail: getEnv("ORGANISER_EMAIL", "organiser@example.com"),
			// Placeholder hash; set a real one in any deployment.
			PasswordHash:  getEnv("ORGANISER_PASSWORD_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMye1VdLKOhTq0Zc0ZRzQkT1fTqQm1zBhGe"),
			SessionSecret: getEnv("SESSION_SECRET", "dev-session-secret"),
			SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour,
		},
		Site: SiteConfig{
			ImagePolicy: getEnv("IMAGE_POLICY", ImagePolicyRandom),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
