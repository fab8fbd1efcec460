package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AssetsDir     string
	PublicDir     string
	ViewsDir      string
	Port          string
	OverridesFile string
	BucketName    string
	BucketPrefix  string
	AdminKey      string
	CacheTTL      time.Duration
}

// ErrInvalidCacheTTL is returned when CACHE_TTL cannot be parsed as a duration
var ErrInvalidCacheTTL = errors.New("CACHE_TTL must be a duration such as 30s or 5m")

// Load loads configuration from a .env file, if present, and environment variables.
// Variables already set in the environment take precedence over the .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cacheTTL := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, ErrInvalidCacheTTL
		}
		cacheTTL = d
	}

	return &Config{
		AssetsDir:     getEnv("ASSETS_DIR", "./public/assets"),
		PublicDir:     getEnv("PUBLIC_DIR", "./public"),
		ViewsDir:      getEnv("VIEWS_DIR", "./views"),
		Port:          getEnv("PORT", "8080"),
		OverridesFile: os.Getenv("OVERRIDES_FILE"),
		BucketName:    os.Getenv("BUCKET_NAME"),
		BucketPrefix:  getEnv("BUCKET_PREFIX", "assets"),
		AdminKey:      os.Getenv("ADMIN_KEY"),
		CacheTTL:      cacheTTL,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// UsesBucket reports whether media is served from Cloud Storage instead of the local assets directory
func (c *Config) UsesBucket() bool {
	return c.BucketName != ""
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Gallery URL: http://localhost:%s/\n", c.Port)
	fmt.Printf("Galleries API: http://localhost:%s/api/galleries\n", c.Port)
	if c.UsesBucket() {
		fmt.Printf("Media source: gs://%s/%s\n", c.BucketName, c.BucketPrefix)
	} else {
		fmt.Printf("Media source: %s\n", c.AssetsDir)
	}
	if c.AdminKey != "" {
		fmt.Printf("Admin URL: http://localhost:%s/%s/\n", c.Port, c.AdminKey)
	}
}
