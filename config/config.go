package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// PriceRange bounds the monthly rent, inclusive. A nil bound means
// unconstrained on that side.
type PriceRange struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// Config holds the search criteria loaded from the YAML config file plus the
// operational settings sourced from environment variables. It is built once
// per run and treated as immutable afterwards.
type Config struct {
	Cities            []string   `yaml:"cities"`
	PriceRange        PriceRange `yaml:"price_range"`
	MinSize           int        `yaml:"min_size"`
	MinBedrooms       int        `yaml:"min_bedrooms"`
	PropertyTypes     []string   `yaml:"property_types"`
	Interior          []string   `yaml:"interior"`
	MaxListingAgeDays int        `yaml:"max_listings_age_days"`

	UserAgent      string `yaml:"user_agent"`
	RequestDelayMs int    `yaml:"request_delay_ms"`
	MaxRetries     int    `yaml:"max_retries"`
	MaxPages       int    `yaml:"max_pages"`
	DataDir        string `yaml:"data_dir"`

	// Credentials and optional sinks come from the environment, not the
	// YAML document.
	GitHubToken string `yaml:"-"`
	GitHubRepo  string `yaml:"-"`
	ArchiveDSN  string `yaml:"-"`
}

// Load reads the .env file, parses the YAML config at path, applies defaults
// and validates the result. Any error here is fatal for the run: it happens
// before any network activity.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.GitHubToken = getEnv("GITHUB_TOKEN", "")
	cfg.GitHubRepo = getEnv("GITHUB_REPOSITORY", "")
	cfg.ArchiveDSN = getEnv("ARCHIVE_DSN", "")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.RequestDelayMs == 0 {
		c.RequestDelayMs = getEnvInt("REQUEST_DELAY_MS", 2000)
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = getEnvInt("MAX_RETRIES", 3)
	}
	if c.MaxPages == 0 {
		c.MaxPages = getEnvInt("MAX_PAGES", 5)
	}
	if c.MaxListingAgeDays == 0 {
		c.MaxListingAgeDays = 30
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
}

func (c *Config) validate() error {
	if len(c.Cities) == 0 {
		return fmt.Errorf("at least one city is required")
	}
	if c.PriceRange.Min != nil && c.PriceRange.Max != nil && *c.PriceRange.Min > *c.PriceRange.Max {
		return fmt.Errorf("price_range.min (%.0f) exceeds price_range.max (%.0f)",
			*c.PriceRange.Min, *c.PriceRange.Max)
	}
	if c.MinSize < 0 || c.MinBedrooms < 0 {
		return fmt.Errorf("min_size and min_bedrooms must not be negative")
	}
	if c.MaxListingAgeDays < 1 {
		return fmt.Errorf("max_listings_age_days must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
