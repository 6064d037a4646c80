package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort       string
	DatabaseURL      string
	AdminToken       string
	LogLevel         string
	GeminiAPIKey     string
	SourcesFile      string
	UserAgent        string
	ScrapeTimeout    string
	ScrapeDelay      string
	ScrapeRetries    string
	DiscoverySeeds   string
	RevalidationDays string
}

// ScrapeConfig holds scraping limits applied when a source definition
// leaves them unset.
type ScrapeConfig struct {
	Timeout        time.Duration `json:"timeout"`
	Delay          time.Duration `json:"delay"`
	MaxRetries     int           `json:"max_retries"`
	MaxPages       int           `json:"max_pages"`
	MaxPerSource   int           `json:"max_per_source"`
	RespectRobots  bool          `json:"respect_robots"`
	UserAgent      string        `json:"user_agent"`
	ConcurrentJobs int           `json:"concurrent_jobs"`
}

// DefaultScrapeConfig returns scraping defaults tuned for government portals,
// which throttle aggressively.
func DefaultScrapeConfig() *ScrapeConfig {
	return &ScrapeConfig{
		Timeout:        30 * time.Second,
		Delay:          2 * time.Second,
		MaxRetries:     3,
		MaxPages:       10,
		MaxPerSource:   30,
		RespectRobots:  true,
		UserAgent:      "ScholarshipBot/1.0 (+https://scholarship.example.in/bot)",
		ConcurrentJobs: 3,
	}
}

// DiscoveryConfig holds crawl limits for source discovery.
type DiscoveryConfig struct {
	MaxDepth          int           `json:"max_depth"`
	MaxPagesPerDomain int           `json:"max_pages_per_domain"`
	MaxTotalPages     int           `json:"max_total_pages"`
	RequestDelay      time.Duration `json:"request_delay"`
	MinRelevance      float64       `json:"min_relevance"`
	HighPriority      float64       `json:"high_priority"`
}

// DefaultDiscoveryConfig returns default discovery crawl limits.
func DefaultDiscoveryConfig() *DiscoveryConfig {
	return &DiscoveryConfig{
		MaxDepth:          2,
		MaxPagesPerDomain: 20,
		MaxTotalPages:     100,
		RequestDelay:      time.Second,
		MinRelevance:      0.2,
		HighPriority:      0.6,
	}
}

// ValidationConfig holds link validation limits.
type ValidationConfig struct {
	Timeout         time.Duration `json:"timeout"`
	SlowThreshold   time.Duration `json:"slow_threshold"`
	BatchSize       int           `json:"batch_size"`
	MaxConcurrent   int           `json:"max_concurrent"`
	BatchDelay      time.Duration `json:"batch_delay"`
	MinQualityScore float64       `json:"min_quality_score"`
}

// DefaultValidationConfig returns default validation limits.
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		Timeout:         30 * time.Second,
		SlowThreshold:   10 * time.Second,
		BatchSize:       50,
		MaxConcurrent:   30,
		BatchDelay:      time.Second,
		MinQualityScore: 40,
	}
}

// GetScrapeTimeout returns the scrape timeout from environment or default.
func (c *Config) GetScrapeTimeout() time.Duration {
	return c.durationSeconds(c.ScrapeTimeout, "SCRAPE_TIMEOUT_SECONDS", DefaultScrapeConfig().Timeout)
}

// GetScrapeDelay returns the per-request delay from environment or default.
func (c *Config) GetScrapeDelay() time.Duration {
	return c.durationSeconds(c.ScrapeDelay, "SCRAPE_DELAY_SECONDS", DefaultScrapeConfig().Delay)
}

// GetScrapeRetries returns the retry budget from environment or default.
func (c *Config) GetScrapeRetries() int {
	if c.ScrapeRetries == "" {
		return DefaultScrapeConfig().MaxRetries
	}
	retries, err := strconv.Atoi(c.ScrapeRetries)
	if err != nil || retries < 0 {
		logrus.Warnf("Invalid SCRAPE_RETRY_ATTEMPTS value: %s, using default", c.ScrapeRetries)
		return DefaultScrapeConfig().MaxRetries
	}
	return retries
}

// GetRevalidationInterval returns how often stored listings are revalidated.
func (c *Config) GetRevalidationInterval() time.Duration {
	if c.RevalidationDays == "" {
		return 7 * 24 * time.Hour
	}
	days, err := strconv.Atoi(c.RevalidationDays)
	if err != nil || days <= 0 {
		logrus.Warnf("Invalid REVALIDATION_DAYS value: %s, using default 7 days", c.RevalidationDays)
		return 7 * 24 * time.Hour
	}
	return time.Duration(days) * 24 * time.Hour
}

func (c *Config) durationSeconds(raw, name string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		logrus.Warnf("Invalid %s value: %s, using default", name, raw)
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		AdminToken:       getEnv("ADMIN_TOKEN", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		SourcesFile:      getEnv("SOURCES_FILE", "sources.yaml"),
		UserAgent:        getEnv("SCRAPER_USER_AGENT", DefaultScrapeConfig().UserAgent),
		ScrapeTimeout:    getEnv("SCRAPE_TIMEOUT_SECONDS", "30"),
		ScrapeDelay:      getEnv("SCRAPE_DELAY_SECONDS", "2"),
		ScrapeRetries:    getEnv("SCRAPE_RETRY_ATTEMPTS", "3"),
		DiscoverySeeds:   getEnv("DISCOVERY_SEED_URLS", ""),
		RevalidationDays: getEnv("REVALIDATION_DAYS", "7"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
