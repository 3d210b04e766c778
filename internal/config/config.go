package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "pmp-reports/common/config"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config pmp-reports (HTTP API) configuration
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	DBEnabled bool                     `yaml:"db_enabled"`
	Database  commoncfg.DatabaseConfig `yaml:"database"`
	Redis     commoncfg.RedisConfig    `yaml:"redis"`
	Log       LogConfig                `yaml:"log"`
	Projects  ProjectAPIConfig         `yaml:"project_api"`
	Reports   ReportsConfig            `yaml:"reports"`
	MQTT      MQTTConfig               `yaml:"mqtt"`
}

// LogConfig logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"` // optional rotating file (lumberjack)
}

// ProjectAPIConfig upstream panel API serving the per-section sub-resources
type ProjectAPIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Token        string        `yaml:"token"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"` // per section fetch
	RetryCount   int           `yaml:"retry_count"`
}

// ReportsConfig report store / share settings
type ReportsConfig struct {
	ShareOrigin   string        `yaml:"share_origin"`
	ShareCacheTTL time.Duration `yaml:"share_cache_ttl"`
	EventsStream  string        `yaml:"events_stream"`
	// PDF font files (TrueType); empty keeps the built-in cp1252 font
	PDFFontFile     string `yaml:"pdf_font_file"`
	PDFFontBoldFile string `yaml:"pdf_font_bold_file"`
}

// MQTTConfig MQTT trigger for report generation (disabled by default)
type MQTTConfig struct {
	Enabled bool                 `yaml:"enabled"`
	Client  commoncfg.MQTTConfig `yaml:"client"`
	Topic   string               `yaml:"topic"`
}

// Load reads .env (if any), then the environment, then the optional CONFIG_FILE YAML overlay.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true for local dev: if DB is unavailable the service falls back to memory repos.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "pmp"
	cfg.Database.SSLMode = "disable"
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")
	cfg.Log.File = getEnv("LOG_FILE", "")

	cfg.Projects.BaseURL = getEnv("PROJECT_API_BASE", "http://localhost:3000/api")
	cfg.Projects.Token = getEnv("PROJECT_API_TOKEN", "")
	cfg.Projects.FetchTimeout = parseDuration(getEnv("FETCH_TIMEOUT", "10s"), 10*time.Second)
	cfg.Projects.RetryCount = parseInt(getEnv("PROJECT_API_RETRIES", "2"), 2)

	cfg.Reports.ShareOrigin = strings.TrimRight(getEnv("SHARE_ORIGIN", "http://localhost:8080"), "/")
	cfg.Reports.ShareCacheTTL = parseDuration(getEnv("SHARE_CACHE_TTL", "10m"), 10*time.Minute)
	cfg.Reports.EventsStream = getEnv("REPORT_EVENTS_STREAM", "pmp:reports:events")
	cfg.Reports.PDFFontFile = getEnv("PDF_FONT_FILE", "")
	cfg.Reports.PDFFontBoldFile = getEnv("PDF_FONT_BOLD_FILE", "")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Client.Broker = "tcp://localhost:1883"
	cfg.MQTT.Client.ClientID = "pmp-reports"
	cfg.MQTT.Client.QoS = 1
	cfg.MQTT.Client.LoadFromEnv("MQTT")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "pmp/reports/generate")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			// logger is not built yet
			fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", path, err)
		}
	}

	return cfg
}

// applyFile overlays a YAML file on top of env values; keys absent from the file keep their value.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
