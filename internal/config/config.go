package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Shortener  `yaml:"shortener"`
	Recorder   `yaml:"recorder"`
	Enrichment `yaml:"enrichment"`
	RateLimit  `yaml:"rate_limit"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Address      string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout  string `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout string `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  string `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD" env-default:""`
	DBName          string `yaml:"name" env:"DB_NAME" env-default:"shortly"`
	SSLMode         string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"50"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// Shortener holds service-specific configuration.
type Shortener struct {
	CodeLength  int    `yaml:"code_length" env:"CODE_LENGTH" env-default:"7"`
	MaxAttempts int    `yaml:"max_attempts" env:"CODE_MAX_ATTEMPTS" env-default:"3"`
	BaseURL     string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
}

// Recorder holds click recorder worker-pool configuration.
type Recorder struct {
	Workers         int    `yaml:"workers" env:"RECORDER_WORKERS" env-default:"3"`
	BufferSize      int    `yaml:"buffer_size" env:"RECORDER_BUFFER_SIZE" env-default:"1000"`
	RetryAttempts   int    `yaml:"retry_attempts" env:"RECORDER_RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay      string `yaml:"retry_delay" env:"RECORDER_RETRY_DELAY" env-default:"1s"`
	ShutdownTimeout string `yaml:"shutdown_timeout" env:"RECORDER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// Enrichment holds optional enrichment data sources. Empty paths mean
// the corresponding capability is disabled, not misconfigured.
type Enrichment struct {
	UARegexesPath string `yaml:"ua_regexes_path" env:"UA_REGEXES_PATH" env-default:""`
	GeoIPDBPath   string `yaml:"geoip_db_path" env:"GEOIP_DB_PATH" env-default:""`
}

// RateLimit holds per-IP request budgets, in requests per minute.
type RateLimit struct {
	ShortenPerMinute  int `yaml:"shorten_per_minute" env:"SHORTEN_RATE_LIMIT" env-default:"10"`
	RedirectPerMinute int `yaml:"redirect_per_minute" env:"REDIRECT_RATE_LIMIT" env-default:"100"`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	// Check if config file path is specified
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	// Try to load config file
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		// If config file doesn't exist, use environment variables only
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	return &cfg
}
