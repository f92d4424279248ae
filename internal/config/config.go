package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Local"

	postgresHostEnv        = "DS_POSTGRES_HOST"
	postgresPortEnv        = "DS_POSTGRES_PORT"
	postgresUserEnv        = "DS_POSTGRES_USER"
	postgresPasswordEnv    = "DS_POSTGRES_PASSWORD"
	postgresDBEnv          = "DS_POSTGRES_DB"
	postgresSchemaEnv      = "DS_POSTGRES_DB_SCHEMA_VERSION"
	thingiverseTokenEnv    = "DS_THINGIVERSE_API_TOKEN"
	cultsTimeoutEnv        = "DS_CULTS_TIMEOUT"
	printablesTimeoutEnv   = "DS_PRINTABLE_TIMEOUT"
	logLevelEnv            = "DS_LOG_LEVEL"
	postgresMaxConnsEnv    = "DS_POSTGRES_DB_MAX_CONNECTIONS"
	postgresConnTimeoutEnv = "DS_POSTGRES_DB_CONNECTION_TIMEOUT"
)

// mandatoryEnvVars must be present after the env file is loaded; a missing one
// aborts the run before any pair is processed.
var mandatoryEnvVars = []string{
	postgresHostEnv,
	postgresPortEnv,
	postgresUserEnv,
	postgresPasswordEnv,
	postgresDBEnv,
	thingiverseTokenEnv,
}

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Sites     SitesConfig     `yaml:"sites"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DatabaseConfig describes Postgres connection details. Credentials come from
// the environment, pool limits may be tuned in the YAML file.
type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"-"`
	Password       string `yaml:"-"`
	Name           string `yaml:"name"`
	MaxOpenConns   int    `yaml:"maxOpenConns"`
	MaxIdleConns   int    `yaml:"maxIdleConns"`
	ConnectTimeout int    `yaml:"connectTimeoutSeconds"`
	SchemaVersion  string `yaml:"schemaVersion"`
}

// DSN renders a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable connect_timeout=%d",
		d.Host, d.Port, d.User, d.Password, d.Name, d.ConnectTimeout,
	)
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// IngestConfig bounds the retry passes and the adaptive throttle of a run.
type IngestConfig struct {
	MaxPasses        int           `yaml:"maxPasses"`
	ThrottleFloor    time.Duration `yaml:"throttleFloor"`
	ThrottleIncrease time.Duration `yaml:"throttleIncrease"`
	ThrottleDecrease time.Duration `yaml:"throttleDecrease"`
}

// SitesConfig groups per-platform fetch settings.
type SitesConfig struct {
	Thingiverse ThingiverseConfig `yaml:"thingiverse"`
	Cults       CultsConfig       `yaml:"cults3d"`
	Printables  PrintablesConfig  `yaml:"printables"`
}

// ThingiverseConfig wires the REST API client.
type ThingiverseConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	APIToken string        `yaml:"-"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CultsConfig wires the Cults3d page scraper.
type CultsConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// PrintablesConfig wires the Printables page scraper.
type PrintablesConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// SchedulerConfig defines the optional recurring ingestion run.
type SchedulerConfig struct {
	CronExpression string `yaml:"cronExpression"`
	Timezone       string `yaml:"timezone"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == defaultTimezone {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads the env file (secrets) and the optional YAML file, applies
// environment overrides, and validates mandatory variables.
func Load(yamlPath, envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envPath, err)
		}
	}

	cfg := defaultConfig()

	if yamlPath != "" {
		raw, err := os.ReadFile(yamlPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %s: %w", yamlPath, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", yamlPath, err)
		}
	}

	cfg.applyEnvOverrides()

	for _, name := range mandatoryEnvVars {
		if os.Getenv(name) == "" {
			return Config{}, fmt.Errorf("missing mandatory environment variable %s", name)
		}
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(postgresHostEnv); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv(postgresPortEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv(postgresUserEnv); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv(postgresPasswordEnv); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(postgresDBEnv); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv(postgresSchemaEnv); v != "" {
		c.Database.SchemaVersion = v
	}
	if v := os.Getenv(postgresMaxConnsEnv); v != "" {
		if conns, err := strconv.Atoi(v); err == nil {
			c.Database.MaxOpenConns = conns
		}
	}
	if v := os.Getenv(postgresConnTimeoutEnv); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			c.Database.ConnectTimeout = seconds
		}
	}
	if v := os.Getenv(thingiverseTokenEnv); v != "" {
		c.Sites.Thingiverse.APIToken = v
	}
	if v := os.Getenv(cultsTimeoutEnv); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			c.Sites.Cults.Timeout = timeout
		}
	}
	if v := os.Getenv(printablesTimeoutEnv); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			c.Sites.Printables.Timeout = timeout
		}
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			Name:           "designstats",
			MaxOpenConns:   4,
			MaxIdleConns:   2,
			ConnectTimeout: 10,
			SchemaVersion:  "2",
		},
		Logging: LoggingConfig{Level: "info"},
		Ingest: IngestConfig{
			MaxPasses:        10,
			ThrottleFloor:    150 * time.Millisecond,
			ThrottleIncrease: 100 * time.Millisecond,
			ThrottleDecrease: 50 * time.Millisecond,
		},
		Sites: SitesConfig{
			Thingiverse: ThingiverseConfig{
				BaseURL: "https://api.thingiverse.com",
				Timeout: 20 * time.Second,
			},
			Cults: CultsConfig{
				BaseURL: "https://cults3d.com",
				Timeout: 30 * time.Second,
			},
			Printables: PrintablesConfig{
				BaseURL: "https://www.printables.com",
				Timeout: 30 * time.Second,
			},
		},
		Scheduler: SchedulerConfig{
			CronExpression: "0 6 * * *",
			Timezone:       defaultTimezone,
		},
	}
}
