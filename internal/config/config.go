package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// SkillServer holds all configuration for the skill server.
type SkillServer struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Prototypes
	PrototypesDir  string        `yaml:"prototypes_dir" env:"PROTOTYPES_DIR"`
	WatchTemplates bool          `yaml:"watch_templates" env:"WATCH_TEMPLATES"`
	ReloadDebounce time.Duration `yaml:"reload_debounce" env:"RELOAD_DEBOUNCE"` // coalescing window for file events

	// Demo spawner: entities created on startup to exercise the skills component
	SpawnEntities int `yaml:"spawn_entities" env:"SPAWN_ENTITIES"`

	// Database
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKILLSYS_"

// DefaultSkillServer returns SkillServer config with sensible defaults.
func DefaultSkillServer() SkillServer {
	return SkillServer{
		LogLevel:       "info",
		PrototypesDir:  "data/prototypes",
		WatchTemplates: true,
		ReloadDebounce: 250 * time.Millisecond,
		SpawnEntities:  1,
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "skillsys",
			Password: "skillsys",
			DBName:   "skillsys",
			SSLMode:  "disable",
		},
	}
}

// LoadSkillServer loads config from a YAML file, then applies SKILLSYS_*
// environment overrides. If the file doesn't exist, defaults are used.
func LoadSkillServer(path string) (SkillServer, error) {
	cfg := DefaultSkillServer()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c SkillServer) Validate() error {
	if c.PrototypesDir == "" {
		return fmt.Errorf("prototypes_dir is empty")
	}
	if c.ReloadDebounce < 0 {
		return fmt.Errorf("reload_debounce must not be negative, got %s", c.ReloadDebounce)
	}
	if c.SpawnEntities < 0 {
		return fmt.Errorf("spawn_entities must not be negative, got %d", c.SpawnEntities)
	}
	return nil
}
