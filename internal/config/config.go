package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/meltforce/practiceboard/internal/timegrid"
	"gopkg.in/yaml.v3"
)

// SourceDB selects the Postgres tables as a catalog or roster source.
const SourceDB = "db"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Board     BoardConfig     `yaml:"board"`
	Catalog   SourceConfig    `yaml:"catalog"`
	Roster    SourceConfig    `yaml:"roster"`
	Cache     CacheConfig     `yaml:"cache"`
	Database  DatabaseConfig  `yaml:"database"`
	Export    ExportConfig    `yaml:"export"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

// BoardConfig sets up a new board. DefaultStart and DefaultEnd seed the
// session window and may be blank.
type BoardConfig struct {
	StepMinutes  int    `yaml:"step_minutes"`
	DefaultStart string `yaml:"default_start"`
	DefaultEnd   string `yaml:"default_end"`
}

// SourceConfig names where a configuration document is read from: "db",
// an http(s) URL, or a file path. Blank means none.
type SourceConfig struct {
	Source string `yaml:"source"`
}

// CacheConfig enables the last-known-good document cache when Dir is set.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type ExportConfig struct {
	FontPath string `yaml:"font_path"`
	Quality  int    `yaml:"quality"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies defaults and environment
// variable overrides. Env vars use the prefix PRACTICEBOARD_ and
// underscore-separated paths:
//
//	PRACTICEBOARD_SERVER_HOST, PRACTICEBOARD_SERVER_PORT, PRACTICEBOARD_STATIC_DIR,
//	PRACTICEBOARD_BOARD_STEP_MINUTES,
//	PRACTICEBOARD_CATALOG_SOURCE, PRACTICEBOARD_ROSTER_SOURCE, PRACTICEBOARD_CACHE_DIR,
//	PRACTICEBOARD_DB_HOST, PRACTICEBOARD_DB_PORT, PRACTICEBOARD_DB_NAME,
//	PRACTICEBOARD_DB_USER, PRACTICEBOARD_DB_PASSWORD, PRACTICEBOARD_DB_SSLMODE,
//	PRACTICEBOARD_EXPORT_FONT_PATH, PRACTICEBOARD_TS_ENABLED, PRACTICEBOARD_TS_HOSTNAME,
//	PRACTICEBOARD_AUTH_API_KEY, PRACTICEBOARD_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Board.StepMinutes == 0 {
		cfg.Board.StepMinutes = timegrid.DefaultStep
	}
	if cfg.Export.Quality == 0 {
		cfg.Export.Quality = 95
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "practiceboard"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PRACTICEBOARD_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PRACTICEBOARD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PRACTICEBOARD_STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv("PRACTICEBOARD_BOARD_STEP_MINUTES"); v != "" {
		if step, err := strconv.Atoi(v); err == nil {
			cfg.Board.StepMinutes = step
		}
	}
	if v := os.Getenv("PRACTICEBOARD_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("PRACTICEBOARD_ROSTER_SOURCE"); v != "" {
		cfg.Roster.Source = v
	}
	if v := os.Getenv("PRACTICEBOARD_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("PRACTICEBOARD_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("PRACTICEBOARD_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("PRACTICEBOARD_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("PRACTICEBOARD_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("PRACTICEBOARD_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("PRACTICEBOARD_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("PRACTICEBOARD_EXPORT_FONT_PATH"); v != "" {
		cfg.Export.FontPath = v
	}
	if v := os.Getenv("PRACTICEBOARD_TS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("PRACTICEBOARD_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("PRACTICEBOARD_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("PRACTICEBOARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Board.StepMinutes <= 0 {
		return fmt.Errorf("board.step_minutes must be positive, got %d", c.Board.StepMinutes)
	}
	for name, v := range map[string]string{
		"board.default_start": c.Board.DefaultStart,
		"board.default_end":   c.Board.DefaultEnd,
	} {
		if v == "" {
			continue
		}
		if _, err := timegrid.ParseTime(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Export.Quality < 1 || c.Export.Quality > 100 {
		return fmt.Errorf("export.quality must be 1-100, got %d", c.Export.Quality)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}

	usesDB := c.Catalog.Source == SourceDB || c.Roster.Source == SourceDB
	if usesDB && !c.Database.Enabled() {
		return fmt.Errorf("database.host is required when a source is %q", SourceDB)
	}
	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	}
	if c.Tailscale.Enabled && c.Tailscale.StateDir == "" {
		return fmt.Errorf("tailscale.state_dir is required when tailscale is enabled")
	}
	return nil
}
