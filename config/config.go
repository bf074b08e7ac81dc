package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Reports  ReportsConfig
	Archive  ArchiveConfig
	Log      LogConfig
	Seed     SeedConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	LogLevel string `mapstructure:"log_level"`
}

type SessionConfig struct {
	Secret        string
	TTL           time.Duration
	CookieName    string `mapstructure:"cookie_name"`
	Secure        bool
	Store         string
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
}

type ReportsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// ArchiveConfig points report exports at an S3 compatible bucket. An empty
// bucket turns archiving off.
type ArchiveConfig struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

type LogConfig struct {
	Level  string
	Format string
}

type SeedConfig struct {
	AdminPassword string `mapstructure:"admin_password"`
}

// Load reads configuration from TIMESHEET_* environment variables and an
// optional config file. An empty path looks for config.yaml in the working
// directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TIMESHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // optional file
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 15*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "postgresql://postgres@localhost:5432/timesheet")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie_name", "timesheet_session")
	v.SetDefault("session.secure", true)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")

	v.SetDefault("reports.cache_ttl", time.Minute)

	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "reports")
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.endpoint", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("seed.admin_password", "")
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("database url is required")
	}
	return nil
}

// ValidateServe adds the checks that only matter when serving HTTP.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Session.Secret) < 16 {
		return fmt.Errorf("session secret must be at least 16 characters")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}
	if c.Reports.CacheTTL < 0 {
		return fmt.Errorf("reports cache ttl must not be negative")
	}
	return nil
}
