// Package config loads application settings from defaults, an optional config
// file, a .env file and BIBLE_STUDY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AppName   = "bible-study"
	EnvPrefix = "BIBLE_STUDY"

	SourceAPI   = "api"
	SourceLocal = "local"

	DriverFile   = "file"
	DriverSQLite = "sqlite"

	ProgressFile = "progress.json"
	ProgressDB   = "progress.db"
	StateFile    = "state.json"
	LogFile      = "bible-study.log"
)

type (
	Config struct {
		Log       Log       `mapstructure:"log"`
		Scripture Scripture `mapstructure:"scripture"`
		Cache     Cache     `mapstructure:"cache"`
		AI        AI        `mapstructure:"ai"`
		Storage   Storage   `mapstructure:"storage"`
		Server    Server    `mapstructure:"server"`
		Theme     Theme     `mapstructure:"theme"`

		// Dir holds progress, session state and the TUI log.
		Dir string `mapstructure:"dir" validate:"required"`
	}

	Log struct {
		Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
		Format string `mapstructure:"format" validate:"oneof=text json"`
	}
	Scripture struct {
		Source      string        `mapstructure:"source" validate:"oneof=api local"`
		APIURL      string        `mapstructure:"api_url" validate:"required_if=Source api"`
		Translation string        `mapstructure:"translation"`
		LocalDir    string        `mapstructure:"local_dir" validate:"required_if=Source local"`
		Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	}
	Cache struct {
		RedisAddr     string        `mapstructure:"redis_addr"`
		RedisPassword string        `mapstructure:"redis_password"`
		RedisDB       int           `mapstructure:"redis_db" validate:"gte=0"`
		TTL           time.Duration `mapstructure:"ttl" validate:"gte=0"`
	}
	AI struct {
		APIKey    string        `mapstructure:"api_key"`
		Model     string        `mapstructure:"model" validate:"required"`
		BaseURL   string        `mapstructure:"base_url" validate:"omitempty,url"`
		MaxTokens int64         `mapstructure:"max_tokens" validate:"gt=0"`
		Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	}
	Storage struct {
		Driver string `mapstructure:"driver" validate:"oneof=file sqlite"`
		Path   string `mapstructure:"path"`
	}
	Server struct {
		Addr            string        `mapstructure:"addr" validate:"required"`
		DailyVerseCron  string        `mapstructure:"daily_verse_cron" validate:"required"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	}
	Theme struct {
		HighlightColor string `mapstructure:"highlight_color"`
		VerseNumColor  string `mapstructure:"verse_num_color"`
		TextColor      string `mapstructure:"text_color"`
		DimColor       string `mapstructure:"dim_color"`
	}
)

// DefaultDir is the per-user directory for application data.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(dir, AppName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dir", DefaultDir())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("scripture.source", SourceAPI)
	v.SetDefault("scripture.api_url", "https://bible-api.com")
	v.SetDefault("scripture.translation", "")
	v.SetDefault("scripture.local_dir", "")
	v.SetDefault("scripture.timeout", 15*time.Second)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "claude-sonnet-4-5")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.timeout", 60*time.Second)

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.path", "")

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.daily_verse_cron", "0 0 * * *")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	// Catppuccin Mocha
	v.SetDefault("theme.highlight_color", "#cba6f7")
	v.SetDefault("theme.verse_num_color", "#89b4fa")
	v.SetDefault("theme.text_color", "#cdd6f4")
	v.SetDefault("theme.dim_color", "#313244")
}

var validate = validator.New()

// Load reads the configuration. An explicit path must exist; otherwise
// config.yaml in the default directory is used when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = cfg.defaultStoragePath()
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) defaultStoragePath() string {
	if c.Storage.Driver == DriverSQLite {
		return filepath.Join(c.Dir, ProgressDB)
	}
	return filepath.Join(c.Dir, ProgressFile)
}

// Path joins name onto the data directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.Dir, name)
}

// EnsureDir creates the data directory.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0o755)
}

// AIEnabled reports whether a model API key is configured.
func (c *Config) AIEnabled() bool {
	return c.AI.APIKey != ""
}
