// Package config loads the settings shared by the reddit CLI and the MCP
// server from a YAML file and REDDIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	graw "github.com/jamesprial/go-reddit-session"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
)

// EnvPrefix namespaces the environment variables, so session_dir is read
// from REDDIT_SESSION_DIR.
const EnvPrefix = "REDDIT"

// Config holds the application configuration
type Config struct {
	SessionDir          string        `mapstructure:"session_dir"`
	BaseURL             string        `mapstructure:"base_url"`
	UserAgent           string        `mapstructure:"user_agent"`
	LogLevel            string        `mapstructure:"log_level"`
	RequestsPerMinute   float64       `mapstructure:"requests_per_minute"`
	Burst               int           `mapstructure:"burst"`
	Timeout             time.Duration `mapstructure:"timeout"`
	LiveBrowserFallback bool          `mapstructure:"live_browser_fallback"`
}

// Load reads configFile, or config.yaml from ~/.config/reddit-mcp or the
// working directory when configFile is empty. A missing default file is not
// an error; a missing explicit one is.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("$HOME/.config/reddit-mcp")
		v.AddConfigPath(".")
	}

	v.SetDefault("session_dir", "")
	v.SetDefault("base_url", graw.DefaultBaseURL)
	v.SetDefault("user_agent", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("requests_per_minute", 60)
	v.SetDefault("burst", 10)
	v.SetDefault("timeout", graw.DefaultTimeout)
	v.SetDefault("live_browser_fallback", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &pkgerrs.ConfigError{Message: fmt.Sprintf("reading %s: %v", v.ConfigFileUsed(), err)}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &pkgerrs.ConfigError{Message: err.Error()}
	}
	if _, err := cfg.level(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		return nil, &pkgerrs.ConfigError{Field: "timeout", Message: "must be positive"}
	}
	return &cfg, nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, &pkgerrs.ConfigError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	return level, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ClientConfig maps the settings onto a client configuration.
func (c *Config) ClientConfig(logger *slog.Logger) *graw.Config {
	return &graw.Config{
		SessionDir:          c.SessionDir,
		BaseURL:             c.BaseURL,
		UserAgent:           c.UserAgent,
		HTTPClient:          &http.Client{Timeout: c.Timeout},
		RequestsPerMinute:   c.RequestsPerMinute,
		Burst:               c.Burst,
		LiveBrowserFallback: c.LiveBrowserFallback,
		Logger:              logger,
	}
}
