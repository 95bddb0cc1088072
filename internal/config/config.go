// Package config loads the wp-proxy configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Sternrassler/wp-reader/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Port      string
	LogLevel  logging.LogLevel
	LogPretty bool
}

type SiteCfg struct {
	Domain         string
	Name           string
	RESTRoot       string
	SettingsRoot   string
	MaxConcurrency int
	PerPage        int
}

type HTTPCfg struct {
	UserAgent string
	Timeout   time.Duration
}

type Cfg struct {
	App  AppCfg
	Site SiteCfg
	HTTP HTTPCfg
}

// Load reads the configuration. Variables from envFile are added to the
// process environment first, without overriding variables already set; a
// missing file is ignored.
func Load(envFile string) (Cfg, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Cfg{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("WP_MAX_CONCURRENCY", 4)
	v.SetDefault("WP_PER_PAGE", 100)
	v.SetDefault("WP_USER_AGENT", "wp-proxy/1.0")
	v.SetDefault("WP_HTTP_TIMEOUT", "30s")

	level, err := logging.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return Cfg{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := Cfg{
		App: AppCfg{
			Port:      v.GetString("PORT"),
			LogLevel:  level,
			LogPretty: v.GetBool("LOG_PRETTY"),
		},
		Site: SiteCfg{
			Domain:         strings.TrimSpace(v.GetString("WP_SITE_DOMAIN")),
			Name:           v.GetString("WP_SITE_NAME"),
			RESTRoot:       strings.TrimSpace(v.GetString("WP_REST_ROOT")),
			SettingsRoot:   strings.TrimSpace(v.GetString("WP_SETTINGS_ROOT")),
			MaxConcurrency: v.GetInt("WP_MAX_CONCURRENCY"),
			PerPage:        v.GetInt("WP_PER_PAGE"),
		},
		HTTP: HTTPCfg{
			UserAgent: v.GetString("WP_USER_AGENT"),
			Timeout:   v.GetDuration("WP_HTTP_TIMEOUT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Cfg{}, err
	}
	return cfg, nil
}

func (c Cfg) validate() error {
	switch {
	case c.Site.Domain == "" && c.Site.RESTRoot == "":
		return fmt.Errorf("WP_SITE_DOMAIN or WP_REST_ROOT is required")
	case c.Site.PerPage < 1 || c.Site.PerPage > 100:
		return fmt.Errorf("WP_PER_PAGE must be between 1 and 100 (got %d)", c.Site.PerPage)
	case c.Site.MaxConcurrency < 0:
		return fmt.Errorf("WP_MAX_CONCURRENCY must be >= 0 (got %d)", c.Site.MaxConcurrency)
	case c.HTTP.Timeout < 0:
		return fmt.Errorf("WP_HTTP_TIMEOUT must be >= 0 (got %s)", c.HTTP.Timeout)
	case c.HTTP.UserAgent == "":
		return fmt.Errorf("WP_USER_AGENT is required")
	}
	return nil
}
