package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	SourceURL     string `mapstructure:"SOURCE_URL"`
	SourceLabel   string `mapstructure:"SOURCE_LABEL"`
	EmbedScriptID string `mapstructure:"EMBED_SCRIPT_ID"`

	FetchMode      string   `mapstructure:"FETCH_MODE"`
	FetchTimeout   int      `mapstructure:"FETCH_TIMEOUT"` // in seconds
	UserAgent      string   `mapstructure:"USER_AGENT"`
	AcceptLanguage string   `mapstructure:"ACCEPT_LANGUAGE"`
	ProxyURLs      []string `mapstructure:"PROXY_URLS"`

	LocatorMaxDepth int `mapstructure:"LOCATOR_MAX_DEPTH"`
	LocatorMaxNodes int `mapstructure:"LOCATOR_MAX_NODES"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
}

// DefaultUserAgent is a mobile Safari user agent, which upstream menus block
// less often than obvious automation clients.
const DefaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Mobile/15E148 Safari/604.1"

// Load reads configuration from a .env file and environment variables.
// Environment variables take precedence over the file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit path for the optional env file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	// The file is optional so deployments can configure purely through the environment.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProxyURLs = compact(cfg.ProxyURLs)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SOURCE_URL", "https://dutchie.com/dispensary/ethos-northeast-philadelphia/products/flower")
	v.SetDefault("SOURCE_LABEL", "dutchie:ethos-northeast-philadelphia/flower")
	v.SetDefault("EMBED_SCRIPT_ID", "__NEXT_DATA__")

	v.SetDefault("FETCH_MODE", FetchModeHTTP)
	v.SetDefault("FETCH_TIMEOUT", 20)
	v.SetDefault("USER_AGENT", DefaultUserAgent)
	v.SetDefault("ACCEPT_LANGUAGE", "en-US,en;q=0.9")
	v.SetDefault("PROXY_URLS", []string{})

	v.SetDefault("LOCATOR_MAX_DEPTH", 256)
	v.SetDefault("LOCATOR_MAX_NODES", 500000)

	// Empty disables the run log stores.
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
}

func validate(cfg *Config) error {
	if cfg.ServerPort == "" {
		return errors.New("SERVER_PORT is required")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got: %s", cfg.LogLevel)
	}

	u, err := url.Parse(cfg.SourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("SOURCE_URL must be an absolute http(s) URL, got: %q", cfg.SourceURL)
	}
	if cfg.EmbedScriptID == "" {
		return errors.New("EMBED_SCRIPT_ID is required")
	}

	if cfg.FetchMode != FetchModeHTTP && cfg.FetchMode != FetchModeBrowser {
		return fmt.Errorf("FETCH_MODE must be 'http' or 'browser', got: %s", cfg.FetchMode)
	}
	if cfg.FetchTimeout < 1 {
		return errors.New("FETCH_TIMEOUT must be at least 1 second")
	}
	for _, p := range cfg.ProxyURLs {
		if _, err := url.Parse(p); err != nil {
			return fmt.Errorf("invalid proxy URL %q: %w", p, err)
		}
	}

	if cfg.LocatorMaxDepth < 1 || cfg.LocatorMaxNodes < 1 {
		return errors.New("LOCATOR_MAX_DEPTH and LOCATOR_MAX_NODES must be positive")
	}
	return nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
