package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"
)

const (
	defaultDatabaseURL     = "sqlite://data/emotes.db"
	defaultProviderURL     = "https://7tv.io/v3/gql"
	defaultCDNHost         = "cdn.7tv.app"
	defaultTopPages        = 5
	defaultPagesPerRequest = 1
	defaultPageLimit       = 300
	defaultTransformChance = 1.0 / 100.0
	defaultLinkDelay       = 150 * time.Millisecond
	defaultProviderTimeout = 10 * time.Second
)

type (
	Config struct {
		Platform    string `yaml:"platform"`
		BotApiKey   string `yaml:"bot_api_key"`
		GuildID     string `yaml:"guild_id"`
		DatabaseURL string `yaml:"database_url"`
		Debug       bool   `yaml:"debug"`
		// MetricsListen is the address /metrics is served on; empty disables it.
		MetricsListen string `yaml:"metrics_listen"`
		Provider      Provider
		Triage        Triage
	}
	Provider struct {
		URL             string
		CDNHost         string
		Timeout         time.Duration
		TopPages        int
		PagesPerRequest int
		PageLimit       int
	}
	Triage struct {
		TransformChance float64
		LinkDelay       time.Duration
	}
)

func NewConfig(cfgFolderPath string) (*Config, error) {
	const errMsg = "Config.NewConfig"

	c := Default()

	envPath := filepath.Join(cfgFolderPath, "app.env")

	err := c.loadEnv(envPath)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	err = c.validate()
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	return c, nil
}

// Default returns a config with every optional value set.
func Default() *Config {
	return &Config{
		Platform:    PlatformDiscord,
		DatabaseURL: defaultDatabaseURL,
		Provider: Provider{
			URL:             defaultProviderURL,
			CDNHost:         defaultCDNHost,
			Timeout:         defaultProviderTimeout,
			TopPages:        defaultTopPages,
			PagesPerRequest: defaultPagesPerRequest,
			PageLimit:       defaultPageLimit,
		},
		Triage: Triage{
			TransformChance: defaultTransformChance,
			LinkDelay:       defaultLinkDelay,
		},
	}
}

func (c *Config) loadEnv(filePath string) error {
	err := godotenv.Load(filePath)
	if err != nil {
		return errors.Wrap(err, "loadEnv")
	}

	return c.readEnv()
}

func (c *Config) readEnv() error {
	c.BotApiKey = os.Getenv("bot_api_key")
	c.GuildID = os.Getenv("guild_id")
	c.MetricsListen = os.Getenv("metrics_listen")
	c.Debug, _ = strconv.ParseBool(os.Getenv("debug"))

	setString(&c.Platform, "platform")
	setString(&c.DatabaseURL, "database_url")
	setString(&c.Provider.URL, "provider_url")
	setString(&c.Provider.CDNHost, "cdn_host")

	for key, dst := range map[string]*int{
		"top_pages":         &c.Provider.TopPages,
		"pages_per_request": &c.Provider.PagesPerRequest,
		"page_limit":        &c.Provider.PageLimit,
	} {
		if err := setInt(dst, key); err != nil {
			return errors.Wrap(err, "readEnv")
		}
	}

	if v := os.Getenv("transform_chance"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(err, "readEnv: transform_chance")
		}
		c.Triage.TransformChance = f
	}

	var delayMs, timeoutSec int
	if err := setInt(&delayMs, "link_delay_ms"); err != nil {
		return errors.Wrap(err, "readEnv")
	}
	if os.Getenv("link_delay_ms") != "" {
		c.Triage.LinkDelay = time.Duration(delayMs) * time.Millisecond
	}

	if err := setInt(&timeoutSec, "provider_timeout_sec"); err != nil {
		return errors.Wrap(err, "readEnv")
	}
	if timeoutSec > 0 {
		c.Provider.Timeout = time.Duration(timeoutSec) * time.Second
	}

	return nil
}

func (c *Config) validate() error {
	var err error

	switch {
	case c.BotApiKey == "":
		err = errors.New("bot_api_key is required")
	case c.Platform != PlatformDiscord && c.Platform != PlatformTelegram:
		err = errors.Errorf("unknown platform %q", c.Platform)
	case c.Provider.TopPages < 1 || c.Provider.PagesPerRequest < 1 || c.Provider.PageLimit < 1:
		err = errors.New("top_pages, pages_per_request and page_limit must be positive")
	case c.Triage.TransformChance < 0 || c.Triage.TransformChance > 1:
		err = errors.New("transform_chance must be within [0, 1]")
	case c.Triage.LinkDelay < 0:
		err = errors.New("link_delay_ms must not be negative")
	}

	if err != nil {
		return errors.Wrap(err, "validate")
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrap(err, key)
	}
	*dst = n

	return nil
}
