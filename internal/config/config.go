// Package config reads the server configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/nicholasjackson/env"
)

// Environment variables
var (
	bindAddress = env.String("BIND_ADDRESS", false,
		":9090", "Bind address for the server")
	logLevel = env.String("LOG_LEVEL", false,
		"debug", "Log output level for the server [debug, info, trace]")
	catalogURL = env.String("CATALOG_URL", false,
		"https://dummyjson.com", "Base URL of the product catalog")
	catalogTimeout = env.String("CATALOG_TIMEOUT", false,
		"5s", "Timeout of a single catalog request")
	narrowBreakpoint = env.String("NARROW_BREAKPOINT", false,
		"768", "Widest viewport in pixels treated as narrow")
	pageSize = env.String("PAGE_SIZE", false,
		"10", "Number of products per list page")
	sessionTTL = env.String("SESSION_TTL", false,
		"30m", "Idle time after which a browser session expires")
	corsOrigins = env.String("CORS_ORIGINS", false,
		"http://localhost:3000", "Comma separated origins allowed to call the JSON API")
)

type Config struct {
	BindAddress      string
	LogLevel         hclog.Level
	CatalogURL       string
	CatalogTimeout   time.Duration
	NarrowBreakpoint int
	PageSize         int
	SessionTTL       time.Duration
	CORSOrigins      []string
}

// Values are the raw environment values before parsing
type Values struct {
	BindAddress      string
	LogLevel         string
	CatalogURL       string
	CatalogTimeout   string
	NarrowBreakpoint string
	PageSize         string
	SessionTTL       string
	CORSOrigins      string
}

// Load parses the environment
func Load() (*Config, error) {
	if err := env.Parse(); err != nil {
		return nil, err
	}

	return Parse(Values{
		BindAddress:      *bindAddress,
		LogLevel:         *logLevel,
		CatalogURL:       *catalogURL,
		CatalogTimeout:   *catalogTimeout,
		NarrowBreakpoint: *narrowBreakpoint,
		PageSize:         *pageSize,
		SessionTTL:       *sessionTTL,
		CORSOrigins:      *corsOrigins,
	})
}

// Parse validates raw values and converts them to a Config
func Parse(v Values) (*Config, error) {
	cfg := &Config{
		BindAddress: v.BindAddress,
		LogLevel:    hclog.LevelFromString(v.LogLevel),
		CatalogURL:  strings.TrimRight(v.CatalogURL, "/"),
	}

	if cfg.LogLevel == hclog.NoLevel {
		return nil, fmt.Errorf("LOG_LEVEL: unknown level %q", v.LogLevel)
	}

	u, err := url.Parse(cfg.CatalogURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("CATALOG_URL: %q is not an http(s) url", v.CatalogURL)
	}

	if cfg.CatalogTimeout, err = positiveDuration("CATALOG_TIMEOUT", v.CatalogTimeout); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = positiveDuration("SESSION_TTL", v.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.NarrowBreakpoint, err = positiveInt("NARROW_BREAKPOINT", v.NarrowBreakpoint); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = positiveInt("PAGE_SIZE", v.PageSize); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(v.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}

func positiveDuration(name, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", name, raw)
	}
	return d, nil
}

func positiveInt(name, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", name, n)
	}
	return n, nil
}
