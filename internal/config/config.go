package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile       = "config.yaml"
	DefaultConfigDir        = ".folio"
	DefaultTokenEnv         = "NOTION_TOKEN"
	DefaultDatabaseIDEnv    = "NOTION_DATABASE_ID"
	DefaultNotionBaseURL    = "https://api.notion.com"
	DefaultNotionVersion    = "2022-06-28"
	DefaultNotionTimeout    = 30 * time.Second
	DefaultExposureProperty = "exposure"
	DefaultTitleProperty    = "name"
	DefaultRoleProperty     = "role"
	DefaultPageSize         = 10
	DefaultSearchLimit      = 100
	DefaultAllRole          = "전체"
	DefaultThumbnail        = "/default_cover_image.png"
	DefaultListen           = ":8080"
	DefaultReadTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 30 * time.Second
	DefaultIdleTimeout      = 60 * time.Second
	DefaultShutdownTimeout  = 5 * time.Second
	DefaultSiteTitle        = "folio"
	DefaultSessionBackend   = "memory"
	DefaultSessionPath      = ".folio/sessions.db"
	DefaultSessionTTL       = 24 * time.Hour
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "auto"
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Notion  NotionConfig  `yaml:"notion"`
	Listing ListingConfig `yaml:"listing"`
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

type NotionConfig struct {
	TokenEnv         string   `yaml:"token_env"`
	DatabaseIDEnv    string   `yaml:"database_id_env"`
	BaseURL          string   `yaml:"base_url"`
	Version          string   `yaml:"version"`
	Timeout          Duration `yaml:"timeout"`
	ExposureProperty string   `yaml:"exposure_property"`
	TitleProperty    string   `yaml:"title_property"`
	RoleProperty     string   `yaml:"role_property"`

	// Resolved from env vars at load time.
	Token      string `yaml:"-"`
	DatabaseID string `yaml:"-"`
}

type ListingConfig struct {
	PageSize         int      `yaml:"page_size"`
	SearchLimit      int      `yaml:"search_limit"`
	AllRole          string   `yaml:"all_role"`
	Roles            []string `yaml:"roles"`
	DefaultThumbnail string   `yaml:"default_thumbnail"`
}

type ServerConfig struct {
	Listen          string   `yaml:"listen"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	StaticDir       string   `yaml:"static_dir"`
	SiteTitle       string   `yaml:"site_title"`
}

type SessionConfig struct {
	Backend string   `yaml:"backend"` // memory, sqlite, none
	Path    string   `yaml:"path"`
	TTL     Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json, auto
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	n := &cfg.Notion
	if n.TokenEnv == "" {
		n.TokenEnv = DefaultTokenEnv
	}
	if n.DatabaseIDEnv == "" {
		n.DatabaseIDEnv = DefaultDatabaseIDEnv
	}
	if n.BaseURL == "" {
		n.BaseURL = DefaultNotionBaseURL
	}
	if n.Version == "" {
		n.Version = DefaultNotionVersion
	}
	if n.Timeout.Duration == 0 {
		n.Timeout.Duration = DefaultNotionTimeout
	}
	if n.ExposureProperty == "" {
		n.ExposureProperty = DefaultExposureProperty
	}
	if n.TitleProperty == "" {
		n.TitleProperty = DefaultTitleProperty
	}
	if n.RoleProperty == "" {
		n.RoleProperty = DefaultRoleProperty
	}

	l := &cfg.Listing
	if l.PageSize == 0 {
		l.PageSize = DefaultPageSize
	}
	if l.SearchLimit == 0 {
		l.SearchLimit = DefaultSearchLimit
	}
	if l.AllRole == "" {
		l.AllRole = DefaultAllRole
	}
	if l.DefaultThumbnail == "" {
		l.DefaultThumbnail = DefaultThumbnail
	}

	s := &cfg.Server
	if s.Listen == "" {
		s.Listen = DefaultListen
	}
	if s.ReadTimeout.Duration == 0 {
		s.ReadTimeout.Duration = DefaultReadTimeout
	}
	if s.WriteTimeout.Duration == 0 {
		s.WriteTimeout.Duration = DefaultWriteTimeout
	}
	if s.IdleTimeout.Duration == 0 {
		s.IdleTimeout.Duration = DefaultIdleTimeout
	}
	if s.ShutdownTimeout.Duration == 0 {
		s.ShutdownTimeout.Duration = DefaultShutdownTimeout
	}
	if s.SiteTitle == "" {
		s.SiteTitle = DefaultSiteTitle
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = DefaultSessionBackend
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = DefaultSessionPath
	}
	if cfg.Session.TTL.Duration == 0 {
		cfg.Session.TTL.Duration = DefaultSessionTTL
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

func resolveEnv(cfg *Config) {
	cfg.Notion.Token = strings.TrimSpace(os.Getenv(cfg.Notion.TokenEnv))
	cfg.Notion.DatabaseID = strings.TrimSpace(os.Getenv(cfg.Notion.DatabaseIDEnv))
}

func validate(cfg *Config) error {
	if cfg.Notion.Token == "" {
		return fmt.Errorf("notion: env %s is empty", cfg.Notion.TokenEnv)
	}
	if cfg.Notion.DatabaseID == "" {
		return fmt.Errorf("notion: env %s is empty", cfg.Notion.DatabaseIDEnv)
	}
	if !strings.HasPrefix(cfg.Notion.BaseURL, "http://") && !strings.HasPrefix(cfg.Notion.BaseURL, "https://") {
		return fmt.Errorf("notion.base_url: %q is not an http(s) URL", cfg.Notion.BaseURL)
	}

	if cfg.Listing.PageSize < 1 || cfg.Listing.PageSize > 100 {
		return fmt.Errorf("listing.page_size: %d out of range 1..100", cfg.Listing.PageSize)
	}
	if cfg.Listing.SearchLimit < 1 || cfg.Listing.SearchLimit > 100 {
		return fmt.Errorf("listing.search_limit: %d out of range 1..100", cfg.Listing.SearchLimit)
	}
	seen := make(map[string]bool)
	for _, r := range cfg.Listing.Roles {
		if strings.TrimSpace(r) == "" {
			return errors.New("listing.roles: empty role")
		}
		if seen[r] {
			return fmt.Errorf("listing.roles: duplicate role %q", r)
		}
		seen[r] = true
	}

	switch cfg.Session.Backend {
	case "memory", "sqlite", "none":
		// valid
	default:
		return fmt.Errorf("session.backend: unknown backend %q (want memory, sqlite or none)", cfg.Session.Backend)
	}
	if cfg.Session.TTL.Duration < 0 {
		return fmt.Errorf("session.ttl: %v is negative", cfg.Session.TTL.Duration)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "text", "json", "auto":
		// valid
	default:
		return fmt.Errorf("log.format: unknown format %q (want text, json or auto)", cfg.Log.Format)
	}

	return nil
}
