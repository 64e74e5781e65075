package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ppiankov/folio/internal/article"
	"github.com/ppiankov/folio/internal/browse"
	"github.com/ppiankov/folio/internal/config"
	"github.com/ppiankov/folio/internal/listing"
	"github.com/ppiankov/folio/internal/logging"
	"github.com/ppiankov/folio/internal/notion"
)

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
}

func newNotionClient(cfg *config.Config, observe notion.Observer) (*notion.Client, error) {
	client, err := notion.New(notion.Options{
		Token:            cfg.Notion.Token,
		DatabaseID:       cfg.Notion.DatabaseID,
		BaseURL:          cfg.Notion.BaseURL,
		Version:          cfg.Notion.Version,
		UserAgent:        "folio/" + Version,
		Timeout:          cfg.Notion.Timeout.Duration,
		ExposureProperty: cfg.Notion.ExposureProperty,
		Observer:         observe,
	})
	if err != nil {
		return nil, fmt.Errorf("create notion client: %w", err)
	}
	return client, nil
}

func newListing(cfg *config.Config, client listing.ContentClient) (*listing.Service, error) {
	mapper := article.Mapper{
		TitleProperty:    cfg.Notion.TitleProperty,
		RoleProperty:     cfg.Notion.RoleProperty,
		DefaultThumbnail: cfg.Listing.DefaultThumbnail,
	}
	svc, err := listing.New(client, mapper, listing.Options{
		PageSize:         cfg.Listing.PageSize,
		SearchLimit:      cfg.Listing.SearchLimit,
		AllRole:          cfg.Listing.AllRole,
		Roles:            cfg.Listing.Roles,
		RoleProperty:     cfg.Notion.RoleProperty,
		TitleProperty:    cfg.Notion.TitleProperty,
		ExposureProperty: cfg.Notion.ExposureProperty,
	})
	if err != nil {
		return nil, fmt.Errorf("create listing service: %w", err)
	}
	return svc, nil
}

// loadService is the config -> client -> service chain shared by the
// read-only commands.
func loadService() (*config.Config, *listing.Service, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	client, err := newNotionClient(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	svc, err := newListing(cfg, client)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

// openSessions returns the configured session store. The SQLite store is
// also returned separately so callers can prune and close it.
func openSessions(cfg *config.Config) (browse.Store, *browse.SQLiteStore, error) {
	switch cfg.Session.Backend {
	case "sqlite":
		db, err := browse.OpenSQLite(cfg.Session.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		return db, db, nil
	case "none":
		return browse.NopStore{}, nil, nil
	default:
		return browse.NewMemoryStore(), nil, nil
	}
}
