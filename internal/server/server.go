// Package server serves the blog: the JSON API, server-rendered pages, the
// RSS feed, health and metrics endpoints.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/folio/internal/article"
	"github.com/ppiankov/folio/internal/browse"
	"github.com/ppiankov/folio/internal/listing"
	"github.com/ppiankov/folio/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Lister is the listing surface the handlers depend on. *listing.Service
// satisfies it.
type Lister interface {
	ListArticles(ctx context.Context, role, cursor string) (listing.Result, error)
	SearchArticles(ctx context.Context, keyword string) ([]article.Article, error)
	GetPost(ctx context.Context, pageID string) (listing.Post, error)
	Roles() []string
	AllRole() string
}

// Options configures a Server. Zero values fall back to sane defaults.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	SiteTitle string
	StaticDir string // optional directory served at /static/

	Sessions browse.Store     // nil disables session persistence
	Metrics  *metrics.Metrics // nil disables /metrics
	Logger   *slog.Logger
}

// Server wires the handlers to an http.Server.
type Server struct {
	lister   Lister
	sessions browse.Store
	metrics  *metrics.Metrics
	log      *slog.Logger
	title    string
	pages    *template.Template

	mux    *http.ServeMux
	server *http.Server
}

// New builds the server and registers every route.
func New(lister Lister, opts Options) (*Server, error) {
	if lister == nil {
		return nil, errors.New("server: lister is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Sessions == nil {
		opts.Sessions = browse.NopStore{}
	}
	if opts.SiteTitle == "" {
		opts.SiteTitle = "folio"
	}

	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		lister:   lister,
		sessions: opts.Sessions,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		title:    opts.SiteTitle,
		pages:    pages,
		mux:      http.NewServeMux(),
	}
	if err := s.routes(opts.StaticDir); err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(opts.Logger.Handler(), slog.LevelWarn),
	}
	return s, nil
}

func (s *Server) routes(staticDir string) error {
	s.mux.HandleFunc("GET /api/articles", s.handleAPIList)
	s.mux.HandleFunc("GET /api/search", s.handleAPISearch)
	s.mux.HandleFunc("GET /api/articles/{id}", s.handleAPIArticle)

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /more", s.handleMore)
	s.mux.HandleFunc("POST /browse/scroll", s.handleScroll)
	s.mux.HandleFunc("GET /search", s.handleSearch)
	s.mux.HandleFunc("GET /articles/{id}", s.handleArticle)
	s.mux.HandleFunc("GET /feed.xml", s.handleFeed)

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	s.mux.Handle("GET "+article.DefaultThumbnail, http.FileServerFS(assets))
	if strings.TrimSpace(staticDir) != "" {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	return nil
}

// Handler returns the full middleware chain around the mux.
func (s *Server) Handler() http.Handler {
	return withRequestID(s.instrument(s.mux))
}

// ListenAndServe blocks until the server stops. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }
