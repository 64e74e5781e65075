// Package listing provides the article retrieval contract used by the HTTP
// layer: role-filtered cursor pagination, keyword search and single posts.
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/folio/internal/article"
	"github.com/ppiankov/folio/internal/notion"
)

const (
	DefaultPageSize    = 10
	DefaultSearchLimit = 100
	DefaultAllRole     = "전체"
)

// ErrEmptyKeyword is returned by SearchArticles for a blank keyword.
var ErrEmptyKeyword = errors.New("listing: search keyword is required")

// ContentClient is the subset of the Notion client the service needs.
type ContentClient interface {
	QueryDatabase(ctx context.Context, q notion.Query) (notion.QueryResult, error)
	GetPage(ctx context.Context, id string) (notion.Page, error)
	PageMarkdown(ctx context.Context, id string) (string, error)
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	PageSize         int
	SearchLimit      int
	AllRole          string
	Roles            []string
	RoleProperty     string
	TitleProperty    string
	ExposureProperty string
}

// Result is one page of a listing. An empty NextCursor means no more pages.
type Result struct {
	Articles   []article.Article
	NextCursor string
}

// Post is a single article with its rendered Markdown body.
type Post struct {
	article.Article
	Content string
}

// Service implements listing, search and post retrieval.
type Service struct {
	client ContentClient
	mapper article.Mapper
	opts   Options
}

// New creates a Service.
func New(client ContentClient, mapper article.Mapper, opts Options) (*Service, error) {
	if client == nil {
		return nil, errors.New("listing: content client is required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PageSize > notion.MaxPageSize {
		return nil, fmt.Errorf("listing: page size %d exceeds %d", opts.PageSize, notion.MaxPageSize)
	}
	if opts.SearchLimit <= 0 || opts.SearchLimit > notion.MaxPageSize {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.AllRole == "" {
		opts.AllRole = DefaultAllRole
	}
	if opts.RoleProperty == "" {
		opts.RoleProperty = article.DefaultRoleProperty
	}
	if opts.TitleProperty == "" {
		opts.TitleProperty = article.DefaultTitleProperty
	}
	if opts.ExposureProperty == "" {
		opts.ExposureProperty = notion.DefaultExposureProperty
	}
	if mapper.RoleProperty == "" {
		mapper.RoleProperty = opts.RoleProperty
	}
	if mapper.TitleProperty == "" {
		mapper.TitleProperty = opts.TitleProperty
	}
	return &Service{client: client, mapper: mapper, opts: opts}, nil
}

// AllRole returns the sentinel that disables role filtering.
func (s *Service) AllRole() string { return s.opts.AllRole }

// PageSize returns the configured listing page size.
func (s *Service) PageSize() int { return s.opts.PageSize }

// Roles returns the selectable roles with the "all" sentinel first.
func (s *Service) Roles() []string {
	roles := []string{s.opts.AllRole}
	for _, r := range s.opts.Roles {
		if r == s.opts.AllRole || strings.TrimSpace(r) == "" {
			continue
		}
		roles = append(roles, r)
	}
	return roles
}

// IsAll reports whether role selects every article.
func (s *Service) IsAll(role string) bool {
	role = strings.TrimSpace(role)
	return role == "" || role == s.opts.AllRole
}

// ListArticles returns one page of exposed articles, newest first. The
// cursor is handed to the upstream as is; ordering and page boundaries are
// owned by the upstream.
func (s *Service) ListArticles(ctx context.Context, role, cursor string) (Result, error) {
	q := notion.Query{
		Sorts:       []notion.Sort{notion.NewestFirst},
		StartCursor: cursor,
		PageSize:    s.opts.PageSize,
	}
	if !s.IsAll(role) {
		q.Filter = notion.MultiSelectContains(s.opts.RoleProperty, strings.TrimSpace(role))
	}

	res, err := s.client.QueryDatabase(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("list articles: %w", err)
	}
	arts, err := s.mapper.MapAll(res.Pages)
	if err != nil {
		return Result{}, fmt.Errorf("list articles: %w", err)
	}

	out := Result{Articles: arts}
	if res.HasMore {
		out.NextCursor = res.NextCursor
	}
	return out, nil
}

// SearchArticles returns exposed articles whose title contains keyword.
// Matching is the upstream's "contains" operator. The result is a single
// bounded page.
func (s *Service) SearchArticles(ctx context.Context, keyword string) ([]article.Article, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, ErrEmptyKeyword
	}

	res, err := s.client.QueryDatabase(ctx, notion.Query{
		Filter:   notion.TitleContains(s.opts.TitleProperty, keyword),
		Sorts:    []notion.Sort{notion.NewestFirst},
		PageSize: s.opts.SearchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	arts, err := s.mapper.MapAll(res.Pages)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return arts, nil
}

// GetPost returns one article with its content rendered as Markdown. Pages
// whose exposure checkbox is missing or unchecked are reported as not found.
func (s *Service) GetPost(ctx context.Context, pageID string) (Post, error) {
	page, err := s.client.GetPage(ctx, pageID)
	if err != nil {
		return Post{}, fmt.Errorf("get post %s: %w", pageID, err)
	}
	if exp, ok := page.Properties[s.opts.ExposureProperty]; !ok || exp.Type != notion.TypeCheckbox || !exp.Checkbox {
		return Post{}, fmt.Errorf("get post %s: %w", pageID, notion.ErrNotFound)
	}
	a, err := s.mapper.Map(page)
	if err != nil {
		return Post{}, fmt.Errorf("get post %s: %w", pageID, err)
	}
	content, err := s.client.PageMarkdown(ctx, pageID)
	if err != nil {
		return Post{}, fmt.Errorf("get post %s content: %w", pageID, err)
	}
	return Post{Article: a, Content: content}, nil
}
