package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/feeds"

	"github.com/ppiankov/folio/internal/article"
)

// GET /feed.xml: RSS 2.0 of the newest page across all roles.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	res, err := s.lister.ListArticles(r.Context(), s.lister.AllRole(), "")
	if err != nil {
		status, detail := classify(err)
		s.logError(r, status, err)
		http.Error(w, detail.Message, status)
		return
	}

	base := baseURL(r)
	feed := &feeds.Feed{
		Title:       s.title,
		Link:        &feeds.Link{Href: base + "/"},
		Description: s.title + " articles",
		Items:       make([]*feeds.Item, 0, len(res.Articles)),
	}
	if len(res.Articles) > 0 {
		feed.Updated = res.Articles[0].CreatedAt
	}
	for _, a := range res.Articles {
		feed.Items = append(feed.Items, feedItem(base, a))
	}

	// Categories have no place on feeds.Item; set them on the RSS view.
	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	for i, a := range res.Articles {
		rss.Items[i].Category = strings.Join(a.Roles(), ", ")
	}

	body, err := feeds.ToXML(rss)
	if err != nil {
		s.requestLogger(r).Error("encode feed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func feedItem(base string, a article.Article) *feeds.Item {
	return &feeds.Item{
		Title:       a.Title,
		Link:        &feeds.Link{Href: base + "/articles/" + url.PathEscape(a.PageID)},
		Id:          a.PageID,
		IsPermaLink: "false",
		Created:     a.CreatedAt.UTC(),
	}
}

// baseURL reconstructs the public origin, honoring X-Forwarded-Proto.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host
}
