package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/ppiankov/folio/internal/article"
	"github.com/ppiankov/folio/internal/browse"
	"github.com/ppiankov/folio/internal/listing"
)

const sessionCookie = "folio_session"

type roleChip struct {
	Name   string
	Active bool
}

type pageData struct {
	SiteTitle string
	Title     string

	Roles      []roleChip
	Role       string
	Articles   []article.Article
	NextCursor string
	ScrollY    int

	Keyword  string
	Searched bool

	Post *listing.Post
	Body template.HTML

	Status  int
	Message string
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"ago":  func(t time.Time) string { return humanize.Time(t) },
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
	}
	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	data.SiteTitle = s.title
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.requestLogger(r).Error("render page", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := classify(err)
	s.logError(r, status, err)
	s.render(w, r, status, "error", pageData{
		Title:   http.StatusText(status),
		Status:  status,
		Message: detail.Message,
	})
}

// controller binds the request to its browse session, issuing a session
// cookie when the request carries none.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) *browse.Controller {
	id := sessionID(r)
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return browse.NewController(id, s.sessions, s.lister, s.requestLogger(r))
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) listingPage(st browse.State) pageData {
	roles := s.lister.Roles()
	chips := make([]roleChip, 0, len(roles))
	for _, role := range roles {
		chips = append(chips, roleChip{Name: role, Active: role == st.Role})
	}
	return pageData{
		Roles:      chips,
		Role:       st.Role,
		Articles:   st.Articles,
		NextCursor: st.NextCursor,
		ScrollY:    st.ScrollY,
	}
}

// GET /?role=&select=
// A role chip carries select=1 and always restarts the listing from its
// first page. Without it the stored listing is rehydrated.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctrl := s.controller(w, r)
	q := r.URL.Query()

	role := strings.TrimSpace(q.Get("role"))
	if role == "" {
		if ctrl.Restore(ctx) {
			role = ctrl.State().Role
		} else {
			role = s.lister.AllRole()
		}
	}

	var (
		st  browse.State
		err error
	)
	if q.Get("select") != "" {
		st, err = ctrl.SelectRole(ctx, role)
	} else {
		st, err = ctrl.Mount(ctx, role)
	}
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index", s.listingPage(st))
}

// GET /more?role=&cursor= appends the next page to the session listing.
// The query carries the cursor for sessions that persist nothing.
func (s *Server) handleMore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctrl := s.controller(w, r)
	q := r.URL.Query()
	cursor := q.Get("cursor")

	if ctrl.Restore(ctx) {
		// A reload of an already followed link must not load yet another page.
		if st := ctrl.State(); cursor != "" && st.NextCursor != cursor {
			s.render(w, r, http.StatusOK, "index", s.listingPage(st))
			return
		}
	} else {
		if cursor == "" {
			http.Redirect(w, r, "/?role="+url.QueryEscape(q.Get("role")), http.StatusSeeOther)
			return
		}
		role := strings.TrimSpace(q.Get("role"))
		if role == "" {
			role = s.lister.AllRole()
		}
		ctrl.Resume(role, cursor)
	}

	st, err := ctrl.LoadMore(ctx)
	if err != nil && !errors.Is(err, browse.ErrNoMorePages) {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index", s.listingPage(st))
}

// POST /browse/scroll records the scroll offset of the session listing.
func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	y, err := strconv.Atoi(r.FormValue("y"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: y must be an integer", errBadRequest))
		return
	}

	id := sessionID(r)
	if id != "" {
		ctrl := browse.NewController(id, s.sessions, s.lister, s.requestLogger(r))
		if ctrl.Restore(r.Context()) {
			_ = ctrl.SaveScroll(r.Context(), y)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /search?q=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))
	data := pageData{Title: "Search", Keyword: keyword}
	if keyword == "" {
		s.render(w, r, http.StatusOK, "search", data)
		return
	}

	arts, err := s.lister.SearchArticles(r.Context(), keyword)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	data.Articles = arts
	data.Searched = true
	s.render(w, r, http.StatusOK, "search", data)
}

// GET /articles/{id}
func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	post, err := s.lister.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(post.Content), &body); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "article", pageData{
		Title: post.Title,
		Post:  &post,
		Body:  template.HTML(body.String()),
	})
}
