package server

import (
	"net/http"

	"github.com/ppiankov/folio/internal/article"
)

type articlesResponse struct {
	Articles   []article.Article `json:"articles"`
	NextCursor *string           `json:"nextCursor"`
}

type searchResponse struct {
	Articles []article.Article `json:"articles"`
}

type articleResponse struct {
	Article article.Article `json:"article"`
	Content string          `json:"content"`
}

func nonNil(arts []article.Article) []article.Article {
	if arts == nil {
		return []article.Article{}
	}
	return arts
}

// GET /api/articles?cursor=&role=
func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.lister.ListArticles(r.Context(), q.Get("role"), q.Get("cursor"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := articlesResponse{Articles: nonNil(res.Articles)}
	if res.NextCursor != "" {
		out.NextCursor = &res.NextCursor
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/search?q=
func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	arts, err := s.lister.SearchArticles(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Articles: nonNil(arts)})
}

// GET /api/articles/{id}
func (s *Server) handleAPIArticle(w http.ResponseWriter, r *http.Request) {
	post, err := s.lister.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articleResponse{Article: post.Article, Content: post.Content})
}
