package render

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/folio/internal/article"
	"github.com/ppiankov/folio/internal/listing"
)

type jsonList struct {
	Articles   []article.Article `json:"articles"`
	NextCursor *string           `json:"nextCursor"`
}

type jsonPost struct {
	Article article.Article `json:"article"`
	Content string          `json:"content"`
}

// JSONFormatter formats listings with the same shapes the HTTP API returns.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) FormatList(w io.Writer, in ListInput) error {
	out := jsonList{Articles: in.Articles}
	if out.Articles == nil {
		out.Articles = []article.Article{}
	}
	if in.NextCursor != "" {
		out.NextCursor = &in.NextCursor
	}
	return encode(w, out)
}

func (f *JSONFormatter) FormatPost(w io.Writer, post listing.Post) error {
	return encode(w, jsonPost{Article: post.Article, Content: post.Content})
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
