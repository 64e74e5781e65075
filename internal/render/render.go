// Package render formats article listings and posts for the CLI.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/folio/internal/article"
	"github.com/ppiankov/folio/internal/listing"
)

// ListInput is one page of a listing or a search result.
type ListInput struct {
	Heading    string
	Articles   []article.Article
	NextCursor string
	Now        time.Time // reference for relative ages; zero means time.Now
}

func (in ListInput) now() time.Time {
	if in.Now.IsZero() {
		return time.Now()
	}
	return in.Now
}

// Formatter writes listings and posts to w.
type Formatter interface {
	FormatList(w io.Writer, in ListInput) error
	FormatPost(w io.Writer, post listing.Post) error
}

// New returns the formatter for name: terminal (default), json or markdown.
func New(name string, color bool) (Formatter, error) {
	switch name {
	case "", "terminal":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want terminal, json, or markdown)", name)
	}
}
