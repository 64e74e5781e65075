// Package browse keeps the per-visitor listing state behind the index page:
// the selected role, the articles accumulated through "load more", the
// pagination cursor and the last scroll offset.
package browse

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/folio/internal/article"
)

// State is the persisted listing state of one session.
type State struct {
	Role       string            `json:"role"`
	Articles   []article.Article `json:"articles"`
	NextCursor string            `json:"nextCursor,omitempty"`
	ScrollY    int               `json:"scrollY,omitempty"`
}

// HasMore reports whether another page can be loaded.
func (s State) HasMore() bool { return s.NextCursor != "" }

// clone copies the article slice so callers cannot alias controller state.
func (s State) clone() State {
	out := s
	out.Articles = append([]article.Article(nil), s.Articles...)
	return out
}

// Codec serializes State for a Store.
type Codec interface {
	Encode(State) ([]byte, error)
	Decode([]byte) (State, error)
}

// JSONCodec is the default Codec.
type JSONCodec struct{}

func (JSONCodec) Encode(s State) ([]byte, error) {
	if s.Articles == nil {
		s.Articles = []article.Article{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

func (JSONCodec) Decode(b []byte) (State, error) {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}
