// Package article maps Notion database records to the Article view model.
package article

import (
	"errors"
	"strings"
	"time"

	"github.com/ppiankov/folio/internal/notion"
)

const (
	DefaultTitle         = "untitled"
	DefaultRole          = "None"
	DefaultThumbnail     = "/default_cover_image.png"
	DefaultTitleProperty = "name"
	DefaultRoleProperty  = "role"

	roleSeparator = ", "
)

// Article is the view model for one published page.
type Article struct {
	PageID       string                     `json:"pageId"`
	Title        string                     `json:"title"`
	CreatedAt    time.Time                  `json:"createdAt"`
	ThumbnailURL string                     `json:"thumbnailUrl"`
	Role         string                     `json:"role"`
	Properties   map[string]notion.Property `json:"properties"`
}

// Roles splits the joined role string back into tags. The "None"
// placeholder yields no tags.
func (a Article) Roles() []string {
	if a.Role == "" || a.Role == DefaultRole {
		return nil
	}
	return strings.Split(a.Role, roleSeparator)
}

// Mapper converts pages to articles. Zero fields fall back to defaults.
type Mapper struct {
	TitleProperty    string
	RoleProperty     string
	DefaultThumbnail string
}

// Map converts one page. Missing optional fields degrade to defaults; only a
// page without an id is rejected.
func (m Mapper) Map(p notion.Page) (Article, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Article{}, &notion.MappingError{Field: "id", Err: errors.New("missing id")}
	}

	title := p.Properties[m.titleProperty()].PlainText()
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	thumb := p.Cover.HostedURL()
	if thumb == "" {
		thumb = m.defaultThumbnail()
	}

	role := DefaultRole
	if prop, ok := p.Properties[m.roleProperty()]; ok && prop.Type == notion.TypeMultiSelect {
		role = strings.Join(prop.OptionNames(), roleSeparator)
	}

	props := p.Properties
	if props == nil {
		props = map[string]notion.Property{}
	}

	return Article{
		PageID:       p.ID,
		Title:        title,
		CreatedAt:    p.CreatedTime,
		ThumbnailURL: thumb,
		Role:         role,
		Properties:   props,
	}, nil
}

// MapAll converts pages in order. The first failure aborts the batch.
func (m Mapper) MapAll(pages []notion.Page) ([]Article, error) {
	out := make([]Article, 0, len(pages))
	for _, p := range pages {
		a, err := m.Map(p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (m Mapper) titleProperty() string {
	if m.TitleProperty == "" {
		return DefaultTitleProperty
	}
	return m.TitleProperty
}

func (m Mapper) roleProperty() string {
	if m.RoleProperty == "" {
		return DefaultRoleProperty
	}
	return m.RoleProperty
}

func (m Mapper) defaultThumbnail() string {
	if m.DefaultThumbnail == "" {
		return DefaultThumbnail
	}
	return m.DefaultThumbnail
}
