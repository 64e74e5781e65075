package article

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/folio/internal/notion"
)

func decode(t *testing.T, raw string) notion.Page {
	t.Helper()
	p, err := notion.DecodePage(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return p
}

func TestMap_Full(t *testing.T) {
	p := decode(t, `{
		"object": "page", "id": "p1", "created_time": "2024-03-04T05:06:07Z",
		"cover": {"type": "file", "file": {"url": "https://s3.example.com/c.png?sig=1"}},
		"properties": {
			"name": {"type": "title", "title": [{"plain_text": "Go 1.23 릴리스"}]},
			"role": {"type": "multi_select", "multi_select": [{"name": "Frontend"}, {"name": "Backend"}]}
		}
	}`)

	a, err := Mapper{}.Map(p)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if a.PageID != "p1" {
		t.Errorf("pageId = %q", a.PageID)
	}
	if a.Title != "Go 1.23 릴리스" {
		t.Errorf("title = %q", a.Title)
	}
	if !a.CreatedAt.Equal(time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)) {
		t.Errorf("createdAt = %v", a.CreatedAt)
	}
	if a.ThumbnailURL != "https://s3.example.com/c.png?sig=1" {
		t.Errorf("thumbnail = %q, want file url unchanged", a.ThumbnailURL)
	}
	if a.Role != "Frontend, Backend" {
		t.Errorf("role = %q, want %q", a.Role, "Frontend, Backend")
	}
	if roles := a.Roles(); len(roles) != 2 || roles[0] != "Frontend" || roles[1] != "Backend" {
		t.Errorf("roles = %v", roles)
	}
	if _, ok := a.Properties["role"]; !ok {
		t.Error("properties should carry the upstream bag")
	}
}

func TestMap_Defaults(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantThumb string
		wantTitle string
		wantRole  string
	}{
		{
			name:      "no cover no title no role",
			raw:       `{"object":"page","id":"p1","properties":{}}`,
			wantThumb: DefaultThumbnail, wantTitle: DefaultTitle, wantRole: DefaultRole,
		},
		{
			name:      "external cover",
			raw:       `{"object":"page","id":"p1","cover":{"type":"external","external":{"url":"https://x/y.png"}},"properties":{}}`,
			wantThumb: DefaultThumbnail, wantTitle: DefaultTitle, wantRole: DefaultRole,
		},
		{
			name:      "empty title segments",
			raw:       `{"object":"page","id":"p1","properties":{"name":{"type":"title","title":[]}}}`,
			wantThumb: DefaultThumbnail, wantTitle: DefaultTitle, wantRole: DefaultRole,
		},
		{
			name:      "role is not multi_select",
			raw:       `{"object":"page","id":"p1","properties":{"role":{"type":"select","select":{"name":"Backend"}}}}`,
			wantThumb: DefaultThumbnail, wantTitle: DefaultTitle, wantRole: DefaultRole,
		},
		{
			name:      "single role",
			raw:       `{"object":"page","id":"p1","properties":{"role":{"type":"multi_select","multi_select":[{"name":"Infra"}]}}}`,
			wantThumb: DefaultThumbnail, wantTitle: DefaultTitle, wantRole: "Infra",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Mapper{}.Map(decode(t, tt.raw))
			if err != nil {
				t.Fatalf("Map: %v", err)
			}
			if a.ThumbnailURL != tt.wantThumb {
				t.Errorf("thumbnail = %q, want %q", a.ThumbnailURL, tt.wantThumb)
			}
			if a.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", a.Title, tt.wantTitle)
			}
			if a.Role != tt.wantRole {
				t.Errorf("role = %q, want %q", a.Role, tt.wantRole)
			}
		})
	}
}

func TestMap_CustomProperties(t *testing.T) {
	p := decode(t, `{"object":"page","id":"p1","properties":{
		"Headline":{"type":"title","title":[{"plain_text":"Custom"}]},
		"Tags":{"type":"multi_select","multi_select":[{"name":"a"},{"name":"b"}]}
	}}`)
	m := Mapper{TitleProperty: "Headline", RoleProperty: "Tags", DefaultThumbnail: "/static/none.png"}

	a, err := m.Map(p)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if a.Title != "Custom" || a.Role != "a, b" || a.ThumbnailURL != "/static/none.png" {
		t.Errorf("got title=%q role=%q thumb=%q", a.Title, a.Role, a.ThumbnailURL)
	}
}

func TestMap_MissingID(t *testing.T) {
	_, err := Mapper{}.Map(notion.Page{})
	var me *notion.MappingError
	if !errors.As(err, &me) {
		t.Fatalf("err = %v, want *notion.MappingError", err)
	}
}

func TestMapAll_PreservesOrder(t *testing.T) {
	pages := []notion.Page{{ID: "c"}, {ID: "a"}, {ID: "b"}}
	arts, err := Mapper{}.MapAll(pages)
	if err != nil {
		t.Fatalf("MapAll: %v", err)
	}
	for i, want := range []string{"c", "a", "b"} {
		if arts[i].PageID != want {
			t.Errorf("arts[%d] = %q, want %q", i, arts[i].PageID, want)
		}
	}

	if _, err := (Mapper{}).MapAll([]notion.Page{{ID: "ok"}, {}}); err == nil {
		t.Error("expected error for page without id")
	}
}

func TestArticleJSONFields(t *testing.T) {
	a, _ := Mapper{}.Map(notion.Page{ID: "p1"})
	out, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(out, &m)
	for _, key := range []string{"pageId", "title", "createdAt", "thumbnailUrl", "role", "properties"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing json field %q in %s", key, out)
		}
	}
}
