package notion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Property types understood by the decoder. Other types are kept as raw JSON.
const (
	TypeTitle       = "title"
	TypeRichText    = "rich_text"
	TypeMultiSelect = "multi_select"
	TypeSelect      = "select"
	TypeCheckbox    = "checkbox"
	TypeNumber      = "number"
	TypeURL         = "url"
	TypeDate        = "date"
)

// Page is one database record. DatabaseID is the parent database, empty
// when the page hangs off another page or the workspace.
type Page struct {
	ID          string
	DatabaseID  string
	CreatedTime time.Time
	Cover       *File
	Properties  map[string]Property
}

// InDatabase reports whether the page belongs to database id. Ids compare
// with or without dashes.
func (p Page) InDatabase(id string) bool {
	return p.DatabaseID != "" && compactID(p.DatabaseID) == compactID(id)
}

func compactID(id string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
}

// File is a cover or image reference. Type is "file" for Notion-hosted
// uploads and "external" for linked images.
type File struct {
	Type string `json:"type"`
	File *struct {
		URL string `json:"url"`
	} `json:"file,omitempty"`
	External *struct {
		URL string `json:"url"`
	} `json:"external,omitempty"`
}

// HostedURL returns the URL of a Notion-hosted file, or "" for any other kind.
func (f *File) HostedURL() string {
	if f == nil || f.Type != "file" || f.File == nil {
		return ""
	}
	return f.File.URL
}

// URL returns the file URL regardless of hosting.
func (f *File) URL() string {
	if f == nil {
		return ""
	}
	switch {
	case f.Type == "file" && f.File != nil:
		return f.File.URL
	case f.Type == "external" && f.External != nil:
		return f.External.URL
	}
	return ""
}

// RichText is one styled text segment.
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations"`
}

type Annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Underline     bool `json:"underline"`
	Code          bool `json:"code"`
}

// SelectOption is one select / multi_select value.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Property is a decoded page property. Type selects which field is
// populated; Raw always holds the original JSON.
type Property struct {
	ID          string
	Type        string
	Title       []RichText
	RichText    []RichText
	MultiSelect []SelectOption
	Select      *SelectOption
	Checkbox    bool
	Number      *float64
	URL         string
	Date        *DateValue
	Raw         json.RawMessage
}

// PlainText concatenates the segments of a title or rich_text property.
func (p Property) PlainText() string {
	var segs []RichText
	switch p.Type {
	case TypeTitle:
		segs = p.Title
	case TypeRichText:
		segs = p.RichText
	default:
		return ""
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.PlainText)
	}
	return b.String()
}

// OptionNames returns multi_select option names in order.
func (p Property) OptionNames() []string {
	if p.Type != TypeMultiSelect {
		return nil
	}
	names := make([]string, 0, len(p.MultiSelect))
	for _, o := range p.MultiSelect {
		names = append(names, o.Name)
	}
	return names
}

// MarshalJSON re-emits the upstream JSON untouched. Properties built in
// code (no Raw) are encoded from their typed fields.
func (p Property) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	out := map[string]any{"id": p.ID, "type": p.Type}
	switch p.Type {
	case TypeTitle:
		out[p.Type] = orEmpty(p.Title)
	case TypeRichText:
		out[p.Type] = orEmpty(p.RichText)
	case TypeMultiSelect:
		out[p.Type] = orEmpty(p.MultiSelect)
	case TypeSelect:
		out[p.Type] = p.Select
	case TypeCheckbox:
		out[p.Type] = p.Checkbox
	case TypeNumber:
		out[p.Type] = p.Number
	case TypeURL:
		out[p.Type] = p.URL
	case TypeDate:
		out[p.Type] = p.Date
	default:
		out[p.Type] = nil
	}
	return json.Marshal(out)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// UnmarshalJSON decodes a property by its type discriminant.
func (p *Property) UnmarshalJSON(b []byte) error {
	raw := make(json.RawMessage, len(b))
	copy(raw, b)
	decoded, err := decodeProperty(raw)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// decodeProperty decodes one property by its type discriminant.
func decodeProperty(raw json.RawMessage) (Property, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Property{}, err
	}

	p := Property{Raw: raw}
	if v, ok := fields["id"]; ok {
		if err := json.Unmarshal(v, &p.ID); err != nil {
			return Property{}, fmt.Errorf("id: %w", err)
		}
	}
	t, ok := fields["type"]
	if !ok {
		return Property{}, errors.New("missing type")
	}
	if err := json.Unmarshal(t, &p.Type); err != nil || p.Type == "" {
		return Property{}, errors.New("invalid type")
	}

	payload, ok := fields[p.Type]
	if !ok {
		return Property{}, fmt.Errorf("missing %s payload", p.Type)
	}
	isNull := bytes.Equal(bytes.TrimSpace(payload), []byte("null"))

	var err error
	switch p.Type {
	case TypeTitle:
		err = decodeList(payload, isNull, &p.Title)
	case TypeRichText:
		err = decodeList(payload, isNull, &p.RichText)
	case TypeMultiSelect:
		err = decodeList(payload, isNull, &p.MultiSelect)
	case TypeSelect:
		if !isNull {
			p.Select = &SelectOption{}
			err = json.Unmarshal(payload, p.Select)
		}
	case TypeCheckbox:
		err = json.Unmarshal(payload, &p.Checkbox)
	case TypeNumber:
		if !isNull {
			p.Number = new(float64)
			err = json.Unmarshal(payload, p.Number)
		}
	case TypeURL:
		if !isNull {
			err = json.Unmarshal(payload, &p.URL)
		}
	case TypeDate:
		if !isNull {
			p.Date = &DateValue{}
			err = json.Unmarshal(payload, p.Date)
		}
	}
	if err != nil {
		return Property{}, fmt.Errorf("%s payload: %w", p.Type, err)
	}
	return p, nil
}

func decodeList[T any](payload json.RawMessage, isNull bool, dst *[]T) error {
	if isNull {
		return nil
	}
	return json.Unmarshal(payload, dst)
}

type rawParent struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id"`
}

type rawPage struct {
	Object      string                     `json:"object"`
	ID          string                     `json:"id"`
	CreatedTime string                     `json:"created_time"`
	Cover       *File                      `json:"cover"`
	Parent      rawParent                  `json:"parent"`
	Properties  map[string]json.RawMessage `json:"properties"`
}

// DecodePage decodes one page object. Any shape mismatch yields *MappingError.
func DecodePage(raw json.RawMessage) (Page, error) {
	var rp rawPage
	if err := json.Unmarshal(raw, &rp); err != nil {
		return Page{}, &MappingError{Err: err}
	}
	if rp.Object != "" && rp.Object != "page" {
		return Page{}, &MappingError{ID: rp.ID, Field: "object", Err: fmt.Errorf("unexpected object %q", rp.Object)}
	}
	if strings.TrimSpace(rp.ID) == "" {
		return Page{}, &MappingError{Field: "id", Err: errors.New("missing id")}
	}

	page := Page{
		ID:         rp.ID,
		DatabaseID: rp.Parent.DatabaseID,
		Cover:      rp.Cover,
		Properties: make(map[string]Property, len(rp.Properties)),
	}
	if rp.CreatedTime != "" {
		ts, err := time.Parse(time.RFC3339, rp.CreatedTime)
		if err != nil {
			return Page{}, &MappingError{ID: rp.ID, Field: "created_time", Err: err}
		}
		page.CreatedTime = ts
	}
	for name, v := range rp.Properties {
		prop, err := decodeProperty(v)
		if err != nil {
			return Page{}, &MappingError{ID: rp.ID, Field: name, Err: err}
		}
		page.Properties[name] = prop
	}
	return page, nil
}
