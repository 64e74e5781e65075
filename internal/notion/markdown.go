package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// maxBlockDepth bounds recursion into nested blocks.
const maxBlockDepth = 8

// Block is one content block of a page.
type Block struct {
	ID          string
	Type        string
	HasChildren bool
	Content     BlockContent
	Children    []Block
}

// BlockContent is the union of the block payload fields folio renders.
type BlockContent struct {
	RichText   []RichText `json:"rich_text"`
	Caption    []RichText `json:"caption"`
	Checked    bool       `json:"checked"`
	Language   string     `json:"language"`
	URL        string     `json:"url"`
	Expression string     `json:"expression"`
	Title      string     `json:"title"`
	File
}

type rawBlock struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var rb rawBlock
	if err := json.Unmarshal(raw, &rb); err != nil {
		return Block{}, &MappingError{Err: err}
	}
	if rb.ID == "" || rb.Type == "" {
		return Block{}, &MappingError{ID: rb.ID, Field: "type", Err: fmt.Errorf("block without id or type")}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Block{}, &MappingError{ID: rb.ID, Err: err}
	}
	b := Block{ID: rb.ID, Type: rb.Type, HasChildren: rb.HasChildren}
	if payload, ok := fields[rb.Type]; ok && string(payload) != "null" {
		if err := json.Unmarshal(payload, &b.Content); err != nil {
			return Block{}, &MappingError{ID: rb.ID, Field: rb.Type, Err: err}
		}
	}
	return b, nil
}

// Blocks returns the children of a block or page, following pagination and
// descending into nested blocks. Child pages are not expanded.
func (c *Client) Blocks(ctx context.Context, id string) ([]Block, error) {
	return c.blocks(ctx, id, 0)
}

func (c *Client) blocks(ctx context.Context, id string, depth int) ([]Block, error) {
	var out []Block
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(MaxPageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		var resp listResponse
		path := "/v1/blocks/" + url.PathEscape(id) + "/children?" + q.Encode()
		if err := c.do(ctx, "blocks", http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		for _, raw := range resp.Results {
			b, err := decodeBlock(raw)
			if err != nil {
				return nil, err
			}
			if b.HasChildren && b.Type != "child_page" && b.Type != "child_database" && depth < maxBlockDepth {
				children, err := c.blocks(ctx, b.ID, depth+1)
				if err != nil {
					return nil, err
				}
				b.Children = children
			}
			out = append(out, b)
		}
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return out, nil
		}
		cursor = *resp.NextCursor
	}
}

// PageMarkdown renders a page's content blocks as Markdown.
func (c *Client) PageMarkdown(ctx context.Context, id string) (string, error) {
	blocks, err := c.Blocks(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderMarkdown(blocks), nil
}

// RenderMarkdown converts blocks to Markdown. Output depends only on the
// input blocks.
func RenderMarkdown(blocks []Block) string {
	var b strings.Builder
	renderBlocks(&b, blocks, 0)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderBlocks(b *strings.Builder, blocks []Block, depth int) {
	indent := strings.Repeat("  ", depth)
	number := 0
	for i, blk := range blocks {
		if blk.Type == "numbered_list_item" {
			number++
		} else {
			number = 0
		}
		text := renderRichText(blk.Content.RichText)

		switch blk.Type {
		case "paragraph":
			b.WriteString(indent + text + "\n\n")
		case "heading_1":
			b.WriteString("# " + text + "\n\n")
		case "heading_2":
			b.WriteString("## " + text + "\n\n")
		case "heading_3":
			b.WriteString("### " + text + "\n\n")
		case "bulleted_list_item":
			b.WriteString(indent + "- " + text + "\n")
		case "numbered_list_item":
			fmt.Fprintf(b, "%s%d. %s\n", indent, number, text)
		case "to_do":
			box := "[ ]"
			if blk.Content.Checked {
				box = "[x]"
			}
			b.WriteString(indent + "- " + box + " " + text + "\n")
		case "quote":
			b.WriteString(indent + "> " + text + "\n\n")
		case "callout":
			b.WriteString(indent + "> " + text + "\n\n")
		case "toggle":
			b.WriteString(indent + "**" + text + "**\n\n")
		case "code":
			b.WriteString("```" + blk.Content.Language + "\n" + plainText(blk.Content.RichText) + "\n```\n\n")
		case "equation":
			b.WriteString("$$\n" + blk.Content.Expression + "\n$$\n\n")
		case "divider":
			b.WriteString("---\n\n")
		case "image":
			alt := plainText(blk.Content.Caption)
			fmt.Fprintf(b, "%s![%s](%s)\n\n", indent, alt, blk.Content.File.URL())
		case "bookmark", "embed", "link_preview":
			fmt.Fprintf(b, "%s[%s](%s)\n\n", indent, blk.Content.URL, blk.Content.URL)
		case "child_page":
			// not expanded
		default:
			if text != "" {
				b.WriteString(indent + text + "\n\n")
			}
		}

		if len(blk.Children) > 0 {
			// toggle bodies stay at the toggle's level
			childDepth := depth + 1
			if blk.Type == "toggle" {
				childDepth = depth
			}
			renderBlocks(b, blk.Children, childDepth)
		}

		// a list ends with a blank line
		if isListItem(blk.Type) && (i == len(blocks)-1 || !isListItem(blocks[i+1].Type)) && depth == 0 {
			b.WriteString("\n")
		}
	}
}

func isListItem(t string) bool {
	return t == "bulleted_list_item" || t == "numbered_list_item" || t == "to_do"
}

func plainText(segs []RichText) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.PlainText)
	}
	return b.String()
}

func renderRichText(segs []RichText) string {
	var b strings.Builder
	for _, s := range segs {
		t := s.PlainText
		if t == "" {
			continue
		}
		a := s.Annotations
		if a.Code {
			t = "`" + t + "`"
		}
		if a.Bold {
			t = "**" + t + "**"
		}
		if a.Italic {
			t = "_" + t + "_"
		}
		if a.Strikethrough {
			t = "~~" + t + "~~"
		}
		if s.Href != "" {
			t = "[" + t + "](" + s.Href + ")"
		}
		b.WriteString(t)
	}
	return b.String()
}
