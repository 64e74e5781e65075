package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	text := func(s string) []RichText { return []RichText{{PlainText: s}} }
	blocks := []Block{
		{Type: "heading_1", Content: BlockContent{RichText: text("Title")}},
		{Type: "paragraph", Content: BlockContent{RichText: []RichText{
			{PlainText: "plain "},
			{PlainText: "bold", Annotations: Annotations{Bold: true}},
			{PlainText: " and "},
			{PlainText: "link", Href: "https://example.com"},
		}}},
		{Type: "bulleted_list_item", Content: BlockContent{RichText: text("one")}, Children: []Block{
			{Type: "bulleted_list_item", Content: BlockContent{RichText: text("nested")}},
		}},
		{Type: "bulleted_list_item", Content: BlockContent{RichText: text("two")}},
		{Type: "numbered_list_item", Content: BlockContent{RichText: text("first")}},
		{Type: "numbered_list_item", Content: BlockContent{RichText: text("second")}},
		{Type: "to_do", Content: BlockContent{RichText: text("done"), Checked: true}},
		{Type: "code", Content: BlockContent{RichText: text("fmt.Println(1)"), Language: "go"}},
		{Type: "divider"},
		{Type: "child_page", Content: BlockContent{Title: "hidden"}},
		{Type: "quote", Content: BlockContent{RichText: text("wise")}},
	}

	want := "# Title\n\n" +
		"plain **bold** and [link](https://example.com)\n\n" +
		"- one\n" +
		"  - nested\n" +
		"- two\n" +
		"1. first\n" +
		"2. second\n" +
		"- [x] done\n\n" +
		"```go\nfmt.Println(1)\n```\n\n" +
		"---\n\n" +
		"> wise\n"

	got := RenderMarkdown(blocks)
	if got != want {
		t.Errorf("markdown mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
	if again := RenderMarkdown(blocks); again != got {
		t.Error("rendering is not deterministic")
	}
}

func TestRenderMarkdown_ToggleIsPlainMarkdown(t *testing.T) {
	blocks := []Block{
		{Type: "toggle", Content: BlockContent{RichText: []RichText{{PlainText: "Details"}}}, Children: []Block{
			{Type: "paragraph", Content: BlockContent{RichText: []RichText{{PlainText: "hidden body"}}}},
			{Type: "bulleted_list_item", Content: BlockContent{RichText: []RichText{{PlainText: "point"}}}},
		}},
	}
	want := "**Details**\n\nhidden body\n\n- point\n"
	if got := RenderMarkdown(blocks); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPageMarkdown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/blocks/page-1/children" && r.URL.Query().Get("start_cursor") == "":
			fmt.Fprint(w, `{"results":[
				{"object":"block","id":"b1","type":"heading_2","has_children":false,"heading_2":{"rich_text":[{"plain_text":"Intro"}]}},
				{"object":"block","id":"b2","type":"bulleted_list_item","has_children":true,"bulleted_list_item":{"rich_text":[{"plain_text":"parent"}]}}
			],"next_cursor":"c2","has_more":true}`)
		case r.URL.Path == "/v1/blocks/page-1/children" && r.URL.Query().Get("start_cursor") == "c2":
			fmt.Fprint(w, `{"results":[
				{"object":"block","id":"b3","type":"image","has_children":false,"image":{"type":"external","external":{"url":"https://img/x.png"},"caption":[{"plain_text":"cap"}]}}
			],"next_cursor":null,"has_more":false}`)
		case r.URL.Path == "/v1/blocks/b2/children":
			fmt.Fprint(w, `{"results":[
				{"object":"block","id":"b4","type":"bulleted_list_item","has_children":false,"bulleted_list_item":{"rich_text":[{"plain_text":"child"}]}}
			],"has_more":false}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	md, err := c.PageMarkdown(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("PageMarkdown: %v", err)
	}
	want := "## Intro\n\n- parent\n  - child\n\n![cap](https://img/x.png)\n"
	if md != want {
		t.Errorf("got:\n%q\nwant:\n%q", md, want)
	}
}

func TestPageMarkdown_UpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.PageMarkdown(context.Background(), "page-1")
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("err = %v, want *QueryError", err)
	}
}
