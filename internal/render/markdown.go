package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/folio/internal/listing"
)

// MarkdownFormatter formats listings as Markdown.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (f *MarkdownFormatter) FormatList(w io.Writer, in ListInput) error {
	heading := in.Heading
	if heading == "" {
		heading = "Articles"
	}
	fmt.Fprintf(w, "# %s\n\n", heading)

	if len(in.Articles) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return nil
	}

	for _, a := range in.Articles {
		fmt.Fprintf(w, "- **%s** (%s)", a.Title, a.CreatedAt.Format("2006-01-02"))
		if roles := a.Roles(); len(roles) > 0 {
			parts := make([]string, len(roles))
			for i, r := range roles {
				parts[i] = "`" + r + "`"
			}
			fmt.Fprintf(w, " %s", strings.Join(parts, " "))
		}
		fmt.Fprintf(w, " _%s_\n", a.PageID)
	}

	if in.NextCursor != "" {
		fmt.Fprintf(w, "\nNext cursor: `%s`\n", in.NextCursor)
	}
	return nil
}

func (f *MarkdownFormatter) FormatPost(w io.Writer, post listing.Post) error {
	fmt.Fprintf(w, "# %s\n\n", post.Title)
	fmt.Fprintf(w, "*%s*", post.CreatedAt.Format("2006-01-02"))
	if roles := post.Roles(); len(roles) > 0 {
		fmt.Fprintf(w, " | %s", strings.Join(roles, ", "))
	}
	fmt.Fprint(w, "\n\n")
	if post.ThumbnailURL != "" {
		fmt.Fprintf(w, "![cover](%s)\n\n", post.ThumbnailURL)
	}
	_, err := io.WriteString(w, post.Content)
	return err
}
