package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/ppiankov/folio/internal/listing"
)

// TitleWidth is the display width titles are truncated to.
const TitleWidth = 60

// TerminalFormatter formats listings for terminal output.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// FormatList writes one line per article, newest first.
func (f *TerminalFormatter) FormatList(w io.Writer, in ListInput) error {
	if in.Heading != "" {
		fmt.Fprintln(w, f.bold(fmt.Sprintf("%s (%d)", in.Heading, len(in.Articles))))
		fmt.Fprintln(w)
	}

	if len(in.Articles) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return nil
	}

	now := in.now()
	for _, a := range in.Articles {
		title := runewidth.FillRight(runewidth.Truncate(a.Title, TitleWidth, "..."), TitleWidth)
		fmt.Fprintf(w, "  %s  %s  %s\n", f.bold(title), f.dim(humanize.RelTime(a.CreatedAt, now, "ago", "from now")), f.yellow(a.Role))
		fmt.Fprintf(w, "      %s\n", f.dim(a.PageID))
	}

	if in.NextCursor != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, f.dim("more: --cursor "+in.NextCursor))
	}
	return nil
}

// FormatPost writes the article header followed by its Markdown body.
func (f *TerminalFormatter) FormatPost(w io.Writer, post listing.Post) error {
	fmt.Fprintln(w, f.bold(post.Title))
	meta := []string{humanize.Time(post.CreatedAt)}
	if roles := post.Roles(); len(roles) > 0 {
		meta = append(meta, strings.Join(roles, ", "))
	}
	fmt.Fprintln(w, f.dim(strings.Join(meta, " | ")))
	fmt.Fprintln(w)
	_, err := io.WriteString(w, post.Content)
	return err
}

// ANSI helpers, no-op when color=false.

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) yellow(s string) string {
	if !f.color {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
