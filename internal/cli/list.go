package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/folio/internal/logging"
	"github.com/ppiankov/folio/internal/render"
)

var (
	listRole   string
	listCursor string
	outFormat  string
	noColor    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published articles, newest first",
	RunE:  listAction,
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search article titles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  searchAction,
}

func init() {
	listCmd.Flags().StringVar(&listRole, "role", "", "only articles tagged with this role")
	listCmd.Flags().StringVar(&listCursor, "cursor", "", "continue from a cursor printed by a previous page")
	for _, c := range []*cobra.Command{listCmd, searchCmd, showCmd} {
		c.Flags().StringVar(&outFormat, "format", "", "output format: terminal, json, markdown")
		c.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	}
}

func newFormatter() (render.Formatter, error) {
	return render.New(outFormat, !noColor && logging.IsTerminal(os.Stdout))
}

func listAction(cmd *cobra.Command, _ []string) error {
	_, svc, err := loadService()
	if err != nil {
		return err
	}
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	res, err := svc.ListArticles(cmd.Context(), listRole, listCursor)
	if err != nil {
		return err
	}

	heading := listRole
	if svc.IsAll(heading) {
		heading = svc.AllRole()
	}
	return formatter.FormatList(os.Stdout, render.ListInput{
		Heading:    heading,
		Articles:   res.Articles,
		NextCursor: res.NextCursor,
	})
}

func searchAction(cmd *cobra.Command, args []string) error {
	keyword := strings.Join(args, " ")

	_, svc, err := loadService()
	if err != nil {
		return err
	}
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	arts, err := svc.SearchArticles(cmd.Context(), keyword)
	if err != nil {
		return err
	}
	return formatter.FormatList(os.Stdout, render.ListInput{
		Heading:  fmt.Sprintf("Search: %s", keyword),
		Articles: arts,
	})
}
