package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <page-id>",
	Short: "Print one article with its content",
	Args:  cobra.ExactArgs(1),
	RunE:  showAction,
}

func showAction(cmd *cobra.Command, args []string) error {
	_, svc, err := loadService()
	if err != nil {
		return err
	}
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	post, err := svc.GetPost(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return formatter.FormatPost(os.Stdout, post)
}
