// Package cli provides the command-line interface for folio.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/folio/internal/config"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var configDir = config.DefaultConfigDir

var rootCmd = &cobra.Command{
	Use:           "folio",
	Short:         "Serve a blog from a Notion database",
	Long:          "folio reads published pages from a Notion database and serves them as a paginated, role-filtered blog with search, article pages and an RSS feed.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("folio %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.DefaultConfigDir, "directory holding config.yaml")
	rootCmd.AddCommand(versionCmd, initCmd, doctorCmd, serveCmd, listCmd, searchCmd, showCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
