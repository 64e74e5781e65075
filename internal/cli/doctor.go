package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/folio/internal/config"
	"github.com/ppiankov/folio/internal/notion"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and Notion connectivity",
	RunE:  doctorAction,
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "config.yaml (%d roles, page size %d, session backend %s)",
		len(cfg.Listing.Roles), cfg.Listing.PageSize, cfg.Session.Backend)

	// Notion
	client, err := newNotionClient(cfg, nil)
	if err != nil {
		printCheck(false, "notion client: %v", err)
		ok = false
	} else if err := checkNotion(cmd.Context(), client, cfg); err != nil {
		printCheck(false, "notion database: %v", err)
		ok = false
	} else {
		printCheck(true, "notion database reachable at %s", cfg.Notion.BaseURL)
	}

	// Session store
	if cfg.Session.Backend == "sqlite" {
		_, db, err := openSessions(cfg)
		if err != nil {
			printCheck(false, "session store: %v", err)
			ok = false
		} else {
			_ = db.Close()
			printCheck(true, "session store %s", cfg.Session.Path)
		}
	}

	// Static dir
	if cfg.Server.StaticDir != "" {
		if info, err := os.Stat(cfg.Server.StaticDir); err != nil || !info.IsDir() {
			printCheck(false, "static directory %s", cfg.Server.StaticDir)
			ok = false
		} else {
			printCheck(true, "static directory %s", cfg.Server.StaticDir)
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

// checkNotion runs a one-record query, which exercises auth, the database
// id and the exposure property in one call.
func checkNotion(ctx context.Context, client *notion.Client, cfg *config.Config) error {
	res, err := client.QueryDatabase(ctx, notion.Query{PageSize: 1})
	if err != nil {
		return err
	}
	if len(res.Pages) == 0 {
		printInfo("no published pages yet (property %q is unchecked everywhere)", cfg.Notion.ExposureProperty)
	}
	return nil
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("[INFO] %s\n", fmt.Sprintf(format, args...))
}
