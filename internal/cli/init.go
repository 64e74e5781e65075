package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/folio/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with an example config",
	RunE:  initAction,
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}

	if !wrote {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Printf("Initialized %s. Export %s and %s before running folio serve.\n",
			configDir, config.DefaultTokenEnv, config.DefaultDatabaseIDEnv)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# folio configuration

notion:
  token_env: NOTION_TOKEN
  database_id_env: NOTION_DATABASE_ID
  timeout: 30s
  exposure_property: exposure
  title_property: name
  role_property: role

listing:
  page_size: 10
  search_limit: 100
  all_role: "전체"
  roles:
    - Backend
    - Frontend
  default_thumbnail: /default_cover_image.png

server:
  listen: ":8080"
  read_timeout: 10s
  write_timeout: 30s
  idle_timeout: 60s
  shutdown_timeout: 5s
  site_title: folio
  # static_dir: ./public

session:
  backend: memory # memory, sqlite, none
  path: .folio/sessions.db
  ttl: 24h

log:
  level: info
  format: auto # text, json, auto
`
