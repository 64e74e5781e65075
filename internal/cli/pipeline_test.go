package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ppiankov/folio/internal/config"
)

func pageJSON(id, title, created string, roles ...string) string {
	opts := make([]string, 0, len(roles))
	for _, r := range roles {
		opts = append(opts, fmt.Sprintf(`{"name":%q}`, r))
	}
	return fmt.Sprintf(`{"object":"page","id":%q,"created_time":%q,"cover":null,
		"parent":{"type":"database_id","database_id":"db-test"},"properties":{
		"name":{"id":"t","type":"title","title":[{"plain_text":%q}]},
		"role":{"id":"r","type":"multi_select","multi_select":[%s]},
		"exposure":{"id":"e","type":"checkbox","checkbox":true}}}`, id, created, title, strings.Join(opts, ","))
}

// fakeNotion serves a three-article database split over two pages.
func fakeNotion(t *testing.T) *httptest.Server {
	t.Helper()
	p1 := pageJSON("p1", "Scaling Postgres", "2024-06-03T00:00:00.000Z", "Backend")
	p2 := pageJSON("p2", "CSS Grid Tricks", "2024-06-02T00:00:00.000Z", "Frontend")
	p3 := pageJSON("p3", "Postgres Indexes", "2024-06-01T00:00:00.000Z", "Backend", "Infra")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret_test" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`)
			return
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/databases/db-test/query":
			body, _ := io.ReadAll(r.Body)
			switch {
			case strings.Contains(string(body), `"title":{"contains":"Postgres"}`):
				fmt.Fprintf(w, `{"results":[%s,%s],"has_more":false,"next_cursor":null}`, p1, p3)
			case strings.Contains(string(body), `"title":{"contains"`):
				fmt.Fprint(w, `{"results":[],"has_more":false,"next_cursor":null}`)
			case strings.Contains(string(body), `"start_cursor":"cur-2"`):
				fmt.Fprintf(w, `{"results":[%s],"has_more":false,"next_cursor":null}`, p3)
			default:
				fmt.Fprintf(w, `{"results":[%s,%s],"has_more":true,"next_cursor":"cur-2"}`, p1, p2)
			}
		case r.URL.Path == "/v1/pages/p1":
			fmt.Fprint(w, p1)
		case r.URL.Path == "/v1/blocks/p1/children":
			fmt.Fprint(w, `{"results":[
				{"object":"block","id":"b1","type":"heading_2","has_children":false,"heading_2":{"rich_text":[{"plain_text":"Why"}]}},
				{"object":"block","id":"b2","type":"paragraph","has_children":false,"paragraph":{"rich_text":[{"plain_text":"Because."}]}}
			],"has_more":false,"next_cursor":null}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"object":"error","status":404,"code":"object_not_found","message":"not found"}`)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func writeTestConfig(t *testing.T, dir, baseURL string) {
	t.Helper()
	cfg := fmt.Sprintf(`notion:
  base_url: %s
listing:
  page_size: 2
  roles: [Backend, Frontend]
session:
  backend: sqlite
  path: %s
log:
  format: text
`, baseURL, filepath.Join(dir, "sessions.db"))
	if err := os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// setupCLI points the package-level flags at a temp config dir backed by a
// fake Notion server and restores them afterwards.
func setupCLI(t *testing.T) *cobra.Command {
	t.Helper()
	dir := t.TempDir()
	ts := fakeNotion(t)
	writeTestConfig(t, dir, ts.URL)
	t.Setenv(config.DefaultTokenEnv, "secret_test")
	t.Setenv(config.DefaultDatabaseIDEnv, "db-test")

	oldConfigDir, oldRole, oldCursor, oldFormat, oldNoColor := configDir, listRole, listCursor, outFormat, noColor
	t.Cleanup(func() {
		configDir, listRole, listCursor, outFormat, noColor = oldConfigDir, oldRole, oldCursor, oldFormat, oldNoColor
	})
	configDir = dir
	listRole, listCursor, outFormat, noColor = "", "", "terminal", true

	cmd := &cobra.Command{}
	cmd.SetContext(t.Context())
	return cmd
}

func TestPipelineListSearchShow(t *testing.T) {
	cmd := setupCLI(t)

	out, err := captureStdout(t, func() error { return listAction(cmd, nil) })
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "전체 (2)")
	requireContains(t, out, "Scaling Postgres")
	requireContains(t, out, "CSS Grid Tricks")
	requireContains(t, out, "--cursor cur-2")

	listCursor = "cur-2"
	out, err = captureStdout(t, func() error { return listAction(cmd, nil) })
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	requireContains(t, out, "Postgres Indexes")
	if strings.Contains(out, "--cursor") {
		t.Errorf("last page still offers a cursor:\n%s", out)
	}

	outFormat = "json"
	out, err = captureStdout(t, func() error { return searchAction(cmd, []string{"Postgres"}) })
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var got struct {
		Articles []struct {
			PageID string `json:"pageId"`
			Role   string `json:"role"`
		} `json:"articles"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("parse search json: %v\n%s", err, out)
	}
	if len(got.Articles) != 2 || got.Articles[1].Role != "Backend, Infra" {
		t.Fatalf("search articles = %+v", got.Articles)
	}

	outFormat = "markdown"
	out, err = captureStdout(t, func() error { return showAction(cmd, []string{"p1"}) })
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "# Scaling Postgres")
	requireContains(t, out, "## Why\n\nBecause.\n")
}

func TestPipelineShowMissing(t *testing.T) {
	cmd := setupCLI(t)
	_, err := captureStdout(t, func() error { return showAction(cmd, []string{"nope"}) })
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestPipelineSearchNoMatch(t *testing.T) {
	cmd := setupCLI(t)
	out, err := captureStdout(t, func() error { return searchAction(cmd, []string{"kotlin"}) })
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "No articles found.")
}

func TestDoctor(t *testing.T) {
	cmd := setupCLI(t)
	out, err := captureStdout(t, func() error { return doctorAction(cmd, nil) })
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "[ OK ] notion database reachable")
	requireContains(t, out, "[ OK ] session store")
	requireContains(t, out, "All checks passed.")
}

func TestDoctor_BadToken(t *testing.T) {
	cmd := setupCLI(t)
	t.Setenv(config.DefaultTokenEnv, "wrong")
	out, err := captureStdout(t, func() error { return doctorAction(cmd, nil) })
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	requireContains(t, out, "[FAIL] notion database")
	requireContains(t, out, "unauthorized")
}

func TestInit(t *testing.T) {
	oldConfigDir := configDir
	t.Cleanup(func() { configDir = oldConfigDir })
	configDir = filepath.Join(t.TempDir(), ".folio")

	out, err := captureStdout(t, func() error { return initAction(nil, nil) })
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	requireContains(t, out, "created:")

	t.Setenv(config.DefaultTokenEnv, "secret")
	t.Setenv(config.DefaultDatabaseIDEnv, "db")
	cfg, err := config.Load(configDir)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if cfg.Listing.AllRole != "전체" || len(cfg.Listing.Roles) != 2 {
		t.Errorf("example listing = %+v", cfg.Listing)
	}

	out, err = captureStdout(t, func() error { return initAction(nil, nil) })
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	requireContains(t, out, "already initialized")
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("open stdout pipe: %v", err)
	}

	os.Stdout = writer
	runErr := fn()
	_ = writer.Close()
	os.Stdout = oldStdout

	out, readErr := io.ReadAll(reader)
	_ = reader.Close()
	if readErr != nil {
		t.Fatalf("read stdout pipe: %v", readErr)
	}
	return string(out), runErr
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()

	if !strings.Contains(got, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, got)
	}
}
