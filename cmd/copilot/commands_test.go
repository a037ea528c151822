package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig creates a config pointing at a sqlite file in a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "copilot.yaml")
	content := fmt.Sprintf("database:\n  driver: sqlite\n  path: %s\nlog:\n  level: error\n", filepath.Join(dir, "copilot.db"))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// run executes the root command with args and the given stdin.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func initDB(t *testing.T) string {
	t.Helper()
	cfg := writeConfig(t)
	out := mustRun(t, "db", "init", "-c", cfg)
	assertContains(t, out, "Migrated 6 tables", "Seeded 3 templates", `Created sample project "CRM Assistant Project"`)
	return cfg
}

func TestClassifyCmd(t *testing.T) {
	out := mustRun(t, "classify", "a", "CRM", "for", "sales", "leads")
	assertContains(t, out, "Project type: crm", "3 sprints")

	out = mustRun(t, "classify", "a", "website", "redesign")
	assertContains(t, out, "Project type: web", "general")
}

func TestDBInit_SeedIsIdempotent(t *testing.T) {
	cfg := initDB(t)
	out := mustRun(t, "db", "seed", "-c", cfg)
	assertContains(t, out, "Seeded 0 templates")
	if strings.Contains(out, "sample project") {
		t.Errorf("sample project created twice:\n%s", out)
	}
}

func TestDBReset_Aborted(t *testing.T) {
	cfg := initDB(t)
	out, err := run(t, "no\n", "db", "reset", "-c", cfg)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	assertContains(t, out, "WARNING", "Aborted.")

	out = mustRun(t, "project", "list", "-c", cfg)
	assertContains(t, out, "CRM Assistant Project")
}

func TestDBReset_Confirmed(t *testing.T) {
	cfg := initDB(t)
	mustRun(t, "generate", "-c", cfg, "-n", "Extra", "-d", "online shop")

	out, err := run(t, "yes\n", "db", "reset", "-c", cfg)
	if err != nil {
		t.Fatalf("reset: %v\n%s", err, out)
	}
	assertContains(t, out, "Database reset successfully")

	out = mustRun(t, "project", "list", "-c", cfg)
	if strings.Contains(out, "Extra") {
		t.Errorf("project survived reset:\n%s", out)
	}
}

func TestGenerateAndProjectCmds(t *testing.T) {
	cfg := initDB(t)

	out := mustRun(t, "generate", "-c", cfg, "-n", "Storefront", "-d", "An online store with a cart")
	assertContains(t, out, `Created project "Storefront" (id 2)`, "Type:    ecommerce")

	out = mustRun(t, "project", "list", "-c", cfg, "--type", "ecommerce")
	assertContains(t, out, "Storefront")
	if strings.Contains(out, "CRM Assistant Project") {
		t.Errorf("type filter ignored:\n%s", out)
	}

	out = mustRun(t, "project", "show", "2", "-c", cfg)
	assertContains(t, out, "Storefront", "Completion:  0.00%")

	out = mustRun(t, "project", "tree", "2", "-c", cfg)
	assertContains(t, out, "Sprint", "-001")

	out = mustRun(t, "project", "tree", "2", "--json", "-c", cfg)
	assertContains(t, out, `"sprints"`, `"epic_id"`)

	if _, err := run(t, "", "generate", "-c", cfg, "-n", "Storefront", "-d", "again"); err == nil {
		t.Error("expected duplicate name error")
	}

	out = mustRun(t, "project", "delete", "2", "--yes", "-c", cfg)
	assertContains(t, out, `Deleted project "Storefront"`)
	if _, err := run(t, "", "project", "show", "2", "-c", cfg); err == nil {
		t.Error("expected not found after delete")
	}
}

func TestSprintRecalcCmd(t *testing.T) {
	cfg := initDB(t)
	out := mustRun(t, "sprint", "recalc", "1", "-c", cfg)
	assertContains(t, out, "Sprint 1: 21 points")

	if _, err := run(t, "", "sprint", "recalc", "999", "-c", cfg); err == nil {
		t.Error("expected error for missing sprint")
	}
}

func TestTemplateCmds(t *testing.T) {
	cfg := initDB(t)

	out := mustRun(t, "template", "list", "-c", cfg)
	assertContains(t, out, "Standard CRM Template", "E-commerce Store Template", "Mobile App Template")

	out = mustRun(t, "template", "save", "1", "--private", "-c", cfg)
	assertContains(t, out, `Saved template "CRM Assistant Project Template"`)

	out = mustRun(t, "template", "list", "-c", cfg)
	if strings.Contains(out, "CRM Assistant Project Template") {
		t.Errorf("private template listed:\n%s", out)
	}
	out = mustRun(t, "template", "list", "--all", "-c", cfg)
	assertContains(t, out, "CRM Assistant Project Template")

	out = mustRun(t, "template", "show", "4", "-c", cfg)
	assertContains(t, out, "Public: false", "3 sprints")

	out = mustRun(t, "template", "use", "4", "-n", "CRM Copy", "-c", cfg)
	assertContains(t, out, `Created project "CRM Copy"`, "Sprints: 3")

	out = mustRun(t, "template", "delete", "4", "-c", cfg)
	assertContains(t, out, "Deleted template 4")
	if _, err := run(t, "", "template", "show", "4", "-c", cfg); err == nil {
		t.Error("expected not found after delete")
	}
}

func TestImportCmd(t *testing.T) {
	cfg := initDB(t)
	dir := t.TempDir()
	csv := "Issue Type,Summary,Description,Priority,Labels\n" +
		"Story,[Testing] Add unit tests,Cover the core,High,sprint4\n"
	for _, name := range []string{"a.csv", "b.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(csv), 0644); err != nil {
			t.Fatalf("write csv: %v", err)
		}
	}

	out := mustRun(t, "import", "-c", cfg, "-p", "1", filepath.Join(dir, "*.csv"))
	assertContains(t, out, "Imported 1 stories from 2 files")

	if _, err := run(t, "", "import", "-c", cfg, "-p", "1", filepath.Join(dir, "*.missing")); err == nil {
		t.Error("expected error for unmatched pattern")
	}
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "nested"), 0755)
	for _, name := range []string{"a.csv", "nested/b.csv", "c.txt"} {
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644)
	}

	files, err := expandGlobs([]string{filepath.Join(dir, "**", "*.csv"), filepath.Join(dir, "a.csv")})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("files = %v, want 2 unique csv files", files)
	}
}

func TestExportGitHubCmd_DryRun(t *testing.T) {
	cfg := initDB(t)
	out := mustRun(t, "export", "github", "-c", cfg, "-p", "1", "--repo", "acme/crm", "--dry-run")
	assertContains(t, out, "would create: FND-001", "Planned", "acme/crm")

	if _, err := run(t, "", "export", "github", "-c", cfg, "-p", "1", "--repo", "bad"); err == nil {
		t.Error("expected error for malformed repo")
	}
}

func TestDigestCmd(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, "db", "init", "-c", cfg)

	out := mustRun(t, "digest", "-c", cfg)
	assertContains(t, out, "Portfolio Digest", "CRM Assistant Project")

	if _, err := run(t, "", "digest", "--send", "-c", cfg); err == nil {
		t.Error("expected error when no channel is configured")
	}
}
