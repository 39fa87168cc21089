package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_init_schema_migrations.sql", true, 1, "init_schema_migrations"},
		{"0004_create_expenses.sql", true, 4, "create_expenses"},
		{"001_invalid.sql", false, 0, ""},       // wrong number format
		{"0001_test", false, 0, ""},             // missing .sql
		{"0001.sql", false, 0, ""},              // missing name
		{"invalid_0001_test.sql", false, 0, ""}, // wrong order
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.filename)
			if ok != tt.valid || version != tt.version || name != tt.name {
				t.Errorf("parseMigrationFilename(%q) = %d, %q, %v; want %d, %q, %v",
					tt.filename, version, name, ok, tt.version, tt.name, tt.valid)
			}
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0002_create_users.sql", "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.users` (id STRING);")
	writeFile(t, dir, "0001_init.sql", "SELECT 1;")
	writeFile(t, dir, "README.md", "ignored")

	migrations, err := readMigrations(dir, "proj", "finance")
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("got %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("not sorted by version: %d, %d", migrations[0].Version, migrations[1].Version)
	}
	if !strings.Contains(migrations[1].SQL, "`proj.finance.users`") {
		t.Errorf("placeholders not filled: %s", migrations[1].SQL)
	}

	// The checksum ignores the target project.
	other, err := readMigrations(dir, "other", "ds")
	if err != nil {
		t.Fatal(err)
	}
	if other[1].Checksum != migrations[1].Checksum {
		t.Error("checksum should not depend on placeholders")
	}
	if migrations[0].Checksum == migrations[1].Checksum {
		t.Error("different content should give different checksums")
	}
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0001_a.sql", "SELECT 1;")
	writeFile(t, dir, "0001_b.sql", "SELECT 2;")

	if _, err := readMigrations(dir, "p", "d"); err == nil {
		t.Error("expected duplicate version error")
	}
}

func TestPlanMigrations(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "init", Checksum: "aaa"},
		{Version: 2, Name: "users", Checksum: "bbb"},
		{Version: 3, Name: "incomes", Checksum: "ccc"},
	}
	applied := []AppliedMigration{
		{Version: 1, Checksum: "aaa"},
		{Version: 2, Checksum: "changed"},
	}

	pending, drifted := planMigrations(migrations, applied)

	if len(pending) != 1 || pending[0].Version != 3 {
		t.Errorf("pending = %+v, want only version 3", pending)
	}
	if len(drifted) != 1 || drifted[0].Version != 2 {
		t.Errorf("drifted = %+v, want only version 2", drifted)
	}
}

func TestRepositoryMigrationsParse(t *testing.T) {
	dir, err := findMigrationsDir("migrations/bigquery")
	if err != nil {
		t.Skip("migrations directory not reachable from test working directory")
	}

	migrations, err := readMigrations(dir, "p", "d")
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration %s has version %d, want %d", m.Filename, m.Version, i+1)
		}
		if strings.Contains(m.SQL, "{{") {
			t.Errorf("migration %s has unfilled placeholders", m.Filename)
		}
	}
}
