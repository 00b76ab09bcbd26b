package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "5001" {
		t.Errorf("expected default port 5001, got %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
	if cfg.TasksFile != "tasks.json" {
		t.Errorf("expected tasks.json, got %q", cfg.TasksFile)
	}
}

func TestLoadLegacyKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"url_path": "https://test.com", "img_path": "/test/image.png", "port": 5002, "database_path": "instance/test.db"}`)

	cfg, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Study.PrototypeURL != "https://test.com" {
		t.Errorf("prototype url = %q", cfg.Study.PrototypeURL)
	}
	if cfg.Study.PrototypeImagePath != "/test/image.png" {
		t.Errorf("prototype image = %q", cfg.Study.PrototypeImagePath)
	}
	if cfg.Server.Port != "5002" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	dsn := cfg.DatabaseDSN("/home/test")
	if !strings.Contains(dsn, "/home/test/instance/test.db") {
		t.Errorf("dsn = %q", dsn)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"server": {"port": "7000"}}`)
	t.Setenv("GAZETRACK_SERVER_PORT", "8080")

	cfg, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected env port 8080, got %q", cfg.Server.Port)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.json", `{"invalid": json content}`)

	if _, err := Load(dir, nil); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestDatabaseDSN(t *testing.T) {
	cases := []struct {
		name string
		db   DatabaseConfig
		want string
	}{
		{"memory", DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, "file::memory:?_foreign_keys=on"},
		{"absolute", DatabaseConfig{Driver: "sqlite", Path: "/data/gaze.db"}, "file:/data/gaze.db?_foreign_keys=on"},
		{"postgres", DatabaseConfig{Driver: "postgres", Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable"},
			"host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Database: tc.db}
			if got := cfg.DatabaseDSN("/root"); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	if Optional("") != nil || Optional("null") != nil || Optional(" NULL ") != nil {
		t.Error("empty and null values must be nil")
	}
	if v := Optional("https://figma.com/x"); v == nil || *v != "https://figma.com/x" {
		t.Errorf("unexpected value %v", v)
	}
}

func TestLoadTasks(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "tasks.json", `{"tasks": [{"id": 1, "description": "Find the login button"}]}`)
	yamlPath := writeFile(t, dir, "tasks.yaml", "tasks:\n  - id: 1\n    description: Find the login button\n")

	for _, path := range []string{jsonPath, yamlPath} {
		tasks, err := LoadTasks(path)
		if err != nil {
			t.Fatalf("LoadTasks(%s): %v", path, err)
		}
		m, ok := tasks.(map[string]any)
		if !ok {
			t.Fatalf("expected a mapping, got %T", tasks)
		}
		list, ok := m["tasks"].([]any)
		if !ok || len(list) != 1 {
			t.Fatalf("expected one task, got %v", m["tasks"])
		}
	}

	if _, err := LoadTasks(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing tasks file")
	}
}

func TestTasksPath(t *testing.T) {
	cfg := &Config{Dir: "/etc/gazetrack", TasksFile: "tasks.json"}
	if got := cfg.TasksPath(); got != "/etc/gazetrack/tasks.json" {
		t.Errorf("got %q", got)
	}
	cfg.TasksFile = "/srv/tasks.yaml"
	if got := cfg.TasksPath(); got != "/srv/tasks.yaml" {
		t.Errorf("got %q", got)
	}
}
