package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdg/layout"
)

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("loading default configuration: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("version = %d, want 1", cfg.Version)
	}
	if cfg.Document.Paper != "a4" {
		t.Fatalf("paper = %q, want a4", cfg.Document.Paper)
	}
	if !cfg.Document.TOC.Enable || cfg.Document.TOC.Title == "" {
		t.Fatalf("TOC defaults are wrong: %+v", cfg.Document.TOC)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Fatalf("console level = %q, want normal", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfigurationOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdg.yaml")
	content := `version: 1
document:
  paper: letter
  margins_mm: 15
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("loading configuration: %v", err)
	}
	if cfg.Document.Paper != "letter" {
		t.Fatalf("paper = %q, want letter", cfg.Document.Paper)
	}
	if cfg.Document.MarginsMm != 15 {
		t.Fatalf("margins = %v, want 15", cfg.Document.MarginsMm)
	}
	// untouched values keep template defaults
	if !cfg.Document.Bookmarks {
		t.Fatal("bookmarks default should survive a partial override")
	}
}

func TestLoadConfigurationRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdg.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nnot_a_field: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("unknown fields must be rejected")
	}
}

func TestLoadConfigurationValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad paper", "version: 1\ndocument:\n  paper: tabloid\n"},
		{"bad version", "version: 2\n"},
		{"margins out of range", "version: 1\ndocument:\n  margins_mm: 200\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pdg.yaml")
			if err := os.WriteFile(path, []byte(c.content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfiguration(path); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestPaperSizeMapping(t *testing.T) {
	for name, want := range map[string]layout.Size{
		"a4":     layout.A4,
		"a5":     layout.A5,
		"letter": layout.Letter,
	} {
		c := DocumentConfig{Paper: name}
		if got := c.PaperSize(); got != want {
			t.Errorf("PaperSize(%s) = %v, want %v", name, got, want)
		}
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if !strings.Contains(string(data), "version: 1") {
		t.Fatal("prepared template should carry the version")
	}

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	dump, err := Dump(cfg)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(string(dump), "paper: a4") {
		t.Fatalf("dump is missing defaults:\n%s", dump)
	}
}
