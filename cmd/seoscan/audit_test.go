package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/model"
)

// TestNewAuditCmd tests the audit command creation.
func TestNewAuditCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAuditCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "audit [url...]" {
			t.Errorf("expected use 'audit [url...]', got %q", cmd.Use)
		}
	})

	t.Run("has crawl flags with defaults", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{name: "max-pages", shorthand: "p", defValue: "25"},
			{name: "rate", shorthand: "r", defValue: "1"},
			{name: "timeout", shorthand: "t", defValue: "10s"},
			{name: "concurrency", shorthand: "b", defValue: "3"},
		}
		for _, tt := range tests {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("%s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
			}
		}
	})

	t.Run("has report flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"json", "markdown", "output", "no-save", "ai"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestBuildConfig tests building configuration from command flags.
func TestBuildConfig(t *testing.T) {
	t.Run("applies flag values", func(t *testing.T) {
		cmd := NewAuditCmd()
		if err := cmd.ParseFlags([]string{
			"--max-pages", "50",
			"--rate", "0.5",
			"--timeout", "20s",
			"--concurrency", "2",
			"--json",
			"--no-save",
		}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxPages != 50 {
			t.Errorf("MaxPages = %d, expected 50", cfg.MaxPages)
		}
		if cfg.RPS != 0.5 {
			t.Errorf("RPS = %f, expected 0.5", cfg.RPS)
		}
		if cfg.Timeout != 20*time.Second {
			t.Errorf("Timeout = %s, expected 20s", cfg.Timeout)
		}
		if cfg.Concurrency != 2 {
			t.Errorf("Concurrency = %d, expected 2", cfg.Concurrency)
		}
		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
		if !cfg.NoSave {
			t.Error("expected NoSave to be true")
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://example.com" {
			t.Errorf("Targets = %v", cfg.Targets)
		}
	})

	t.Run("carries the verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		for _, sub := range root.Commands() {
			if sub.Name() != "audit" {
				continue
			}
			cfg, err := buildConfig(sub, []string{"https://example.com"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !cfg.Verbose {
				t.Error("expected Verbose to follow the root --verbose flag")
			}
			return
		}
		t.Fatal("audit subcommand not found")
	})

	t.Run("reads API key from environment", func(t *testing.T) {
		t.Setenv(config.APIKeyEnv, "sk-test-key-0123456789")

		cmd := NewAuditCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.AIAPIKey != "sk-test-key-0123456789" {
			t.Errorf("AIAPIKey = %q", cfg.AIAPIKey)
		}
	})

	t.Run("errors on missing explicit config file", func(t *testing.T) {
		cmd := NewAuditCmd()
		if err := cmd.ParseFlags([]string{"--config", "/nonexistent/path/.seoscan"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not-found error, got %v", err)
		}
	})

	t.Run("loads explicit config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".seoscan")
		yaml := "sites:\n  example.com:\n    maxPages: 99\n"
		if err := os.WriteFile(configPath, []byte(yaml), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewAuditCmd()
		if err := cmd.ParseFlags([]string{"--config", configPath}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.SiteConfigs == nil {
			t.Fatal("expected SiteConfigs to be loaded")
		}
		if got := cfg.SiteConfigs.Sites["example.com"].MaxPages; got != 99 {
			t.Errorf("site maxPages = %d, expected 99", got)
		}
	})
}

// TestAuditOptionsForTarget tests per-site option merging.
func TestAuditOptionsForTarget(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.MaxPages = 25
	cfg.RPS = 1.0
	cfg.SiteConfigs = &config.File{
		Sites: map[string]config.SiteConfig{
			"slow.example.com": {MaxPages: 10, RPS: 0.2},
		},
	}

	t.Run("uses globals for unconfigured sites", func(t *testing.T) {
		t.Parallel()
		opts := auditOptionsForTarget(cfg, "https://example.com/")
		if opts.MaxPages != 25 || opts.RPS != 1.0 {
			t.Errorf("opts = %+v", opts)
		}
	})

	t.Run("applies site overrides", func(t *testing.T) {
		t.Parallel()
		opts := auditOptionsForTarget(cfg, "https://slow.example.com/")
		if opts.MaxPages != 10 {
			t.Errorf("MaxPages = %d, expected 10", opts.MaxPages)
		}
		if opts.RPS != 0.2 {
			t.Errorf("RPS = %f, expected 0.2", opts.RPS)
		}
	})
}

// TestOutputReport tests report writing to a file.
func TestOutputReport(t *testing.T) {
	result := model.NewAuditResult("https://example.com/")
	result.PagesScanned = 2
	result.AddIssue(model.NewIssue("https://example.com/", "no_https", model.SeverityHigh))
	result.SetMeta("health_score", 80.0)
	result.SetMeta("health_grade", "B")

	t.Run("writes JSON report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		reportPath := filepath.Join(tmpDir, "out", "report.json")

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = reportPath

		if err := outputReport(cfg, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), `"site": "https://example.com/"`) {
			t.Errorf("report missing site field:\n%s", content)
		}
	})

	t.Run("writes Markdown report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		reportPath := filepath.Join(tmpDir, "report.md")

		cfg := config.NewConfig()
		cfg.MarkdownReport = true
		cfg.ReportFile = reportPath

		if err := outputReport(cfg, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "# SEO Audit Report") {
			t.Errorf("report missing heading:\n%s", content)
		}
	})
}

// TestGetVerboseFlag tests verbose flag resolution.
func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	for _, sub := range root.Commands() {
		if sub.Name() == "audit" {
			if !getVerboseFlag(sub) {
				t.Error("expected verbose flag to be inherited from root")
			}
			return
		}
	}
	t.Fatal("audit subcommand not found")
}
